package config

import "strings"

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Paths.SourceDir, err = expandPath(c.Paths.SourceDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}

	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	c.Server.BaseURL = strings.TrimRight(strings.TrimSpace(c.Server.BaseURL), "/")
	c.Engine.FFmpegBinary = strings.TrimSpace(c.Engine.FFmpegBinary)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = defaultBaseURL
	}
	if c.Engine.FFmpegBinary == "" {
		c.Engine.FFmpegBinary = defaultFFmpegBinary
	}
	if c.Engine.TimeoutSeconds <= 0 {
		c.Engine.TimeoutSeconds = defaultEngineTimeout
	}
	if c.Search.MinTermLength <= 0 {
		c.Search.MinTermLength = defaultMinTermLength
	}
	if c.Search.DefaultPadding <= 0 {
		c.Search.DefaultPadding = defaultPadding
	}
	if c.Search.PageSize <= 0 {
		c.Search.PageSize = defaultPageSize
	}
	if c.Clips.MaxSubtitles <= 0 {
		c.Clips.MaxSubtitles = defaultMaxSubtitles
	}
	if c.Clips.MaxDurationMS <= 0 {
		c.Clips.MaxDurationMS = defaultMaxDurationMS
	}
	if c.Clips.MaxCorrectionMS <= 0 {
		c.Clips.MaxCorrectionMS = defaultMaxCorrectionMS
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}
