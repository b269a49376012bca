package config

const (
	defaultDataDir         = "~/.local/share/linguo/data"
	defaultSourceDir       = "~/.local/share/linguo/source"
	defaultLogDir          = "~/.local/share/linguo/logs"
	defaultBind            = "127.0.0.1:3312"
	defaultBaseURL         = "http://localhost:3312"
	defaultFFmpegBinary    = "ffmpeg"
	defaultEngineTimeout   = 120
	defaultMinTermLength   = 5
	defaultPadding         = 5
	defaultPageSize        = 10
	defaultMaxSubtitles    = 200
	defaultMaxDurationMS   = 120_000
	defaultMaxCorrectionMS = 600_000
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// ClipFiletypes is the allow-list for rendered clip artifacts.
var ClipFiletypes = []string{"gif", "mp4", "webm"}

// SnapFiletypes is the allow-list for still-frame artifacts.
var SnapFiletypes = []string{"jpg", "webp"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			SourceDir: defaultSourceDir,
			LogDir:    defaultLogDir,
		},
		Server: Server{
			Bind:    defaultBind,
			BaseURL: defaultBaseURL,
		},
		Engine: Engine{
			FFmpegBinary:   defaultFFmpegBinary,
			TimeoutSeconds: defaultEngineTimeout,
		},
		Search: Search{
			MinTermLength:  defaultMinTermLength,
			DefaultPadding: defaultPadding,
			PageSize:       defaultPageSize,
		},
		Clips: Clips{
			UseCache:        true,
			MaxSubtitles:    defaultMaxSubtitles,
			MaxDurationMS:   defaultMaxDurationMS,
			MaxCorrectionMS: defaultMaxCorrectionMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
