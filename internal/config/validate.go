package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate reports configuration values that cannot be used at runtime.
func (c *Config) Validate() error {
	var problems []string

	if c.Paths.DataDir == "" {
		problems = append(problems, "paths.data_dir must be set")
	}
	if c.Paths.SourceDir == "" {
		problems = append(problems, "paths.source_dir must be set")
	}
	if c.Paths.LogDir == "" {
		problems = append(problems, "paths.log_dir must be set")
	}
	if c.Server.Bind == "" {
		problems = append(problems, "server.bind must be set")
	}
	if !strings.HasPrefix(c.Server.BaseURL, "http://") && !strings.HasPrefix(c.Server.BaseURL, "https://") {
		problems = append(problems, fmt.Sprintf("server.base_url must be an http(s) URL, got %q", c.Server.BaseURL))
	}
	if c.Search.MinTermLength < 1 {
		problems = append(problems, "search.min_term_length must be positive")
	}
	if c.Clips.MaxDurationMS < 1000 {
		problems = append(problems, "clips.max_duration_ms must be at least 1000")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format must be console or json, got %q", c.Logging.Format))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
