package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// DataDir is the artifact root. Generated media lives in per-filetype
	// subdirectories (gif/, mp4/, webm/, jpg/, webp/) plus vtt/ for cue files.
	DataDir string `toml:"data_dir"`
	// SourceDir holds the source media files, one per episode, named with the
	// usual SxxEyy convention.
	SourceDir string `toml:"source_dir"`
	// LogDir holds logs, the catalog database, and the daemon lock file.
	LogDir string `toml:"log_dir"`
}

// Server contains HTTP listener configuration.
type Server struct {
	Bind           string   `toml:"bind"`
	BaseURL        string   `toml:"base_url"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Engine contains configuration for the external transcoding engine.
type Engine struct {
	FFmpegBinary   string `toml:"ffmpeg_binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Search contains tuning for the subtitle search engine.
type Search struct {
	MinTermLength  int `toml:"min_term_length"`
	DefaultPadding int `toml:"default_padding"`
	PageSize       int `toml:"page_size"`
}

// Clips contains limits for clip resolution and generation.
type Clips struct {
	UseCache        bool `toml:"use_cache"`
	MaxSubtitles    int  `toml:"max_subtitles"`
	MaxDurationMS   int  `toml:"max_duration_ms"`
	MaxCorrectionMS int  `toml:"max_correction_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Linguo.
//
// Configuration sections by subsystem:
//   - Paths: artifact, source, and log directories
//   - Server: bind address, public base URL, CORS origins
//   - Engine: ffmpeg binary and invocation timeout
//   - Search: term length and pagination limits
//   - Clips: cache toggle and generation limits
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Server  Server  `toml:"server"`
	Engine  Engine  `toml:"engine"`
	Search  Search  `toml:"search"`
	Clips   Clips   `toml:"clips"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/linguo/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. A .env file in the
// working directory is applied as environment overrides before validation.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	_ = godotenv.Load()
	cfg.applyEnvOverrides()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func (c *Config) applyEnvOverrides() {
	overrides := map[string]*string{
		"LINGUO_DATA_DIR":   &c.Paths.DataDir,
		"LINGUO_SOURCE_DIR": &c.Paths.SourceDir,
		"LINGUO_LOG_DIR":    &c.Paths.LogDir,
		"LINGUO_BIND":       &c.Server.Bind,
		"LINGUO_BASE_URL":   &c.Server.BaseURL,
		"LINGUO_FFMPEG":     &c.Engine.FFmpegBinary,
	}
	for key, field := range overrides {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			*field = value
		}
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("linguo.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates every directory the service writes to, including
// the per-filetype artifact subdirectories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, c.Paths.LogDir}
	for _, sub := range append(ArtifactFiletypes(), "vtt") {
		dirs = append(dirs, filepath.Join(c.Paths.DataDir, sub))
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ArtifactFiletypes lists every filetype an artifact directory exists for.
func ArtifactFiletypes() []string {
	return append(append([]string{}, ClipFiletypes...), SnapFiletypes...)
}

// WriteSample writes the embedded sample configuration to the provided path.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", path, err)
	}
	return abs, nil
}
