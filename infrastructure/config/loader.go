package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the config file lives when --config is not given
const DefaultPath = "config/config.yaml"

// Environment variables that override file values after load
const (
	EnvYoutubeAPIKey = "CHAPTERCUT_YOUTUBE_API_KEY"
	EnvLogLevel      = "CHAPTERCUT_LOG_LEVEL"
)

// Config represents the complete application configuration
type Config struct {
	Paths    PathsConfig    `yaml:"paths"`
	Youtube  YoutubeConfig  `yaml:"youtube"`
	Tools    ToolsConfig    `yaml:"tools"`
	Download DownloadConfig `yaml:"download"`
	Encode   EncodeConfig   `yaml:"encode"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// PathsConfig contains directories for downloads and clips
type PathsConfig struct {
	OutputRoot  string `yaml:"output_root"`
	DownloadDir string `yaml:"download_dir,omitempty"`
}

// YoutubeConfig contains Data API settings. With neither an API key nor
// credentials, metadata comes from yt-dlp.
type YoutubeConfig struct {
	APIKey          string `yaml:"api_key,omitempty"`
	CredentialsFile string `yaml:"credentials_file,omitempty"`
	TokenFile       string `yaml:"token_file,omitempty"`
}

// ToolsConfig contains executable paths
type ToolsConfig struct {
	FFmpeg  string `yaml:"ffmpeg"`
	FFprobe string `yaml:"ffprobe"`
	YtDlp   string `yaml:"ytdlp"`
}

// DownloadConfig contains source download settings
type DownloadConfig struct {
	Resolution string `yaml:"resolution"`
}

// EncodeConfig contains clip encoding settings
type EncodeConfig struct {
	StreamCopy bool   `yaml:"stream_copy"`
	VideoCodec string `yaml:"video_codec"`
	AudioCodec string `yaml:"audio_codec"`
}

// ScraperConfig describes an external chapter scraper command. The literal
// argument {url} is replaced by the video URL.
type ScraperConfig struct {
	Command string   `yaml:"command,omitempty"`
	Args    []string `yaml:"args,omitempty"`
}

// CatalogConfig contains catalog database settings
type CatalogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig contains structured log settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills empty fields
func (c *Config) ApplyDefaults() {
	if c.Paths.OutputRoot == "" {
		c.Paths.OutputRoot = "output"
	}
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = "ffmpeg"
	}
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = "ffprobe"
	}
	if c.Tools.YtDlp == "" {
		c.Tools.YtDlp = "yt-dlp"
	}
	if c.Download.Resolution == "" {
		c.Download.Resolution = "720p"
	}
	if c.Encode.VideoCodec == "" {
		c.Encode.VideoCodec = "libx264"
	}
	if c.Encode.AudioCodec == "" {
		c.Encode.AudioCodec = "aac"
	}
	if c.Catalog.Path == "" {
		c.Catalog.Path = "chaptercut.db"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// ApplyEnv overrides file values from the environment
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvYoutubeAPIKey)); v != "" {
		c.Youtube.APIKey = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks values that would otherwise fail deep inside a run
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Paths.OutputRoot) == "" {
		errs = append(errs, errors.New("paths.output_root is required"))
	}
	if c.Youtube.CredentialsFile != "" && c.Youtube.TokenFile == "" {
		errs = append(errs, errors.New("youtube.token_file is required with youtube.credentials_file"))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be text or json", c.Logging.Format))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q must be debug, info, warn or error", c.Logging.Level))
	}
	if c.Catalog.Enabled && strings.TrimSpace(c.Catalog.Path) == "" {
		errs = append(errs, errors.New("catalog.path is required when the catalog is enabled"))
	}
	return errors.Join(errs...)
}

// Load reads and parses the configuration from the specified YAML file,
// then applies defaults and environment overrides
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyDefaults()
	cfg.ApplyEnv(os.Getenv)
	return &cfg, nil
}

// Save writes the configuration to the specified YAML file. The file may hold
// an API key, so it is readable only by the user.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
