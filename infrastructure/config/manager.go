package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Errors for config management
var (
	ErrUnknownKey   = errors.New("unknown config key")
	ErrInvalidValue = errors.New("invalid config value")
)

// Entry is one addressable config value
type Entry struct {
	Key   string
	Value string
}

type field struct {
	get func(*Config) string
	set func(*Config, string) error
}

func stringField(ptr func(*Config) *string) field {
	return field{
		get: func(c *Config) string { return *ptr(c) },
		set: func(c *Config, v string) error {
			*ptr(c) = v
			return nil
		},
	}
}

func boolField(ptr func(*Config) *bool) field {
	return field{
		get: func(c *Config) string { return strconv.FormatBool(*ptr(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, v)
			}
			*ptr(c) = b
			return nil
		},
	}
}

// listField stores a comma-separated value as a list
func listField(ptr func(*Config) *[]string) field {
	return field{
		get: func(c *Config) string { return strings.Join(*ptr(c), ",") },
		set: func(c *Config, v string) error {
			var items []string
			for _, item := range strings.Split(v, ",") {
				if item = strings.TrimSpace(item); item != "" {
					items = append(items, item)
				}
			}
			*ptr(c) = items
			return nil
		},
	}
}

var fields = map[string]field{
	"paths.output_root":        stringField(func(c *Config) *string { return &c.Paths.OutputRoot }),
	"paths.download_dir":       stringField(func(c *Config) *string { return &c.Paths.DownloadDir }),
	"youtube.api_key":          stringField(func(c *Config) *string { return &c.Youtube.APIKey }),
	"youtube.credentials_file": stringField(func(c *Config) *string { return &c.Youtube.CredentialsFile }),
	"youtube.token_file":       stringField(func(c *Config) *string { return &c.Youtube.TokenFile }),
	"tools.ffmpeg":             stringField(func(c *Config) *string { return &c.Tools.FFmpeg }),
	"tools.ffprobe":            stringField(func(c *Config) *string { return &c.Tools.FFprobe }),
	"tools.ytdlp":              stringField(func(c *Config) *string { return &c.Tools.YtDlp }),
	"download.resolution":      stringField(func(c *Config) *string { return &c.Download.Resolution }),
	"encode.stream_copy":       boolField(func(c *Config) *bool { return &c.Encode.StreamCopy }),
	"encode.video_codec":       stringField(func(c *Config) *string { return &c.Encode.VideoCodec }),
	"encode.audio_codec":       stringField(func(c *Config) *string { return &c.Encode.AudioCodec }),
	"scraper.command":          stringField(func(c *Config) *string { return &c.Scraper.Command }),
	"scraper.args":             listField(func(c *Config) *[]string { return &c.Scraper.Args }),
	"catalog.enabled":          boolField(func(c *Config) *bool { return &c.Catalog.Enabled }),
	"catalog.path":             stringField(func(c *Config) *string { return &c.Catalog.Path }),
	"logging.level":            stringField(func(c *Config) *string { return &c.Logging.Level }),
	"logging.format":           stringField(func(c *Config) *string { return &c.Logging.Format }),
}

// secretKeys are masked by List
var secretKeys = map[string]bool{"youtube.api_key": true}

// ConfigManager reads and edits config values by dotted key and persists every change
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager creates a new config manager
func NewConfigManager(cfg *Config, configPath string) *ConfigManager {
	return &ConfigManager{
		config:     cfg,
		configPath: configPath,
	}
}

// Keys returns every settable key, sorted
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func lookupField(key string) (string, field, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	f, ok := fields[key]
	if !ok {
		return key, field{}, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return key, f, nil
}

// Get returns the current value of key
func (m *ConfigManager) Get(key string) (string, error) {
	_, f, err := lookupField(key)
	if err != nil {
		return "", err
	}
	return f.get(m.config), nil
}

// Set changes key, validates the result and saves the file. The in-memory
// config is left untouched when validation fails.
func (m *ConfigManager) Set(key, value string) error {
	key, f, err := lookupField(key)
	if err != nil {
		return err
	}

	updated := *m.config
	updated.Scraper.Args = append([]string(nil), m.config.Scraper.Args...)
	if err := f.set(&updated, strings.TrimSpace(value)); err != nil {
		return err
	}
	if err := updated.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidValue, key, err)
	}

	*m.config = updated
	return Save(m.config, m.configPath)
}

// Unset resets key to its default and saves the file
func (m *ConfigManager) Unset(key string) error {
	key, f, err := lookupField(key)
	if err != nil {
		return err
	}
	def := Default()
	return m.Set(key, f.get(def))
}

// List returns every key with its value; secrets are masked
func (m *ConfigManager) List() []Entry {
	entries := make([]Entry, 0, len(fields))
	for _, key := range Keys() {
		value := fields[key].get(m.config)
		if secretKeys[key] && value != "" {
			value = mask(value)
		}
		entries = append(entries, Entry{Key: key, Value: value})
	}
	return entries
}

func mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
