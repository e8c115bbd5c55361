// Package config loads the YAML configuration of the relay.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/scumlog/scumlog-go/internal/cursor"
	"github.com/scumlog/scumlog-go/internal/logfinder"
	"github.com/scumlog/scumlog-go/internal/notify"
	"github.com/scumlog/scumlog-go/internal/reader"
	"github.com/scumlog/scumlog-go/pkg/scumlog/event"
)

const (
	// MaxFileSize is the maximum size of a configuration file (1 MB).
	MaxFileSize = 1 * 1024 * 1024

	// SupportedVersion is the configuration format version.
	SupportedVersion = 1

	DefaultPollInterval = 5 * time.Second
	DefaultSinkTimeout  = notify.DefaultTimeout
	DefaultSinkRate     = 5.0

	// MinPollInterval keeps a misconfigured deployment from spinning.
	MinPollInterval = 100 * time.Millisecond
)

// Config is the root of the configuration file.
type Config struct {
	Version      int           `yaml:"version"`
	ServerDir    string        `yaml:"server_dir"`
	StateDir     string        `yaml:"state_dir"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Sink         Sink          `yaml:"sink"`
	Sources      []Source      `yaml:"sources"`
}

// Sink configures the webhook sink.
type Sink struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	// Rate is the request rate limit per second; 0 means DefaultSinkRate,
	// negative disables limiting.
	Rate  float64 `yaml:"rate"`
	Burst int     `yaml:"burst"`
}

// Source is one log category to relay.
type Source struct {
	Category string `yaml:"category"`
	// Name defaults to the category. It keys the cursor record.
	Name string `yaml:"name"`
	// Enabled defaults to true.
	Enabled  *bool          `yaml:"enabled"`
	Channel  notify.Channel `yaml:"channel"`
	Dir      string         `yaml:"dir"`
	Pattern  string         `yaml:"pattern"`
	Encoding string         `yaml:"encoding"`
}

// IsEnabled reports whether the source should run.
func (s Source) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Load reads, parses and validates a configuration file. Defaults are
// applied before validation.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, errors.New("config file must be a regular file")
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), MaxFileSize)
	}

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return LoadBytes(data)
}

// LoadBytes parses and validates configuration data.
func LoadBytes(data []byte) (*Config, error) {
	if len(data) == 0 {
		return nil, errors.New("config file is empty")
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", len(data), MaxFileSize)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.Sink.BaseURL == "" {
		c.Sink.BaseURL = notify.DefaultDiscordURL
	}
	if c.Sink.Timeout == 0 {
		c.Sink.Timeout = DefaultSinkTimeout
	}
	if c.Sink.Rate == 0 {
		c.Sink.Rate = DefaultSinkRate
	}
	if c.Sink.Burst == 0 {
		c.Sink.Burst = int(max(1, c.Sink.Rate))
	}
	for i := range c.Sources {
		s := &c.Sources[i]
		if s.Name == "" {
			s.Name = s.Category
		}
		if s.Dir == "" && c.ServerDir != "" {
			s.Dir = logfinder.LogDir(c.ServerDir)
		}
		if s.Pattern == "" && s.Category != "" {
			s.Pattern = logfinder.DefaultPattern(event.Category(s.Category))
		}
		if s.Encoding == "" {
			s.Encoding = string(reader.UTF16LE)
		}
	}
}

// Validate checks the configuration. It does not touch the file system.
func (c *Config) Validate() error {
	if c.Version != SupportedVersion {
		return &ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (only version %d is supported)", c.Version, SupportedVersion),
		}
	}
	if c.StateDir == "" {
		return &ValidationError{Field: "state_dir", Message: "state_dir is required"}
	}
	if c.PollInterval < MinPollInterval {
		return &ValidationError{
			Field:   "poll_interval",
			Message: fmt.Sprintf("poll_interval %s is below the minimum %s", c.PollInterval, MinPollInterval),
		}
	}
	if c.Sink.Timeout < 0 {
		return &ValidationError{Field: "sink.timeout", Message: "timeout must not be negative"}
	}
	if len(c.Sources) == 0 {
		return &ValidationError{Field: "sources", Message: "at least one source is required"}
	}

	seen := make(map[string]int, len(c.Sources))
	for i, s := range c.Sources {
		if s.Category == "" {
			return &SourceError{Index: i, Field: "category", Message: "category is required"}
		}
		if !event.Category(s.Category).Valid() {
			return &SourceError{Index: i, Category: s.Category, Field: "category", Message: "unknown category"}
		}
		// Names that share a cursor record would overwrite each other's position.
		record := cursor.RecordName(s.Name)
		if prev, ok := seen[record]; ok {
			return &SourceError{
				Index:    i,
				Category: s.Category,
				Field:    "name",
				Message: fmt.Sprintf("duplicate name %q (sources[%d] %q uses the same cursor record %q)",
					s.Name, prev, c.Sources[prev].Name, record),
			}
		}
		seen[record] = i

		if s.Dir == "" {
			return &SourceError{Index: i, Category: s.Category, Field: "dir", Message: "dir or server_dir is required"}
		}
		if !doublestar.ValidatePattern(s.Pattern) {
			return &SourceError{Index: i, Category: s.Category, Field: "pattern", Message: fmt.Sprintf("invalid pattern %q", s.Pattern)}
		}
		if _, err := reader.ParseEncoding(s.Encoding); err != nil {
			return &SourceError{Index: i, Category: s.Category, Field: "encoding", Message: err.Error(), Cause: err}
		}
	}
	return nil
}
