// Package config loads and validates the blog.yaml configuration file.
package config

import (
	"bytes"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"blogbuilder/internal/foundation"
)

// Config is the root configuration for a site build.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Content ContentConfig `yaml:"content"`
	Output  OutputConfig  `yaml:"output"`
	Render  RenderConfig  `yaml:"render"`
	Server  ServerConfig  `yaml:"server"`
	Watch   WatchConfig   `yaml:"watch"`
	Events  EventsConfig  `yaml:"events"`
	History HistoryConfig `yaml:"history"`
	Logging LoggingConfig `yaml:"logging"`
}

// SiteConfig describes the site itself; values flow into templates and feeds.
type SiteConfig struct {
	Title       string `yaml:"title"`
	BaseURL     string `yaml:"base_url,omitempty"`
	Description string `yaml:"description,omitempty"`
	Author      string `yaml:"author,omitempty"`
}

// ContentConfig locates source documents.
type ContentConfig struct {
	// Dir is the directory walked for Markdown posts.
	Dir string `yaml:"dir,omitempty"`
	// LayoutsDir optionally overrides the embedded templates.
	LayoutsDir string `yaml:"layouts_dir,omitempty"`
	// IncludeDrafts pulls draft posts into the published set. Off for
	// production builds; the serve command enables it for preview.
	IncludeDrafts bool `yaml:"include_drafts,omitempty"`
	// GitInfo resolves per-post last-modified metadata from git history.
	GitInfo bool `yaml:"git_info,omitempty"`
}

// OutputConfig controls where rendered pages land.
type OutputConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// RenderConfig tunes Markdown-to-HTML conversion.
type RenderConfig struct {
	HighlightStyle string `yaml:"highlight_style,omitempty"`
	// UnsafeHTML passes raw HTML in bodies through. Defaults to on since
	// bodies are authored content.
	UnsafeHTML *bool `yaml:"unsafe_html,omitempty"`
}

// ServerConfig configures the preview server.
type ServerConfig struct {
	Addr    string `yaml:"addr,omitempty"`
	Metrics bool   `yaml:"metrics,omitempty"`
	// RebuildCron optionally schedules full rebuilds (e.g. hourly, so
	// future-dated posts appear without a manual build).
	RebuildCron string `yaml:"rebuild_cron,omitempty"`
}

// WatchConfig tunes rebuild debouncing in serve mode.
type WatchConfig struct {
	QuietWindow Duration `yaml:"quiet_window,omitempty"`
	MaxDelay    Duration `yaml:"max_delay,omitempty"`
}

// EventsConfig enables publishing build-completed events to NATS. Disabled
// unless URL is set.
type EventsConfig struct {
	URL     string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// HistoryConfig locates the build-history database.
type HistoryConfig struct {
	Path string `yaml:"path,omitempty"`
}

// LoggingConfig selects log level and output format.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Content.Dir == "" {
		c.Content.Dir = "content"
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "public"
	}
	if c.Render.HighlightStyle == "" {
		c.Render.HighlightStyle = "github"
	}
	if c.Render.UnsafeHTML == nil {
		on := true
		c.Render.UnsafeHTML = &on
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":1313"
	}
	if c.Watch.QuietWindow <= 0 {
		c.Watch.QuietWindow = Duration(500 * time.Millisecond)
	}
	if c.Watch.MaxDelay <= 0 {
		c.Watch.MaxDelay = Duration(5 * time.Second)
	}
	if c.Events.Subject == "" {
		c.Events.Subject = "blogbuilder.builds"
	}
	if c.History.Path == "" {
		c.History.Path = ".blogbuilder/history.db"
	}
	c.Logging.Level = NormalizeLogLevel(string(c.Logging.Level))
	c.Logging.Format = NormalizeLogFormat(string(c.Logging.Format))
}

// Load reads, decodes, defaults and validates a configuration file.
func Load(path string) (*Config, error) {
	// #nosec G304 -- path is the user-supplied --config flag.
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, foundation.WrapError(err, foundation.ErrorCodeConfiguration, "failed to read configuration").
			WithContext("path", path).
			Build()
	}

	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, foundation.WrapError(err, foundation.ErrorCodeConfiguration, "invalid configuration").
			WithContext("path", path).
			Build()
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants defaults cannot repair.
func (c *Config) Validate() error {
	if c.Site.Title == "" {
		return foundation.ConfigurationError("site.title is required").Build()
	}
	if c.Watch.QuietWindow > c.Watch.MaxDelay {
		return foundation.ConfigurationError("watch.quiet_window must not exceed watch.max_delay").Build()
	}
	return nil
}

// UnsafeHTMLEnabled resolves the tri-state UnsafeHTML flag.
func (c *Config) UnsafeHTMLEnabled() bool {
	return c.Render.UnsafeHTML == nil || *c.Render.UnsafeHTML
}
