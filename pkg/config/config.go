package config

import (
	"time"
)

// Config represents the full configuration of the viewer
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Buffer  BufferConfig  `yaml:"buffer"`
	Logging LoggingConfig `yaml:"logging"`
	API     APIConfig     `yaml:"api"`
	UI      UIConfig      `yaml:"ui"`
}

// SourceConfig controls which file is tailed and how
type SourceConfig struct {
	Path          string        `yaml:"path"`           // Explicit log path; empty uses fallback_paths
	FallbackPaths []string      `yaml:"fallback_paths"` // Tried in order when path is empty
	PollInterval  time.Duration `yaml:"poll_interval"`  // Delay between reads
	StartAtEnd    bool          `yaml:"start_at_end"`   // Skip existing content on open
	MaxLineBytes  int           `yaml:"max_line_bytes"` // Partial lines longer than this are flushed
}

// BufferConfig sizes the entry store and the ingest queue
type BufferConfig struct {
	Capacity int `yaml:"capacity"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	Format     string `yaml:"format"`      // json, console
	OutputFile string `yaml:"output_file"` // Empty: stderr in plain mode, discarded in the TUI
}

// APIConfig contains the read-only HTTP mirror configuration
type APIConfig struct {
	Enabled          bool          `yaml:"enabled"`
	ListenAddr       string        `yaml:"listen_addr"`       // e.g. "127.0.0.1:8088"
	SubscriberBuffer int           `yaml:"subscriber_buffer"` // Queued messages per websocket subscriber
	MaxConnections   int           `yaml:"max_connections"`   // Concurrent connections accepted by the mirror
	HostInterval     time.Duration `yaml:"host_interval"`     // Host usage sampling period; 0 disables it
}

// UIConfig contains viewer options and the filters applied at startup
type UIConfig struct {
	Plain           bool          `yaml:"plain"`
	ShowDescription bool          `yaml:"show_description"`
	Filters         FiltersConfig `yaml:"filters"`
}

// FiltersConfig holds the initial value of each filter slot. Empty values
// leave the slot unconstrained.
type FiltersConfig struct {
	Interface   string `yaml:"interface"`
	Protocol    string `yaml:"protocol"`
	Action      string `yaml:"action"`
	Source      string `yaml:"source"`
	Destination string `yaml:"destination"`
	Port        string `yaml:"port"`
}

// DefaultFallbackPaths are tried in order when no path is given.
var DefaultFallbackPaths = []string{
	"/var/log/ufw-firewall.log",
	"/var/log/ufw.log",
	"/var/log/kern.log",
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			FallbackPaths: append([]string(nil), DefaultFallbackPaths...),
			PollInterval:  250 * time.Millisecond,
			MaxLineBytes:  64 * 1024,
		},
		Buffer: BufferConfig{
			Capacity: 10000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		API: APIConfig{
			Enabled:          false,
			ListenAddr:       "127.0.0.1:8088",
			SubscriberBuffer: 64,
			MaxConnections:   64,
			HostInterval:     5 * time.Second,
		},
	}
}
