package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/DeBrosOfficial/ufwtail/pkg/config"
	"github.com/DeBrosOfficial/ufwtail/pkg/errors"
)

// Flags holds the root command's flags. Only flags the user actually set
// override the configuration file.
type Flags struct {
	ConfigPath   string
	Capacity     int
	PollInterval time.Duration
	FromEnd      bool
	Plain        bool
	Describe     bool
	Listen       string // Enables the HTTP mirror on this address
	LogFile      string
	LogLevel     string
	LogFormat    string

	// Initial filter slots
	Interface   string
	Protocol    string
	Action      string
	Source      string
	Destination string
	Port        string
}

func (f *Flags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.ConfigPath, "config", "", "Path to a YAML config file (default ~/.ufwtail/config.yaml when present)")
	fs.IntVar(&f.Capacity, "capacity", 0, "Number of entries kept in memory")
	fs.DurationVar(&f.PollInterval, "poll-interval", 0, "Delay between reads of the log file")
	fs.BoolVar(&f.FromEnd, "from-end", false, "Skip existing content and only show new lines")
	fs.BoolVar(&f.Plain, "plain", false, "Print matching lines to stdout instead of starting the viewer")
	fs.BoolVar(&f.Describe, "describe", false, "Show service descriptions")
	fs.StringVar(&f.Listen, "listen", "", "Serve the read-only HTTP mirror on this address (e.g. 127.0.0.1:8088)")
	fs.StringVar(&f.LogFile, "log-file", "", "Write diagnostics to this file")
	fs.StringVar(&f.LogLevel, "log-level", "", "Diagnostic log level: debug, info, warn, error")
	fs.StringVar(&f.LogFormat, "log-format", "", "Diagnostic log format: console or json")

	fs.StringVar(&f.Interface, "iface", "", "Initial interface filter (slot 1)")
	fs.StringVar(&f.Protocol, "proto", "", "Initial protocol filter (slot 2)")
	fs.StringVar(&f.Action, "action", "", "Initial action filter (slot 3)")
	fs.StringVar(&f.Source, "src", "", "Initial source address or CIDR filter (slot 4)")
	fs.StringVar(&f.Destination, "dst", "", "Initial destination address or CIDR filter (slot 5)")
	fs.StringVar(&f.Port, "port", "", "Initial port filter (slot 6)")
}

// LoadConfig reads the config file, applies the flags the user set and the
// optional positional path, then validates the result.
func LoadConfig(cmd *cobra.Command, f *Flags, args []string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.ConfigPath != "" {
		cfg, err = config.Load(f.ConfigPath)
	} else {
		cfg, err = config.LoadOptional("")
	}
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if len(args) > 0 {
		cfg.Source.Path = args[0]
	}
	if changed("capacity") {
		cfg.Buffer.Capacity = f.Capacity
	}
	if changed("poll-interval") {
		cfg.Source.PollInterval = f.PollInterval
	}
	if changed("from-end") {
		cfg.Source.StartAtEnd = f.FromEnd
	}
	if changed("plain") {
		cfg.UI.Plain = f.Plain
	}
	if changed("describe") {
		cfg.UI.ShowDescription = f.Describe
	}
	if changed("listen") {
		cfg.API.Enabled = f.Listen != ""
		if f.Listen != "" {
			cfg.API.ListenAddr = f.Listen
		}
	}
	if changed("log-file") {
		cfg.Logging.OutputFile = f.LogFile
	}
	if changed("log-level") {
		cfg.Logging.Level = f.LogLevel
	}
	if changed("log-format") {
		cfg.Logging.Format = f.LogFormat
	}

	slots := &cfg.UI.Filters
	overrides := []struct {
		flag  string
		value string
		dst   *string
	}{
		{"iface", f.Interface, &slots.Interface},
		{"proto", f.Protocol, &slots.Protocol},
		{"action", f.Action, &slots.Action},
		{"src", f.Source, &slots.Source},
		{"dst", f.Destination, &slots.Destination},
		{"port", f.Port, &slots.Port},
	}
	for _, o := range overrides {
		if changed(o.flag) {
			*o.dst = o.value
		}
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, errors.NewValidationError("config", strings.Join(msgs, "; "), nil)
	}
	return cfg, nil
}
