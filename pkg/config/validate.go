package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/DeBrosOfficial/ufwtail/pkg/filter"
)

// ValidationError represents a single validation error with context.
type ValidationError struct {
	Path    string // e.g., "source.poll_interval"
	Message string // e.g., "must be positive"
	Hint    string // e.g., "use a duration such as 250ms"
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s; %s", e.Path, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

const (
	minPollInterval = 10 * time.Millisecond
	maxCapacity     = 10_000_000
)

// Validate performs validation of the entire config.
// It aggregates all errors so the caller can print every issue at once.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateSource()...)
	errs = append(errs, c.validateBuffer()...)
	errs = append(errs, c.validateLogging()...)
	errs = append(errs, c.validateAPI()...)
	errs = append(errs, c.validateFilters()...)

	return errs
}

func (c *Config) validateSource() []error {
	var errs []error
	sc := c.Source

	if sc.Path == "" && len(sc.FallbackPaths) == 0 {
		errs = append(errs, ValidationError{
			Path:    "source.fallback_paths",
			Message: "must not be empty when source.path is not set",
			Hint:    "set source.path or list at least one fallback",
		})
	}

	for i, p := range sc.FallbackPaths {
		if p == "" {
			errs = append(errs, ValidationError{
				Path:    fmt.Sprintf("source.fallback_paths[%d]", i),
				Message: "must not be empty",
			})
		}
	}

	if sc.PollInterval < minPollInterval {
		errs = append(errs, ValidationError{
			Path:    "source.poll_interval",
			Message: fmt.Sprintf("must be at least %s; got %s", minPollInterval, sc.PollInterval),
			Hint:    "use a duration such as 250ms",
		})
	}

	if sc.MaxLineBytes < 256 {
		errs = append(errs, ValidationError{
			Path:    "source.max_line_bytes",
			Message: fmt.Sprintf("must be >= 256; got %d", sc.MaxLineBytes),
		})
	}

	return errs
}

func (c *Config) validateBuffer() []error {
	if c.Buffer.Capacity < 1 || c.Buffer.Capacity > maxCapacity {
		return []error{ValidationError{
			Path:    "buffer.capacity",
			Message: fmt.Sprintf("must be between 1 and %d; got %d", maxCapacity, c.Buffer.Capacity),
		}}
	}
	return nil
}

func (c *Config) validateLogging() []error {
	var errs []error
	lc := c.Logging

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[lc.Level] {
		errs = append(errs, ValidationError{
			Path:    "logging.level",
			Message: fmt.Sprintf("invalid value %q", lc.Level),
			Hint:    "allowed values: debug, info, warn, error",
		})
	}

	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[lc.Format] {
		errs = append(errs, ValidationError{
			Path:    "logging.format",
			Message: fmt.Sprintf("invalid value %q", lc.Format),
			Hint:    "allowed values: json, console",
		})
	}

	if lc.OutputFile != "" {
		dir := filepath.Dir(lc.OutputFile)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			errs = append(errs, ValidationError{
				Path:    "logging.output_file",
				Message: fmt.Sprintf("parent directory %s does not exist", dir),
			})
		}
	}

	return errs
}

func (c *Config) validateAPI() []error {
	ac := c.API
	if !ac.Enabled {
		return nil
	}

	var errs []error
	host, port, err := net.SplitHostPort(ac.ListenAddr)
	if err != nil {
		errs = append(errs, ValidationError{
			Path:    "api.listen_addr",
			Message: fmt.Sprintf("invalid address %q", ac.ListenAddr),
			Hint:    "expected host:port, e.g. 127.0.0.1:8088",
		})
	} else {
		if n, perr := strconv.Atoi(port); perr != nil || n < 0 || n > 65535 {
			errs = append(errs, ValidationError{
				Path:    "api.listen_addr",
				Message: fmt.Sprintf("invalid port %q", port),
			})
		}
		if host != "" && host != "localhost" && net.ParseIP(host) == nil {
			errs = append(errs, ValidationError{
				Path:    "api.listen_addr",
				Message: fmt.Sprintf("invalid host %q", host),
			})
		}
	}

	if ac.SubscriberBuffer < 1 {
		errs = append(errs, ValidationError{
			Path:    "api.subscriber_buffer",
			Message: fmt.Sprintf("must be >= 1; got %d", ac.SubscriberBuffer),
		})
	}
	if ac.MaxConnections < 1 {
		errs = append(errs, ValidationError{
			Path:    "api.max_connections",
			Message: fmt.Sprintf("must be >= 1; got %d", ac.MaxConnections),
		})
	}
	if ac.HostInterval < 0 || (ac.HostInterval > 0 && ac.HostInterval < time.Second) {
		errs = append(errs, ValidationError{
			Path:    "api.host_interval",
			Message: fmt.Sprintf("must be 0 or at least 1s; got %s", ac.HostInterval),
			Hint:    "set 0 to disable host sampling",
		})
	}

	return errs
}

func (c *Config) validateFilters() []error {
	var errs []error
	set := filter.NewSet()
	for _, sv := range c.UI.Filters.slotValues() {
		if err := set.SetSlot(sv.slot, sv.value); err != nil {
			errs = append(errs, ValidationError{
				Path:    "ui.filters." + sv.key,
				Message: err.Error(),
			})
		}
	}
	return errs
}

type slotValue struct {
	key   string
	slot  filter.Slot
	value string
}

func (f FiltersConfig) slotValues() []slotValue {
	return []slotValue{
		{"interface", filter.SlotInterface, f.Interface},
		{"protocol", filter.SlotProtocol, f.Protocol},
		{"action", filter.SlotAction, f.Action},
		{"source", filter.SlotSource, f.Source},
		{"destination", filter.SlotDestination, f.Destination},
		{"port", filter.SlotPort, f.Port},
	}
}

// BuildSet returns a filter set with every configured slot applied.
func (f FiltersConfig) BuildSet() (*filter.Set, error) {
	set := filter.NewSet()
	for _, sv := range f.slotValues() {
		if err := set.SetSlot(sv.slot, sv.value); err != nil {
			return nil, err
		}
	}
	return set, nil
}
