package config

import (
	"fmt"

	"github.com/xraph/kiln/internal/errors"
)

// Formats accepted by output.format.
var Formats = []string{"text", "json", "yaml"}

// ValidFormat reports whether format is a known output format.
func ValidFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// Validate validates the configuration
func Validate(cfg *Config) error {
	if cfg.Compile.Workers < 0 {
		return errors.ErrConfigError(fmt.Sprintf("compile.workers must not be negative, got %d", cfg.Compile.Workers), nil)
	}

	if !ValidFormat(cfg.Output.Format) {
		return errors.ErrConfigError(fmt.Sprintf("output.format must be one of %v, got %q", Formats, cfg.Output.Format), nil)
	}

	switch cfg.Output.Color {
	case "", "auto", "always", "never":
	default:
		return errors.ErrConfigError(fmt.Sprintf("output.color must be auto, always or never, got %q", cfg.Output.Color), nil)
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		return errors.ErrConfigError("tracing.endpoint is required when tracing is enabled", nil)
	}

	if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1 {
		return errors.ErrConfigError("tracing.sample_rate must be within [0, 1]", nil)
	}

	return nil
}
