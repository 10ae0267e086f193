package cli

import (
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	// Green applies green color to output.
	Green = color.New(color.FgGreen).SprintFunc()
	// Red applies red color to output.
	Red = color.New(color.FgRed).SprintFunc()
	// Yellow applies yellow color to output.
	Yellow = color.New(color.FgYellow).SprintFunc()
	// Blue applies blue color to output.
	Blue = color.New(color.FgBlue).SprintFunc()
	// Gray applies gray color to output.
	Gray = color.New(color.FgHiBlack).SprintFunc()

	// Bold applies bold style to output.
	Bold = color.New(color.Bold).SprintFunc()
)

// ColorMode selects when output is colored.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ColorConfig controls color output behavior.
type ColorConfig struct {
	Enabled    bool
	ForceColor bool
	NoColor    bool
}

// DefaultColorConfig returns the default color configuration.
func DefaultColorConfig() ColorConfig {
	return ColorConfig{
		Enabled:    IsTerminal(os.Stdout),
		ForceColor: os.Getenv("FORCE_COLOR") != "" || os.Getenv("CLICOLOR_FORCE") != "",
		NoColor:    os.Getenv("NO_COLOR") != "" || os.Getenv("CLICOLOR") == "0",
	}
}

// ColorConfigFor applies mode over the environment defaults.
func ColorConfigFor(mode ColorMode) ColorConfig {
	cfg := DefaultColorConfig()
	switch mode {
	case ColorAlways:
		cfg.ForceColor = true
		cfg.NoColor = false
	case ColorNever:
		cfg.NoColor = true
	}
	return cfg
}

// IsTerminal checks if the writer is a terminal.
func IsTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// ConfigureColors configures the global color settings.
func ConfigureColors(config ColorConfig) {
	switch {
	case config.NoColor:
		color.NoColor = true
	case config.ForceColor:
		color.NoColor = false
	default:
		color.NoColor = !config.Enabled
	}
}

func colorsEnabled() bool {
	return !color.NoColor
}

// Colorize applies a color function to a string if colors are enabled.
func Colorize(colorFunc func(...any) string, s string) string {
	if color.NoColor {
		return s
	}

	return colorFunc(s)
}
