package config

import (
	"runtime"

	"github.com/xraph/kiln/internal/observability"
	"github.com/xraph/kiln/logger"
)

// FileNames are the config file names searched for, in order.
var FileNames = []string{".kiln.yaml", ".kiln.yml"}

// Config is the content of a .kiln.yaml file.
type Config struct {
	Logging logger.LoggingConfig        `yaml:"logging"`
	Compile CompileConfig               `yaml:"compile"`
	Output  OutputConfig                `yaml:"output"`
	Metrics observability.MetricsConfig `yaml:"metrics"`
	Tracing observability.TracingConfig `yaml:"tracing"`

	// Set by the loader, not read from the file.
	RootDir    string `yaml:"-"`
	ConfigPath string `yaml:"-"`
}

// CompileConfig controls the compile run.
type CompileConfig struct {
	// Workers bounds how many root trees are compiled in parallel; 0 means GOMAXPROCS.
	Workers        int  `yaml:"workers"`
	FailOnWarnings bool `yaml:"fail_on_warnings"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Format string `yaml:"format"`
	// Color is "auto", "always" or "never".
	Color string `yaml:"color"`
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	return &Config{
		Logging: logger.LoggingConfig{
			Level:  "warn",
			Format: "console",
			Output: "stderr",
		},
		Compile: CompileConfig{
			Workers: 0,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  "auto",
		},
		Metrics: observability.MetricsConfig{
			Namespace: "kiln",
		},
		Tracing: observability.TracingConfig{
			ServiceName: "kiln",
			Endpoint:    "localhost:4318",
		},
	}
}

// EffectiveWorkers returns the worker bound to use.
func (c *Config) EffectiveWorkers() int {
	if c.Compile.Workers > 0 {
		return c.Compile.Workers
	}
	return runtime.GOMAXPROCS(0)
}
