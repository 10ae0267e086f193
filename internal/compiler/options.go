package compiler

import (
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/xraph/kiln/internal/observability"
	"github.com/xraph/kiln/logger"
)

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logger.Logger) Option {
	return func(c *Compiler) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithWorkers bounds how many root trees are compiled at once. Values below one
// mean GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *Compiler) {
		c.workers = n
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r observability.Recorder) Option {
	return func(c *Compiler) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithTracerProvider sets the provider compile spans are created from.
func WithTracerProvider(tp oteltrace.TracerProvider) Option {
	return func(c *Compiler) {
		c.tracer = observability.Tracer(tp)
	}
}
