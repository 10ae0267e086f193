package main

import (
	"context"

	"github.com/xraph/vessel"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/xraph/kiln/internal/compiler"
	"github.com/xraph/kiln/internal/config"
	"github.com/xraph/kiln/internal/errors"
	"github.com/xraph/kiln/internal/observability"
	"github.com/xraph/kiln/logger"
)

// tracing pairs a tracer provider with its shutdown hook.
type tracing struct {
	Provider oteltrace.TracerProvider
	Shutdown observability.ShutdownFunc
}

// newContainer wires the services one command invocation needs from cfg.
func newContainer(ctx context.Context, cfg *config.Config) (vessel.Vessel, error) {
	c := vessel.New()

	if err := vessel.ProvideValue(c, cfg); err != nil {
		return nil, err
	}

	constructors := []any{
		func(cfg *config.Config) logger.Logger {
			return logger.NewLogger(cfg.Logging)
		},
		func(cfg *config.Config) observability.Recorder {
			return observability.NewRecorder(cfg.Metrics)
		},
		func(cfg *config.Config) (*tracing, error) {
			provider, shutdown, err := observability.NewTracerProvider(ctx, cfg.Tracing)
			if err != nil {
				return nil, errors.ErrConfigError("failed to set up tracing", err)
			}
			return &tracing{Provider: provider, Shutdown: shutdown}, nil
		},
		func(cfg *config.Config, log logger.Logger, rec observability.Recorder, tr *tracing) *compiler.Compiler {
			return compiler.New(
				compiler.WithLogger(log.Named("compiler")),
				compiler.WithWorkers(cfg.Compile.Workers),
				compiler.WithRecorder(rec),
				compiler.WithTracerProvider(tr.Provider),
			)
		},
	}
	for _, constructor := range constructors {
		if err := vessel.Provide(c, constructor); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// session holds the services of one command invocation.
type session struct {
	cfg      *config.Config
	log      logger.Logger
	recorder observability.Recorder
	tracing  *tracing
	compiler *compiler.Compiler
}

func newSession(ctx context.Context, cfg *config.Config) (*session, error) {
	c, err := newContainer(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg}
	if s.log, err = vessel.Inject[logger.Logger](c); err != nil {
		return nil, err
	}
	if s.recorder, err = vessel.Inject[observability.Recorder](c); err != nil {
		return nil, err
	}
	if s.tracing, err = vessel.Inject[*tracing](c); err != nil {
		return nil, err
	}
	if s.compiler, err = vessel.Inject[*compiler.Compiler](c); err != nil {
		return nil, err
	}
	return s, nil
}

// close writes the metrics textfile, if configured, and flushes spans.
func (s *session) close(ctx context.Context) error {
	var errs []error

	if m, ok := s.recorder.(*observability.Metrics); ok && s.cfg.Metrics.Textfile != "" {
		if err := m.WriteTextfile(s.cfg.Metrics.Textfile); err != nil {
			errs = append(errs, errors.ErrConfigError("failed to write metrics textfile", err))
		} else {
			s.log.Debug("metrics written", logger.String("path", s.cfg.Metrics.Textfile))
		}
	}

	// Shutdown must run on a live context even after an interrupt.
	if err := s.tracing.Shutdown(context.WithoutCancel(ctx)); err != nil {
		errs = append(errs, err)
	}

	// stderr sync errors are not actionable
	_ = s.log.Sync()

	return errors.Join(errs...)
}
