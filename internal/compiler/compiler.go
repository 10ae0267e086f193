// Package compiler runs the binding graph pipeline over a model: catalog and
// hierarchy construction, then per root tree resolution, validation and planning.
package compiler

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/xraph/kiln/internal/catalog"
	"github.com/xraph/kiln/internal/errors"
	"github.com/xraph/kiln/internal/hierarchy"
	"github.com/xraph/kiln/internal/model"
	"github.com/xraph/kiln/internal/observability"
	"github.com/xraph/kiln/internal/planner"
	"github.com/xraph/kiln/internal/resolver"
	"github.com/xraph/kiln/internal/validator"
	"github.com/xraph/kiln/logger"
)

// Pipeline phases, as reported to the metrics recorder.
const (
	PhaseCheck     = "check"
	PhaseCatalog   = "catalog"
	PhaseHierarchy = "hierarchy"
	PhaseResolve   = "resolve"
	PhaseValidate  = "validate"
	PhasePlan      = "plan"
)

// Run outcomes.
const (
	OutcomeAccepted  = "accepted"
	OutcomeRejected  = "rejected"
	OutcomeInvalid   = "invalid"
	OutcomeCancelled = "cancelled"
	OutcomeFailed    = "failed"
)

// Compiler compiles models. It holds no per-run state and is safe for
// concurrent use.
type Compiler struct {
	logger   logger.Logger
	recorder observability.Recorder
	tracer   oteltrace.Tracer
	workers  int
}

// New creates a compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		logger:   logger.NewNoopLogger(),
		recorder: observability.NoopRecorder{},
		tracer:   observability.Tracer(nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile compiles m with a compiler built from opts.
func Compile(ctx context.Context, m *model.Model, opts ...Option) (Results, error) {
	return New(opts...).Compile(ctx, m)
}

// Workers returns the effective worker bound.
func (c *Compiler) Workers() int {
	if c.workers > 0 {
		return c.workers
	}
	return runtime.GOMAXPROCS(0)
}

type session struct {
	runID   string
	log     logger.Logger
	catalog *catalog.Catalog
	tree    *hierarchy.Tree
}

// Compile checks m, builds the catalog and hierarchy, and compiles every root
// tree on a bounded worker pool. Results are in model component order. A
// rejected component is reported in the results, not as an error; the error is
// reserved for invalid models and cancellation, in which case no results are
// returned.
func (c *Compiler) Compile(ctx context.Context, m *model.Model) (Results, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	runID := uuid.NewString()
	ctx = logger.WithRunID(ctx, runID)

	ctx, span := c.tracer.Start(ctx, "kiln.compile", oteltrace.WithAttributes(
		attribute.String("kiln.run_id", runID),
	))

	results, err := c.compile(ctx, runID, m)
	outcome := outcomeOf(results, err)
	span.SetAttributes(attribute.String("kiln.outcome", outcome))
	observability.EndSpan(span, err)
	c.recorder.RunFinished(outcome, time.Since(start))

	log := c.logger.With(logger.RunID(runID))
	if err != nil {
		log.Warn("compile aborted", logger.Error(err), logger.String("outcome", outcome))
		return nil, err
	}
	log.Info("compile finished",
		logger.String("outcome", outcome),
		logger.Int("components", len(results)),
		logger.Int("rejected", len(results.Rejected())),
		logger.Duration("duration", time.Since(start)),
	)
	return results, nil
}

func (c *Compiler) compile(ctx context.Context, runID string, m *model.Model) (Results, error) {
	s, err := c.prepare(ctx, runID, m)
	if err != nil {
		return nil, err
	}

	roots := s.tree.Roots()
	s.log.Info("compile started",
		logger.Int("components", len(s.tree.Components())),
		logger.Int("roots", len(roots)),
		logger.Int("bindings", s.catalog.Len()),
		logger.Int("workers", c.Workers()),
	)

	// Each tree writes only the slots of its own components.
	results := make(Results, len(s.tree.Components()))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Workers())
	for _, root := range roots {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return errors.ErrContextCancelled("compile", err)
			}
			return c.compileTree(gctx, s, root, results)
		})
	}

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.IsContextCancelled(err) {
			return nil, errors.ErrContextCancelled("compile", ctxErr)
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.ErrContextCancelled("compile", err)
	}
	return results, nil
}

// prepare is the barrier every worker starts behind: the model is checked and
// the catalog and hierarchy are complete and immutable.
func (c *Compiler) prepare(ctx context.Context, runID string, m *model.Model) (*session, error) {
	_, span := c.tracer.Start(ctx, "kiln.prepare")
	defer span.End()

	phase := time.Now()
	if err := m.Check(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	c.recorder.ObservePhase(PhaseCheck, time.Since(phase))

	phase = time.Now()
	cat := catalog.FromModel(m)
	c.recorder.ObservePhase(PhaseCatalog, time.Since(phase))

	phase = time.Now()
	tree, err := hierarchy.Build(m)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	c.recorder.ObservePhase(PhaseHierarchy, time.Since(phase))

	if err := ctx.Err(); err != nil {
		return nil, errors.ErrContextCancelled("prepare", err)
	}

	return &session{
		runID:   runID,
		log:     c.logger.With(logger.RunID(runID)),
		catalog: cat,
		tree:    tree,
	}, nil
}

func (c *Compiler) compileTree(ctx context.Context, s *session, root model.ComponentID, results Results) (err error) {
	ctx, span := c.tracer.Start(ctx, "kiln.compile_tree", oteltrace.WithAttributes(
		attribute.String("kiln.root", string(root)),
	))
	defer func() { observability.EndSpan(span, err) }()

	log := s.log.With(logger.String("root", string(root)))
	done := logger.TrackWithLogger(log, "tree")
	defer done()

	phase := time.Now()
	resolved, err := resolver.New(s.catalog, s.tree).ResolveTree(ctx, root)
	if err != nil {
		return err
	}
	c.recorder.ObservePhase(PhaseResolve, time.Since(phase))

	phase = time.Now()
	validated := validator.New(s.tree).ValidateTree(resolved)
	c.recorder.ObservePhase(PhaseValidate, time.Since(phase))

	phase = time.Now()
	plans := planner.New(s.catalog, s.tree)
	for _, v := range validated {
		result := ComponentResult{
			Component: v.Component,
			Status:    v.Status(),
			Problems:  v.Problems,
		}
		if v.Accepted() {
			plan, warnings, planErr := plans.Plan(v.Graph)
			if planErr != nil {
				return fmt.Errorf("plan component %s: %w", v.Component, planErr)
			}
			result.Plan = plan
			result.Problems = append(result.Problems, warnings...)
		}
		c.report(log, result, v.Graph, declared(s, v.Component))
		results[s.tree.Index(v.Component)] = result
	}
	c.recorder.ObservePhase(PhasePlan, time.Since(phase))

	return nil
}

// declared counts the bindings owned at id itself: those of its installed
// modules and those synthesized for the component.
func declared(s *session, id model.ComponentID) int {
	n := len(s.catalog.ByComponent(id))
	for _, module := range s.tree.InstalledModules(id) {
		n += len(s.catalog.ByModule(module))
	}
	return n
}

func (c *Compiler) report(log logger.Logger, r ComponentResult, g *resolver.BindingGraph, declared int) {
	c.recorder.ComponentCompiled(string(r.Status), g.Len())
	for _, p := range r.Problems {
		c.recorder.ProblemReported(string(p.Code), string(p.Severity))
	}

	fields := []logger.Field{
		logger.Component(string(r.Component)),
		logger.String("status", string(r.Status)),
		logger.Int("bindings", g.Len()),
		logger.Int("declared", declared),
		logger.Int("problems", len(r.Problems)),
	}
	if r.Accepted() {
		log.Debug("component accepted", fields...)
		return
	}
	log.Info("component rejected", append(fields, logger.Strings("codes", codes(r)))...)
}

// Inspect resolves and validates the tree holding id and returns the result of
// id. Nothing is planned.
func (c *Compiler) Inspect(ctx context.Context, m *model.Model, id model.ComponentID) (validator.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := c.prepare(ctx, uuid.NewString(), m)
	if err != nil {
		return validator.Result{}, err
	}
	if s.tree.Index(id) < 0 {
		return validator.Result{}, errors.ErrUnknownComponent(string(id))
	}

	resolved, err := resolver.New(s.catalog, s.tree).ResolveTree(ctx, s.tree.Root(id))
	if err != nil {
		return validator.Result{}, err
	}
	for _, v := range validator.New(s.tree).ValidateTree(resolved) {
		if v.Component == id {
			return v, nil
		}
	}
	return validator.Result{}, errors.ErrUnknownComponent(string(id))
}

func codes(r ComponentResult) []string {
	out := make([]string, 0, len(r.Problems))
	for _, code := range r.Problems.Codes() {
		out = append(out, string(code))
	}
	return out
}

func outcomeOf(results Results, err error) string {
	switch {
	case err == nil && len(results.Rejected()) == 0:
		return OutcomeAccepted
	case err == nil:
		return OutcomeRejected
	case errors.IsContextCancelled(err):
		return OutcomeCancelled
	case errors.IsInvalidModel(err):
		return OutcomeInvalid
	default:
		return OutcomeFailed
	}
}
