// Package kiln compiles dependency-injection binding models ahead of time.
//
// A model declares keys, bindings grouped into modules, and a forest of
// components. Compile resolves every component against the bindings visible at
// its level of the hierarchy, validates the resulting graph, and produces a
// construction plan for each component that can be built:
//
//	m := &kiln.Model{
//	    Bindings: []*kiln.Binding{
//	        kiln.ConstructorBinding(kiln.NewKey("Foo"), "Singleton", kiln.Instance(kiln.NewKey("Bar"))),
//	        kiln.ConstructorBinding(kiln.NewKey("Bar"), ""),
//	    },
//	    Components: []kiln.Component{{
//	        ID:          "app",
//	        Scope:       "Singleton",
//	        EntryPoints: []kiln.DependencyRequest{kiln.Instance(kiln.NewKey("Foo"))},
//	    }},
//	}
//
//	results, err := kiln.Compile(ctx, m)
//	if err != nil {
//	    return err // invalid model or cancelled run
//	}
//	for _, r := range results {
//	    fmt.Println(r.Component, r.Status)
//	}
//
// Problems with a component never fail the run. They are reported on the
// component's result, and a rejected component has no plan.
package kiln

import (
	"context"

	"github.com/xraph/kiln/internal/compiler"
	"github.com/xraph/kiln/internal/diag"
	"github.com/xraph/kiln/internal/loader"
	"github.com/xraph/kiln/internal/model"
	"github.com/xraph/kiln/internal/planner"
	"github.com/xraph/kiln/internal/validator"
)

// Compiler runs compile passes. It is safe for concurrent use.
type Compiler = compiler.Compiler

// Option configures a Compiler.
type Option = compiler.Option

// ComponentResult is the outcome for one component.
type ComponentResult = compiler.ComponentResult

// Results are component results in model order.
type Results = compiler.Results

// Status is accepted or rejected.
type Status = validator.Status

const (
	StatusAccepted = validator.StatusAccepted
	StatusRejected = validator.StatusRejected
)

// Plans.
type (
	ConstructionPlan = planner.ConstructionPlan
	Step             = planner.Step
	CacheTier        = planner.CacheTier
)

// Problems.
type (
	Problem  = diag.Problem
	Problems = diag.List
	Code     = diag.Code
	Severity = diag.Severity
)

// Model types.
type (
	Model             = model.Model
	Key               = model.Key
	DependencyRequest = model.DependencyRequest
	RequestKind       = model.RequestKind
	Binding           = model.Binding
	BindingID         = model.BindingID
	BindingKind       = model.BindingKind
	Module            = model.Module
	Component         = model.Component
	ComponentID       = model.ComponentID
)

var (
	NewKey         = model.NewKey
	QualifiedKey   = model.QualifiedKey
	ParseKey       = model.ParseKey
	Instance       = model.Instance
	Provider       = model.Provider
	Lazy           = model.Lazy
	ProviderOfLazy = model.ProviderOfLazy

	ConstructorBinding       = model.ConstructorBinding
	ProvisionBinding         = model.ProvisionBinding
	SetContributionBinding   = model.SetContributionBinding
	MapContributionBinding   = model.MapContributionBinding
	MultibindsDeclaration    = model.MultibindsDeclaration
	AssistedInjectionBinding = model.AssistedInjectionBinding
	AssistedFactoryBinding   = model.AssistedFactoryBinding
)

// Compiler options.
var (
	WithLogger         = compiler.WithLogger
	WithWorkers        = compiler.WithWorkers
	WithRecorder       = compiler.WithRecorder
	WithTracerProvider = compiler.WithTracerProvider
)

// New creates a compiler.
func New(opts ...Option) *Compiler {
	return compiler.New(opts...)
}

// Compile compiles m and returns one result per component, in model order.
// The error is non-nil only when the model is malformed or ctx is cancelled.
func Compile(ctx context.Context, m *Model, opts ...Option) (Results, error) {
	return compiler.Compile(ctx, m, opts...)
}

// LoadModel reads a YAML or JSON model file.
func LoadModel(path string) (*Model, error) {
	return loader.LoadFile(path)
}
