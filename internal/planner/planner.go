// Package planner turns accepted binding graphs into construction plans.
package planner

import (
	"fmt"
	"math"
	"sort"

	"github.com/xraph/kiln/internal/catalog"
	"github.com/xraph/kiln/internal/diag"
	"github.com/xraph/kiln/internal/errors"
	"github.com/xraph/kiln/internal/hierarchy"
	"github.com/xraph/kiln/internal/model"
	"github.com/xraph/kiln/internal/resolver"
)

// Planner orders and annotates the bindings of accepted graphs.
type Planner struct {
	catalog *catalog.Catalog
	tree    *hierarchy.Tree
}

// New returns a planner. The catalog supplies declaration order for tie-breaking.
func New(cat *catalog.Catalog, tree *hierarchy.Tree) *Planner {
	return &Planner{catalog: cat, tree: tree}
}

// Plan builds the construction plan of an accepted graph. Warnings are
// returned alongside; an error means the graph was not acyclic over eager edges
// and should never have been accepted.
func (p *Planner) Plan(g *resolver.BindingGraph) (*ConstructionPlan, diag.List, error) {
	if !g.Frozen() {
		return nil, nil, fmt.Errorf("plan %s: %w", g.Component, errors.ErrNotValidated)
	}
	var warnings diag.List

	bindings := g.Bindings()
	sort.SliceStable(bindings, func(i, j int) bool {
		return p.declarationIndex(bindings[i]) < p.declarationIndex(bindings[j])
	})

	byKey := make(map[model.Key]*resolver.ResolvedBinding, len(bindings))
	dg := NewDependencyGraph()
	for _, rb := range bindings {
		if rb.Kind == model.KindAbsent {
			continue
		}
		byKey[rb.Key] = rb
		var eager []model.Key
		for _, dep := range rb.Dependencies {
			if dep.Owner == g.Component && !dep.Absent && !dep.Missing && !dep.Request.Deferred() {
				eager = append(eager, dep.Request.Key)
			}
		}
		dg.AddNode(rb.Key, eager)
	}

	order, err := dg.TopologicalSort()
	if err != nil {
		return nil, nil, err
	}

	plan := &ConstructionPlan{
		Component: g.Component,
		Scope:     g.Scope,
		Steps:     make([]Step, 0, len(order)),
	}
	if parent, ok := p.tree.Parent(g.Component); ok {
		plan.Parent = parent
	}

	for _, key := range order {
		rb := byKey[key]
		step := Step{
			Key:     rb.Key,
			Binding: rb.ID(),
			Kind:    rb.Kind,
			Scope:   rb.Scope,
			Tier:    tierOf(rb),
		}
		if rb.Binding != nil {
			step.MapKey = rb.Binding.MapKey
			step.Subcomponent = rb.Binding.Subcomponent
		}
		for _, dep := range rb.Dependencies {
			pd := p.dependency(g, dep, &warnings)
			step.Dependencies = append(step.Dependencies, pd)
			if pd.Deferred && !pd.Absent {
				plan.Closures = append(plan.Closures, Closure{From: rb.Key, To: pd.Key, Kind: pd.Kind})
			}
		}
		plan.Steps = append(plan.Steps, step)
	}

	for _, ep := range g.EntryPoints {
		plan.EntryPoints = append(plan.EntryPoints, p.dependency(g, ep, &warnings))
	}
	for _, inh := range g.Inherited() {
		plan.Inherited = append(plan.Inherited, InheritedRef{Key: inh.Key, Source: inh.Owner})
	}
	plan.Subcomponents = p.tree.Children(g.Component)

	return plan, warnings, nil
}

func (p *Planner) dependency(g *resolver.BindingGraph, dep resolver.Dependency, warnings *diag.List) PlanDependency {
	pd := PlanDependency{
		Key:       dep.Request.Key,
		Kind:      dep.Request.Kind.Normalize(),
		Deferred:  dep.Request.Deferred(),
		Optional:  dep.Request.Optional,
		Absent:    dep.Absent,
		Source:    dep.Owner,
		Inherited: dep.Owner != "" && dep.Owner != g.Component,
	}
	if pd.Inherited && !p.tree.IsAncestorOrSelf(dep.Owner, g.Component) {
		*warnings = append(*warnings, diag.LifetimeViolation(g.Component, pd.Key, p.bindingID(dep), dep.Owner))
	}
	return pd
}

func (p *Planner) bindingID(dep resolver.Dependency) model.BindingID {
	return model.BindingID(string(dep.Owner) + ":" + dep.Request.Key.String())
}

// declarationIndex orders declared bindings by model position and synthetic
// ones after them, in resolution order.
func (p *Planner) declarationIndex(rb *resolver.ResolvedBinding) int {
	if rb.Binding == nil {
		return math.MaxInt
	}
	if i := p.catalog.Index(rb.Binding); i >= 0 {
		return i
	}
	return math.MaxInt
}

func tierOf(rb *resolver.ResolvedBinding) CacheTier {
	switch {
	case !rb.Kind.Constructed():
		return TierBoundInstance
	case rb.Scope != "":
		return TierPerComponentInstance
	default:
		return TierPerCall
	}
}
