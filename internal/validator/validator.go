// Package validator checks resolved binding graphs and decides, per component,
// whether the graph is accepted.
package validator

import (
	"github.com/xraph/kiln/internal/diag"
	"github.com/xraph/kiln/internal/hierarchy"
	"github.com/xraph/kiln/internal/model"
	"github.com/xraph/kiln/internal/resolver"
)

// Status is the outcome of validating one component.
type Status string

const (
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Result is the validation outcome of one component. Warnings do not reject.
type Result struct {
	Component model.ComponentID
	Graph     *resolver.BindingGraph
	Problems  diag.List
}

// Accepted reports whether no error-severity problem was found.
func (r Result) Accepted() bool {
	return !r.Problems.HasErrors()
}

// Status returns StatusAccepted or StatusRejected.
func (r Result) Status() Status {
	if r.Accepted() {
		return StatusAccepted
	}
	return StatusRejected
}

// Validator runs the graph checks.
type Validator struct {
	tree *hierarchy.Tree
}

// New returns a validator over the scope hierarchy.
func New(tree *hierarchy.Tree) *Validator {
	return &Validator{tree: tree}
}

// ValidateTree validates every graph of a resolved tree in pre-order, so that a
// component whose ancestor is rejected is rejected as well. Graphs are frozen.
func (v *Validator) ValidateTree(tree *resolver.TreeResult) []Result {
	results := make([]Result, 0, len(tree.Graphs))
	rejected := make(map[model.ComponentID]bool, len(tree.Graphs))

	for _, g := range tree.Graphs {
		res := v.Validate(g)
		if parent, ok := v.tree.Parent(g.Component); ok && rejected[parent] {
			res.Problems = append(res.Problems, diag.AncestorRejected(g.Component, parent))
		}
		rejected[g.Component] = !res.Accepted()
		results = append(results, res)
	}
	return results
}

// Validate checks one graph. Every check runs; problems are listed in check order.
func (v *Validator) Validate(g *resolver.BindingGraph) Result {
	var problems diag.List

	problems = append(problems, g.Problems.WithCode(diag.CodeMissingBinding)...)
	problems = append(problems, v.duplicateBindings(g)...)
	problems = append(problems, v.duplicateMapKeys(g)...)
	problems = append(problems, g.Problems.WithCode(diag.CodeAssistedInjectionRequest)...)
	problems = append(problems, v.scopeMismatches(g)...)
	problems = append(problems, v.duplicateScopes(g)...)
	problems = append(problems, v.cycles(g)...)

	if !g.Reached && g.Parent != nil {
		problems = append(problems, diag.UnusedSubcomponent(g.Component))
	}

	g.Freeze()
	return Result{
		Component: g.Component,
		Graph:     g,
		Problems:  problems,
	}
}

func (v *Validator) duplicateBindings(g *resolver.BindingGraph) diag.List {
	var problems diag.List
	for _, rb := range g.Bindings() {
		if rb.Kind == model.KindMultibinding || len(rb.Candidates) < 2 {
			continue
		}
		ids := make([]model.BindingID, len(rb.Candidates))
		for i, b := range rb.Candidates {
			ids[i] = b.ID
		}
		problems = append(problems, diag.DuplicateBinding(g.Component, rb.Key, ids))
	}
	return problems
}

func (v *Validator) duplicateMapKeys(g *resolver.BindingGraph) diag.List {
	var problems diag.List
	for _, rb := range g.Bindings() {
		if rb.Kind != model.KindMultibinding {
			continue
		}
		byMapKey := make(map[string][]model.BindingID)
		var order []string
		for _, c := range rb.Contributions {
			if c.Kind != model.KindMapContribution {
				continue
			}
			if _, seen := byMapKey[c.MapKey]; !seen {
				order = append(order, c.MapKey)
			}
			byMapKey[c.MapKey] = append(byMapKey[c.MapKey], c.ID)
		}
		for _, mk := range order {
			if ids := byMapKey[mk]; len(ids) > 1 {
				problems = append(problems, diag.DuplicateMapKey(g.Component, rb.Key, mk, ids))
			}
		}
	}
	return problems
}

func (v *Validator) scopeMismatches(g *resolver.BindingGraph) diag.List {
	var problems diag.List
	for _, rb := range g.Bindings() {
		if rb.Scope == "" || v.tree.Scope(rb.Owner) == rb.Scope {
			continue
		}
		problems = append(problems, diag.ScopeMismatch(g.Component, rb.Key, rb.ID(), rb.Scope, rb.RequestedBy))
	}
	return problems
}

func (v *Validator) duplicateScopes(g *resolver.BindingGraph) diag.List {
	if g.Scope == "" {
		return nil
	}
	for _, ancestor := range v.tree.Ancestors(g.Component)[1:] {
		if v.tree.Scope(ancestor) == g.Scope {
			return diag.List{diag.DuplicateScope(g.Component, g.Scope, ancestor)}
		}
	}
	return nil
}
