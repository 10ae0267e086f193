package resolver

import (
	"strings"

	"github.com/xraph/kiln/internal/diag"
	"github.com/xraph/kiln/internal/model"
)

// Dependency is a resolved dependency request.
type Dependency struct {
	Request model.DependencyRequest
	// Owner is the component whose graph holds the target. Empty when missing.
	Owner   model.ComponentID
	Absent  bool
	Missing bool
}

// ResolvedBinding is the binding chosen for a key at its owning component.
type ResolvedBinding struct {
	Key     model.Key
	Kind    model.BindingKind
	Binding *model.Binding
	Scope   string
	Owner   model.ComponentID

	// RequestedBy is the component whose request first placed the binding here.
	RequestedBy model.ComponentID

	// Candidates are every binding visible for the key at the owner level; more
	// than one is a conflict.
	Candidates    []*model.Binding
	Contributions []*model.Binding
	Declarations  []*model.Binding
	Dependencies  []Dependency

	// Order is the resolution order within the owner's graph.
	Order int
}

// ID returns the binding id, or a synthetic one for resolver-made bindings.
func (r *ResolvedBinding) ID() model.BindingID {
	if r.Binding != nil {
		return r.Binding.ID
	}
	return model.BindingID(string(r.Kind) + "(" + r.Key.String() + ")")
}

// Edge is a dependency edge actually walked. From is the zero key for entry points.
type Edge struct {
	From  model.Key
	To    model.Key
	Owner model.ComponentID
	Kind  model.RequestKind
}

// InheritedKey is a key this component uses but an ancestor owns.
type InheritedKey struct {
	Key   model.Key
	Owner model.ComponentID
}

// BindingGraph is the resolution result of one component.
type BindingGraph struct {
	Component   model.ComponentID
	Scope       string
	Parent      *BindingGraph
	EntryPoints []Dependency
	Edges       []Edge
	Problems    diag.List
	Reached     bool

	resolved  map[model.Key]*ResolvedBinding
	order     []*ResolvedBinding
	inherited map[model.Key]model.ComponentID
	inhOrder  []model.Key
	missing   map[model.Key]bool
	assisted  map[model.Key]bool
	cycles    map[string]bool
	frozen    bool
}

func newGraph(component model.ComponentID, scope string, parent *BindingGraph) *BindingGraph {
	return &BindingGraph{
		Component: component,
		Scope:     scope,
		Parent:    parent,
		resolved:  make(map[model.Key]*ResolvedBinding),
		inherited: make(map[model.Key]model.ComponentID),
		missing:   make(map[model.Key]bool),
		assisted:  make(map[model.Key]bool),
		cycles:    make(map[string]bool),
	}
}

// Lookup returns the binding this component owns for key.
func (g *BindingGraph) Lookup(key model.Key) (*ResolvedBinding, bool) {
	rb, ok := g.resolved[key]
	return rb, ok
}

// Bindings returns the owned bindings in resolution order.
func (g *BindingGraph) Bindings() []*ResolvedBinding {
	return append([]*ResolvedBinding(nil), g.order...)
}

// Len returns the number of owned bindings.
func (g *BindingGraph) Len() int {
	return len(g.order)
}

// Inherited returns the keys resolved through ancestors, in first-use order.
func (g *BindingGraph) Inherited() []InheritedKey {
	out := make([]InheritedKey, len(g.inhOrder))
	for i, k := range g.inhOrder {
		out[i] = InheritedKey{Key: k, Owner: g.inherited[k]}
	}
	return out
}

// InheritedOwner returns the ancestor owning key, if key is inherited.
func (g *BindingGraph) InheritedOwner(key model.Key) (model.ComponentID, bool) {
	owner, ok := g.inherited[key]
	return owner, ok
}

// Freeze makes the graph read-only.
func (g *BindingGraph) Freeze() {
	g.frozen = true
}

// Frozen reports whether Freeze was called.
func (g *BindingGraph) Frozen() bool {
	return g.frozen
}

func (g *BindingGraph) add(rb *ResolvedBinding) {
	rb.Order = len(g.order)
	g.resolved[rb.Key] = rb
	g.order = append(g.order, rb)
}

func (g *BindingGraph) inherit(key model.Key, owner model.ComponentID) {
	if _, ok := g.inherited[key]; ok {
		return
	}
	g.inherited[key] = owner
	g.inhOrder = append(g.inhOrder, key)
}

func (g *BindingGraph) addMissing(key model.Key, chain []model.Key) {
	if g.missing[key] {
		return
	}
	g.missing[key] = true
	g.Problems = append(g.Problems, diag.MissingBinding(g.Component, key, chain))
}

func (g *BindingGraph) addAssisted(key model.Key, chain []model.Key) {
	if g.assisted[key] {
		return
	}
	g.assisted[key] = true
	g.Problems = append(g.Problems, diag.AssistedInjectionRequest(g.Component, key, chain))
}

// addCycle records chain once per distinct key set and reports whether it was new.
func (g *BindingGraph) addCycle(chain []model.Key) bool {
	id := CycleID(chain)
	if g.cycles[id] {
		return false
	}
	g.cycles[id] = true
	g.Problems = append(g.Problems, diag.UnbreakableCycle(g.Component, chain))
	return true
}

// HasCycle reports whether a cycle with the key set of chain was recorded.
func (g *BindingGraph) HasCycle(chain []model.Key) bool {
	return g.cycles[CycleID(chain)]
}

// CycleID is the canonical identity of the key set of a cycle chain.
func CycleID(chain []model.Key) string {
	keys := diag.CycleKeys(chain)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.String()
	}
	return strings.Join(parts, "|")
}
