// Package resolver resolves the bindings reachable from component entry points
// into per-component binding graphs.
//
// A Resolver works on one root tree at a time. Every component of the tree gets
// its own BindingGraph. A key bound at an ancestor is resolved once in the
// ancestor's graph and referenced from the descendants that use it, unless it
// is unscoped and something it transitively depends on is bound differently in
// the requesting descendant. Such a binding is resolved again in the descendant.
package resolver

import (
	"context"
	"sort"

	"github.com/xraph/kiln/internal/catalog"
	"github.com/xraph/kiln/internal/errors"
	"github.com/xraph/kiln/internal/hierarchy"
	"github.com/xraph/kiln/internal/model"
)

// cancelCheckInterval is the number of requests resolved between context checks.
const cancelCheckInterval = 256

// Resolver resolves the components of one root tree.
type Resolver struct {
	catalog *catalog.Catalog
	tree    *hierarchy.Tree

	ctx     context.Context
	graphs  map[model.ComponentID]*BindingGraph
	path    *Path
	queue   []model.ComponentID
	local   map[localQuery]bool
	current model.ComponentID
	steps   int
	err     error
}

// New returns a resolver over a built catalog and hierarchy. Both are only read.
func New(cat *catalog.Catalog, tree *hierarchy.Tree) *Resolver {
	return &Resolver{catalog: cat, tree: tree}
}

// TreeResult holds the graphs of every component of a root tree.
type TreeResult struct {
	Root   model.ComponentID
	Graphs []*BindingGraph
	byID   map[model.ComponentID]*BindingGraph
}

// Graph returns the graph of id.
func (t *TreeResult) Graph(id model.ComponentID) (*BindingGraph, bool) {
	g, ok := t.byID[id]
	return g, ok
}

// ResolveTree resolves every component under root. Components reached through
// subcomponent creators are resolved after their creator's owner; components no
// entry point reaches are still resolved, with Reached left false.
func (r *Resolver) ResolveTree(ctx context.Context, root model.ComponentID) (*TreeResult, error) {
	ids := r.tree.Subtree(root)
	if len(ids) == 0 {
		return nil, errors.ErrUnknownComponent(string(root))
	}
	if n, _ := r.tree.Node(root); n.Parent != "" {
		return nil, errors.ErrUnknownComponent(string(root)).WithContext("reason", "not a root component")
	}

	result := r.start(ctx, ids)
	r.graphs[root].Reached = true
	r.queue = []model.ComponentID{root}

	processed := make(map[model.ComponentID]bool, len(ids))
	for len(r.queue) > 0 && r.err == nil {
		id := r.queue[0]
		r.queue = r.queue[1:]
		if processed[id] {
			continue
		}
		processed[id] = true
		r.resolveEntryPoints(id)
	}
	for _, id := range ids {
		if r.err != nil {
			break
		}
		if !processed[id] {
			processed[id] = true
			r.resolveEntryPoints(id)
		}
	}

	if r.err != nil {
		return nil, errors.ErrContextCancelled("resolve", r.err)
	}
	return result, nil
}

// Resolve resolves a single request for key in component and returns the
// component's graph. Subcomponents reached on the way are not resolved.
func (r *Resolver) Resolve(ctx context.Context, component model.ComponentID, key model.Key) (*BindingGraph, error) {
	root := r.tree.Root(component)
	if root == "" {
		return nil, errors.ErrUnknownComponent(string(component))
	}

	r.start(ctx, r.tree.Subtree(root))
	r.current = component
	g := r.graphs[component]
	g.Reached = true
	g.EntryPoints = append(g.EntryPoints, r.resolveRequest(component, model.Instance(key), false))

	if r.err != nil {
		return nil, errors.ErrContextCancelled("resolve", r.err)
	}
	return g, nil
}

func (r *Resolver) start(ctx context.Context, ids []model.ComponentID) *TreeResult {
	if ctx == nil {
		ctx = context.Background()
	}
	r.ctx = ctx
	r.graphs = make(map[model.ComponentID]*BindingGraph, len(ids))
	r.path = NewPath()
	r.queue = nil
	r.local = make(map[localQuery]bool)
	r.steps = 0
	r.err = nil

	result := &TreeResult{
		Root: ids[0],
		byID: r.graphs,
	}
	for _, id := range ids {
		n, _ := r.tree.Node(id)
		var parent *BindingGraph
		if n.Parent != "" {
			parent = r.graphs[n.Parent]
		}
		g := newGraph(id, n.Scope, parent)
		r.graphs[id] = g
		result.Graphs = append(result.Graphs, g)
	}
	return result
}

func (r *Resolver) resolveEntryPoints(id model.ComponentID) {
	r.current = id
	g := r.graphs[id]
	n, _ := r.tree.Node(id)
	for _, ep := range n.Component.EntryPoints {
		g.EntryPoints = append(g.EntryPoints, r.resolveRequest(id, ep, false))
	}
}

// location is where and how a key is bound, seen from one component.
type location struct {
	owner         model.ComponentID
	kind          model.BindingKind
	binding       *model.Binding
	candidates    []*model.Binding
	contributions []*model.Binding
	declarations  []*model.Binding
	implicit      bool
}

// pinned reports whether the binding stays in its owner's graph whoever asks.
func (l location) pinned() bool {
	if l.binding == nil {
		return false
	}
	switch l.kind {
	case model.KindSubcomponentCreator, model.KindBoundInstance, model.KindComponentDependency:
		return true
	}
	return l.binding.Scoped()
}

// dependencies lists the keys resolving the location requests.
func (l location) dependencies() []model.Key {
	var keys []model.Key
	switch l.kind {
	case model.KindMultibinding:
		for _, c := range l.contributions {
			keys = append(keys, c.Key)
		}
	case model.KindSubcomponentCreator, model.KindBoundInstance, model.KindComponentDependency:
	case model.KindAssistedFactory:
		keys = append(keys, l.binding.Target)
	default:
		for _, dep := range l.binding.Dependencies {
			keys = append(keys, dep.Key)
		}
	}
	return keys
}

func (r *Resolver) resolveRequest(at model.ComponentID, req model.DependencyRequest, viaFactory bool) Dependency {
	req.Kind = req.Kind.Normalize()
	dep := Dependency{Request: req}
	if r.cancelled() {
		return dep
	}

	g := r.graphs[at]
	from := model.Key{}
	if top, ok := r.path.Top(); ok && top.Component == at {
		from = top.Key
	}

	loc, ok := r.locate(at, req.Key)
	if !ok {
		if req.Optional {
			if _, exists := g.resolved[req.Key]; !exists {
				g.add(&ResolvedBinding{Key: req.Key, Kind: model.KindAbsent, Owner: at, RequestedBy: at})
			}
			dep.Owner = at
			dep.Absent = true
			return dep
		}
		g.addMissing(req.Key, append(r.path.Keys(), req.Key))
		dep.Missing = true
		return dep
	}

	loc = r.relocate(at, req.Key, loc)

	if loc.kind == model.KindAssistedInjection && !viaFactory {
		g.addAssisted(req.Key, append(r.path.Keys(), req.Key))
	}

	r.resolveAt(req.Key, loc, req.Kind, at)
	if loc.owner != at {
		g.inherit(req.Key, loc.owner)
	}
	g.Edges = append(g.Edges, Edge{From: from, To: req.Key, Owner: loc.owner, Kind: req.Kind})

	dep.Owner = loc.owner
	return dep
}

func (r *Resolver) resolveAt(key model.Key, loc location, via model.RequestKind, requestedBy model.ComponentID) {
	g := r.graphs[loc.owner]

	if idx := r.path.IndexOf(loc.owner, key); idx >= 0 {
		r.cycle(g, idx, via)
		return
	}
	if rb, ok := g.resolved[key]; ok && rb.Kind != model.KindAbsent {
		return
	}

	rb := &ResolvedBinding{
		Key:           key,
		Kind:          loc.kind,
		Binding:       loc.binding,
		Owner:         loc.owner,
		RequestedBy:   requestedBy,
		Candidates:    loc.candidates,
		Contributions: loc.contributions,
		Declarations:  loc.declarations,
	}
	if loc.binding != nil {
		rb.Scope = loc.binding.Scope
	}
	g.add(rb)

	r.path.Push(Frame{Component: loc.owner, Key: key, Via: via})
	defer r.path.Pop()

	switch loc.kind {
	case model.KindMultibinding:
		for _, c := range loc.contributions {
			rb.Dependencies = append(rb.Dependencies, r.resolveRequest(loc.owner, model.Instance(c.Key), false))
		}
	case model.KindSubcomponentCreator:
		r.enqueue(loc.binding.Subcomponent)
	case model.KindAssistedFactory:
		rb.Dependencies = append(rb.Dependencies, r.resolveRequest(loc.owner, model.Provider(loc.binding.Target), true))
	case model.KindBoundInstance, model.KindComponentDependency:
		// Supplied from outside the component.
	default:
		for _, dep := range loc.binding.Dependencies {
			rb.Dependencies = append(rb.Dependencies, r.resolveRequest(loc.owner, dep, false))
		}
	}
}

// cycle handles a request for a key already on the path at index idx. The
// cycle is harmless when any of its edges defers construction.
func (r *Resolver) cycle(g *BindingGraph, idx int, closing model.RequestKind) {
	frames := r.path.From(idx)
	deferred := closing.Deferred()
	chain := make([]model.Key, 0, len(frames)+1)
	for i, f := range frames {
		chain = append(chain, f.Key)
		if i > 0 && f.Via.Deferred() {
			deferred = true
		}
	}
	if deferred {
		return
	}
	g.addCycle(append(chain, frames[0].Key))
}

type localQuery struct {
	at, owner model.ComponentID
	key       model.Key
}

// relocate moves an unscoped binding found at an ancestor down to at when it
// depends on local bindings of at: a shadowing re-declaration, a multibinding
// contribution, or anything bound between at and the ancestor.
func (r *Resolver) relocate(at model.ComponentID, key model.Key, loc location) location {
	if loc.owner == at || loc.pinned() {
		return loc
	}
	q := localQuery{at: at, owner: loc.owner, key: key}
	local, ok := r.local[q]
	if !ok {
		local = r.dependsOnLocal(at, loc.owner, loc, map[model.Key]bool{key: true})
		r.local[q] = local
	}
	if local {
		loc.owner = at
	}
	return loc
}

func (r *Resolver) dependsOnLocal(at, owner model.ComponentID, loc location, seen map[model.Key]bool) bool {
	for _, key := range loc.dependencies() {
		if seen[key] {
			continue
		}
		seen[key] = true

		dep, ok := r.locate(at, key)
		if !ok {
			continue
		}
		// Unscoped implicit bindings float to whoever requests them.
		floating := dep.implicit && !dep.pinned()
		if !floating && !r.tree.IsAncestorOrSelf(dep.owner, owner) {
			return true
		}
		if dep.pinned() {
			continue
		}
		if r.dependsOnLocal(at, owner, dep, seen) {
			return true
		}
	}
	return false
}

func (r *Resolver) enqueue(child model.ComponentID) {
	g, ok := r.graphs[child]
	if !ok {
		return
	}
	if r.graphs[r.current].Reached && !g.Reached {
		g.Reached = true
		r.queue = append(r.queue, child)
	}
}

func (r *Resolver) cancelled() bool {
	if r.err != nil {
		return true
	}
	r.steps++
	if r.steps%cancelCheckInterval == 0 || r.steps == 1 {
		if err := r.ctx.Err(); err != nil {
			r.err = err
			return true
		}
	}
	return false
}

// locate finds the binding for key as seen from component at. The closest level
// holding an explicit binding or a multibinding contribution wins; implicit
// bindings are the fallback.
func (r *Resolver) locate(at model.ComponentID, key model.Key) (location, bool) {
	chain := r.tree.Ancestors(at)

	if key.IsContribution() {
		for _, level := range chain {
			visible := r.visible(level, r.catalog.Lookup(key))
			if len(visible) > 0 {
				return location{
					owner:      level,
					kind:       visible[0].Kind,
					binding:    visible[0],
					candidates: dedupe(visible),
				}, true
			}
		}
		return location{}, false
	}

	for i, level := range chain {
		var explicit []*model.Binding
		for _, b := range r.visible(level, r.catalog.Lookup(key)) {
			if b.Kind != model.KindMultibindingDeclaration {
				explicit = append(explicit, b)
			}
		}
		contributions := r.visible(level, r.catalog.Contributions(key))
		declarations := r.visible(level, r.catalog.Declarations(key))

		if len(explicit) > 0 {
			candidates := append(append(explicit, contributions...), declarations...)
			return location{
				owner:      level,
				kind:       explicit[0].Kind,
				binding:    explicit[0],
				candidates: candidates,
			}, true
		}

		if len(contributions) > 0 || len(declarations) > 0 {
			var allContrib, allDecl []*model.Binding
			for _, up := range chain[i:] {
				allContrib = append(allContrib, r.visible(up, r.catalog.Contributions(key))...)
				allDecl = append(allDecl, r.visible(up, r.catalog.Declarations(key))...)
			}
			return location{
				owner:         level,
				kind:          model.KindMultibinding,
				contributions: r.ordered(dedupe(allContrib)),
				declarations:  r.ordered(dedupe(allDecl)),
			}, true
		}
	}

	implicit := r.catalog.Implicit(key)
	if len(implicit) == 0 {
		return location{}, false
	}
	b := implicit[0]
	owner := at
	if b.Scope != "" {
		if scoped, ok := r.tree.NearestWithScope(at, b.Scope); ok {
			owner = scoped
		}
	}
	return location{
		owner:      owner,
		kind:       b.Kind,
		binding:    b,
		candidates: implicit,
		implicit:   true,
	}, true
}

// visible filters bindings to those whose owner is installed at level itself.
func (r *Resolver) visible(level model.ComponentID, bindings []*model.Binding) []*model.Binding {
	var out []*model.Binding
	for _, b := range bindings {
		switch {
		case b.Module != "":
			if r.tree.Installs(level, b.Module) {
				out = append(out, b)
			}
		case b.Component != "":
			if b.Component == level {
				out = append(out, b)
			}
		}
	}
	return out
}

func (r *Resolver) ordered(bindings []*model.Binding) []*model.Binding {
	sort.SliceStable(bindings, func(i, j int) bool {
		return r.catalog.Index(bindings[i]) < r.catalog.Index(bindings[j])
	})
	return bindings
}

func dedupe(bindings []*model.Binding) []*model.Binding {
	seen := make(map[model.BindingID]bool, len(bindings))
	out := bindings[:0:0]
	for _, b := range bindings {
		if !seen[b.ID] {
			seen[b.ID] = true
			out = append(out, b)
		}
	}
	return out
}
