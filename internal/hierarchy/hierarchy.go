// Package hierarchy models the component tree as an arena of nodes keyed by
// component id. Nodes refer to their parent by id only.
package hierarchy

import (
	"github.com/xraph/kiln/internal/errors"
	"github.com/xraph/kiln/internal/model"
)

// Node is one component of the tree.
type Node struct {
	ID        model.ComponentID
	Scope     string
	Parent    model.ComponentID
	Depth     int
	Component *model.Component

	children []model.ComponentID
	index    int
}

// Tree is the scope hierarchy of a model.
type Tree struct {
	nodes     map[model.ComponentID]*Node
	order     []model.ComponentID
	roots     []model.ComponentID
	installed map[model.ComponentID][]string
	installs  map[model.ComponentID]map[string]bool
}

// Build constructs the hierarchy of m. The model must have passed Check.
func Build(m *model.Model) (*Tree, error) {
	t := &Tree{
		nodes:     make(map[model.ComponentID]*Node, len(m.Components)),
		installed: make(map[model.ComponentID][]string, len(m.Components)),
		installs:  make(map[model.ComponentID]map[string]bool, len(m.Components)),
	}

	for i := range m.Components {
		c := &m.Components[i]
		if _, dup := t.nodes[c.ID]; dup {
			return nil, errors.ErrInvalidModel("duplicate component id " + string(c.ID))
		}
		t.nodes[c.ID] = &Node{
			ID:        c.ID,
			Scope:     c.Scope,
			Parent:    c.Parent,
			Component: c,
			index:     i,
		}
		t.order = append(t.order, c.ID)
	}

	for _, id := range t.order {
		n := t.nodes[id]
		if n.Parent == "" {
			t.roots = append(t.roots, id)
			continue
		}
		parent, ok := t.nodes[n.Parent]
		if !ok {
			return nil, errors.ErrInvalidModel("component " + string(id) + " has unknown parent " + string(n.Parent))
		}
		parent.children = append(parent.children, id)
	}

	// Depths are assigned walking down from the roots, which also proves every
	// node is reachable and parent links are acyclic.
	visited := 0
	for _, root := range t.roots {
		for _, id := range t.Subtree(root) {
			n := t.nodes[id]
			if n.Parent != "" {
				n.Depth = t.nodes[n.Parent].Depth + 1
			}
			visited++
		}
	}
	if visited != len(t.order) {
		return nil, errors.ErrInvalidModel("component parent links form a cycle")
	}

	modules := make(map[string]*model.Module, len(m.Modules))
	for i := range m.Modules {
		modules[m.Modules[i].Name] = &m.Modules[i]
	}
	for _, id := range t.order {
		list, set := installClosure(t.nodes[id].Component.Modules, modules)
		t.installed[id] = list
		t.installs[id] = set
	}

	return t, nil
}

// installClosure expands includes depth first, keeping first-installation order.
func installClosure(roots []string, modules map[string]*model.Module) ([]string, map[string]bool) {
	var list []string
	set := make(map[string]bool)

	var visit func(name string)
	visit = func(name string) {
		if set[name] {
			return
		}
		set[name] = true
		list = append(list, name)
		if mod, ok := modules[name]; ok {
			for _, inc := range mod.Includes {
				visit(inc)
			}
		}
	}
	for _, name := range roots {
		visit(name)
	}
	return list, set
}

// Node returns the node for id.
func (t *Tree) Node(id model.ComponentID) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Parent returns the parent of id; ok is false for roots and unknown ids.
func (t *Tree) Parent(id model.ComponentID) (model.ComponentID, bool) {
	n, ok := t.nodes[id]
	if !ok || n.Parent == "" {
		return "", false
	}
	return n.Parent, true
}

// Children returns the children of id in model order.
func (t *Tree) Children(id model.ComponentID) []model.ComponentID {
	n, ok := t.nodes[id]
	if !ok {
		return nil
	}
	return append([]model.ComponentID(nil), n.children...)
}

// Roots returns the root components in model order.
func (t *Tree) Roots() []model.ComponentID {
	return append([]model.ComponentID(nil), t.roots...)
}

// Components returns every component id in model order.
func (t *Tree) Components() []model.ComponentID {
	return append([]model.ComponentID(nil), t.order...)
}

// Index returns the model position of id, or -1.
func (t *Tree) Index(id model.ComponentID) int {
	if n, ok := t.nodes[id]; ok {
		return n.index
	}
	return -1
}

// Root returns the root of the tree containing id.
func (t *Tree) Root(id model.ComponentID) model.ComponentID {
	chain := t.Ancestors(id)
	if len(chain) == 0 {
		return ""
	}
	return chain[len(chain)-1]
}

// Ancestors returns id followed by its ancestors up to the root.
func (t *Tree) Ancestors(id model.ComponentID) []model.ComponentID {
	var chain []model.ComponentID
	for n, ok := t.nodes[id]; ok; n, ok = t.nodes[n.Parent] {
		chain = append(chain, n.ID)
		if n.Parent == "" {
			break
		}
	}
	return chain
}

// IsAncestorOrSelf reports whether ancestor is id or one of its ancestors.
func (t *Tree) IsAncestorOrSelf(ancestor, id model.ComponentID) bool {
	for _, a := range t.Ancestors(id) {
		if a == ancestor {
			return true
		}
	}
	return false
}

// Scope returns the scope declared by id.
func (t *Tree) Scope(id model.ComponentID) string {
	if n, ok := t.nodes[id]; ok {
		return n.Scope
	}
	return ""
}

// InstalledModules returns the modules installed in id, includes expanded.
func (t *Tree) InstalledModules(id model.ComponentID) []string {
	return append([]string(nil), t.installed[id]...)
}

// Installs reports whether module is installed in id itself.
func (t *Tree) Installs(id model.ComponentID, module string) bool {
	return t.installs[id][module]
}

// Subtree returns root and its descendants in pre-order.
func (t *Tree) Subtree(root model.ComponentID) []model.ComponentID {
	if _, ok := t.nodes[root]; !ok {
		return nil
	}
	var out []model.ComponentID
	stack := []model.ComponentID{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, id)
		children := t.nodes[id].children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return out
}

// NearestWithScope returns the closest component from id upwards declaring scope.
func (t *Tree) NearestWithScope(id model.ComponentID, scope string) (model.ComponentID, bool) {
	if scope == "" {
		return "", false
	}
	for _, a := range t.Ancestors(id) {
		if t.nodes[a].Scope == scope {
			return a, true
		}
	}
	return "", false
}
