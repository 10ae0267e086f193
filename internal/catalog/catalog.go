// Package catalog indexes every binding of a model by key and by owner.
//
// A catalog is built in two phases: bindings are registered on a Builder, then
// Build freezes them into an immutable Catalog that resolver workers share
// without locking.
package catalog

import (
	"github.com/xraph/kiln/internal/errors"
	"github.com/xraph/kiln/internal/model"
)

// Builder collects bindings before the catalog is frozen.
type Builder struct {
	bindings []*model.Binding
	built    bool
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Register adds a binding. Registration is total: duplicates and conflicts are
// kept so that validation can report every one of them. Registering after Build
// returns ErrCatalogFrozen.
func (b *Builder) Register(binding *model.Binding) error {
	if b.built {
		return errors.ErrCatalogFrozen
	}
	if binding == nil {
		return nil
	}
	b.bindings = append(b.bindings, binding)
	return nil
}

// RegisterAll registers each binding in order.
func (b *Builder) RegisterAll(bindings ...*model.Binding) error {
	for _, binding := range bindings {
		if err := b.Register(binding); err != nil {
			return err
		}
	}
	return nil
}

// Build freezes the registered bindings into a catalog.
func (b *Builder) Build() *Catalog {
	b.built = true

	c := &Catalog{
		bindings:      b.bindings,
		byKey:         make(map[model.Key][]*model.Binding),
		contributions: make(map[model.Key][]*model.Binding),
		declarations:  make(map[model.Key][]*model.Binding),
		implicit:      make(map[model.Key][]*model.Binding),
		byModule:      make(map[string][]*model.Binding),
		byComponent:   make(map[model.ComponentID][]*model.Binding),
		index:         make(map[*model.Binding]int, len(b.bindings)),
	}

	seenContribution := make(map[model.BindingID]bool)
	for i, binding := range b.bindings {
		c.index[binding] = i
		c.byKey[binding.Key] = append(c.byKey[binding.Key], binding)

		switch {
		case binding.Kind.IsContribution():
			// A module contributing through the same method twice contributes once.
			if !seenContribution[binding.ID] {
				seenContribution[binding.ID] = true
				agg := binding.Key.Aggregate()
				c.contributions[agg] = append(c.contributions[agg], binding)
			}
		case binding.Kind == model.KindMultibindingDeclaration:
			agg := binding.Key.Aggregate()
			c.declarations[agg] = append(c.declarations[agg], binding)
		case binding.Kind.IsImplicit():
			c.implicit[binding.Key] = append(c.implicit[binding.Key], binding)
		}

		if binding.Module != "" {
			c.byModule[binding.Module] = append(c.byModule[binding.Module], binding)
		}
		if binding.Component != "" {
			c.byComponent[binding.Component] = append(c.byComponent[binding.Component], binding)
		}
	}

	return c
}

// FromModel builds the catalog of every declared and component-synthesized
// binding of m.
func FromModel(m *model.Model) *Catalog {
	b := NewBuilder()
	// A fresh builder is never frozen.
	_ = b.RegisterAll(m.AllBindings()...)
	return b.Build()
}

// Catalog is the immutable binding index of one compile run.
type Catalog struct {
	bindings      []*model.Binding
	byKey         map[model.Key][]*model.Binding
	contributions map[model.Key][]*model.Binding
	declarations  map[model.Key][]*model.Binding
	implicit      map[model.Key][]*model.Binding
	byModule      map[string][]*model.Binding
	byComponent   map[model.ComponentID][]*model.Binding
	index         map[*model.Binding]int
}

// Lookup returns every binding registered for exactly key, in declaration order.
func (c *Catalog) Lookup(key model.Key) []*model.Binding {
	return clone(c.byKey[key])
}

// Contributions returns the contributions to the multibinding aggregate,
// de-duplicated by declaring module and method.
func (c *Catalog) Contributions(aggregate model.Key) []*model.Binding {
	return clone(c.contributions[aggregate.Aggregate()])
}

// Declarations returns the multibinding declarations for aggregate.
func (c *Catalog) Declarations(aggregate model.Key) []*model.Binding {
	return clone(c.declarations[aggregate.Aggregate()])
}

// Implicit returns the ownerless constructor and assisted-injection bindings for key.
func (c *Catalog) Implicit(key model.Key) []*model.Binding {
	return clone(c.implicit[key])
}

// ByModule returns the bindings declared by module.
func (c *Catalog) ByModule(module string) []*model.Binding {
	return clone(c.byModule[module])
}

// ByComponent returns the bindings synthesized for component.
func (c *Catalog) ByComponent(id model.ComponentID) []*model.Binding {
	return clone(c.byComponent[id])
}

// Index returns the declaration index of binding, or -1 when it was never registered.
func (c *Catalog) Index(binding *model.Binding) int {
	if i, ok := c.index[binding]; ok {
		return i
	}
	return -1
}

// Bindings returns every registered binding in declaration order.
func (c *Catalog) Bindings() []*model.Binding {
	return clone(c.bindings)
}

// Len returns the number of registered bindings.
func (c *Catalog) Len() int {
	return len(c.bindings)
}

func clone(in []*model.Binding) []*model.Binding {
	if len(in) == 0 {
		return nil
	}
	out := make([]*model.Binding, len(in))
	copy(out, in)
	return out
}
