package model

// ComponentID is the stable identity of a component node.
type ComponentID string

// Module is a named set of bindings that can be installed in a component.
type Module struct {
	Name     string   `json:"name" yaml:"name"`
	Includes []string `json:"includes,omitempty" yaml:"includes,omitempty"`
}

// Component is a node of the scope hierarchy: a set of entry points satisfied by
// the modules it installs and by the bindings of its ancestors.
type Component struct {
	ID          ComponentID         `json:"id" yaml:"id"`
	Scope       string              `json:"scope,omitempty" yaml:"scope,omitempty"`
	Parent      ComponentID         `json:"parent,omitempty" yaml:"parent,omitempty"`
	Modules     []string            `json:"modules,omitempty" yaml:"modules,omitempty"`
	EntryPoints []DependencyRequest `json:"entryPoints,omitempty" yaml:"entry_points,omitempty"`

	// Creator is the key of the factory the parent uses to create this component.
	Creator Key `json:"creator,omitempty" yaml:"creator,omitempty"`

	BoundInstances []Key `json:"boundInstances,omitempty" yaml:"bound_instances,omitempty"`
	Dependencies   []Key `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// IsRoot reports whether c has no parent.
func (c *Component) IsRoot() bool {
	return c.Parent == ""
}

// OwnedBindings returns the bindings c declares itself: bound instances and
// component dependencies.
func (c *Component) OwnedBindings() []*Binding {
	bindings := make([]*Binding, 0, len(c.BoundInstances)+len(c.Dependencies))
	for _, key := range c.BoundInstances {
		bindings = append(bindings, BoundInstanceBinding(c.ID, key))
	}
	for _, key := range c.Dependencies {
		bindings = append(bindings, ComponentDependencyBinding(c.ID, key))
	}
	return bindings
}
