package model

// Model is the complete, front-end produced input of a compile run.
type Model struct {
	Schema     string      `json:"schema,omitempty" yaml:"schema,omitempty"`
	Modules    []Module    `json:"modules,omitempty" yaml:"modules,omitempty"`
	Components []Component `json:"components" yaml:"components"`
	Bindings   []*Binding  `json:"bindings,omitempty" yaml:"bindings,omitempty"`
}

// Component returns the component with the given id.
func (m *Model) Component(id ComponentID) (*Component, bool) {
	for i := range m.Components {
		if m.Components[i].ID == id {
			return &m.Components[i], true
		}
	}
	return nil, false
}

// Module returns the module with the given name.
func (m *Model) Module(name string) (*Module, bool) {
	for i := range m.Modules {
		if m.Modules[i].Name == name {
			return &m.Modules[i], true
		}
	}
	return nil, false
}

// AllBindings returns the declared bindings followed by the bindings synthesized
// from components: bound instances, component dependencies and subcomponent
// creators, in component order.
func (m *Model) AllBindings() []*Binding {
	all := make([]*Binding, 0, len(m.Bindings)+len(m.Components))
	all = append(all, m.Bindings...)
	for i := range m.Components {
		c := &m.Components[i]
		all = append(all, c.OwnedBindings()...)
		if c.Parent != "" && !c.Creator.IsZero() {
			all = append(all, SubcomponentCreatorBinding(c.Parent, c.ID, c.Creator))
		}
	}
	return all
}
