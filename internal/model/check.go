package model

import (
	"fmt"

	"github.com/xraph/kiln/internal/errors"
)

// Check verifies the structural guarantees the front-end must provide. It
// returns an INVALID_MODEL error listing every violation found.
func (m *Model) Check() error {
	if m == nil {
		return errors.ErrInvalidModel(errors.ErrNilModel.Error())
	}

	var reasons []string
	fail := func(format string, args ...any) {
		reasons = append(reasons, fmt.Sprintf(format, args...))
	}

	modules := make(map[string]*Module, len(m.Modules))
	for i := range m.Modules {
		mod := &m.Modules[i]
		if mod.Name == "" {
			fail("module #%d has no name", i)
			continue
		}
		if _, dup := modules[mod.Name]; dup {
			fail("duplicate module %q", mod.Name)
			continue
		}
		modules[mod.Name] = mod
	}
	for _, mod := range m.Modules {
		for _, inc := range mod.Includes {
			if _, ok := modules[inc]; !ok {
				fail("module %q includes unknown module %q", mod.Name, inc)
			}
		}
	}

	components := make(map[ComponentID]*Component, len(m.Components))
	for i := range m.Components {
		c := &m.Components[i]
		if c.ID == "" {
			fail("component #%d has no id", i)
			continue
		}
		if _, dup := components[c.ID]; dup {
			fail("duplicate component id %q", c.ID)
			continue
		}
		components[c.ID] = c
	}

	for i := range m.Components {
		c := &m.Components[i]
		if c.ID == "" {
			continue
		}
		if c.Parent != "" {
			if _, ok := components[c.Parent]; !ok {
				fail("component %q has unknown parent %q", c.ID, c.Parent)
			}
		} else if !c.Creator.IsZero() {
			fail("root component %q declares a creator", c.ID)
		}
		for _, name := range c.Modules {
			if _, ok := modules[name]; !ok {
				fail("component %q installs unknown module %q", c.ID, name)
			}
		}
		for _, ep := range c.EntryPoints {
			if reason := checkRequest(ep); reason != "" {
				fail("component %q entry point: %s", c.ID, reason)
			}
		}
		for _, key := range append(append([]Key(nil), c.BoundInstances...), c.Dependencies...) {
			if key.Type == "" || key.IsContribution() {
				fail("component %q declares invalid key %q", c.ID, key)
			}
		}
	}

	reported := make(map[ComponentID]bool)
	for i := range m.Components {
		id := m.Components[i].ID
		if id == "" || reported[id] {
			continue
		}
		reported[id] = true
		if cyclicParents(components, id) {
			fail("component %q is part of a parent cycle", id)
		}
	}
	if len(m.Components) == 0 {
		fail(errors.ErrNoComponents.Error())
	}

	for i, b := range m.Bindings {
		if b == nil {
			fail("binding #%d is nil", i)
			continue
		}
		for _, reason := range checkBinding(b, modules, components) {
			fail("binding %q: %s", b.ID, reason)
		}
	}

	if len(reasons) > 0 {
		return errors.ErrInvalidModel(reasons...)
	}
	return nil
}

func checkBinding(b *Binding, modules map[string]*Module, components map[ComponentID]*Component) []string {
	var reasons []string
	add := func(format string, args ...any) {
		reasons = append(reasons, fmt.Sprintf(format, args...))
	}

	if b.ID == "" {
		add("missing id")
	}
	if b.Key.Type == "" {
		add("missing key type")
	}
	if !b.Kind.Declared() {
		add("unknown kind %q", b.Kind)
		return reasons
	}

	switch {
	case b.Kind.IsModuleOwned():
		if _, ok := modules[b.Module]; !ok {
			add("declared by unknown module %q", b.Module)
		}
	case b.Kind.IsComponentOwned():
		if _, ok := components[b.Component]; !ok {
			add("declared by unknown component %q", b.Component)
		}
	case b.Kind.IsImplicit():
		if b.Module != "" || b.Component != "" {
			add("%s bindings cannot have an owner", b.Kind)
		}
	}

	if b.Kind.IsContribution() != b.Key.IsContribution() {
		if b.Kind.IsContribution() {
			add("contribution without contribution key")
		} else {
			add("contribution key on %s binding", b.Kind)
		}
	}

	switch b.Kind {
	case KindMapContribution:
		if b.MapKey == "" {
			add("map contribution without map key")
		}
	case KindAssistedFactory:
		if b.Target.Type == "" {
			add("assisted factory without target")
		}
	case KindSubcomponentCreator:
		child, ok := components[b.Subcomponent]
		if !ok {
			add("creates unknown component %q", b.Subcomponent)
		} else if child.Parent != b.Component {
			add("component %q is not a child of %q", b.Subcomponent, b.Component)
		}
	}

	for _, dep := range b.Dependencies {
		if reason := checkRequest(dep); reason != "" {
			add("dependency: %s", reason)
		}
	}
	return reasons
}

func checkRequest(r DependencyRequest) string {
	if r.Key.Type == "" {
		return "missing key type"
	}
	if !r.Kind.Valid() {
		return fmt.Sprintf("unknown request kind %q", r.Kind)
	}
	return ""
}

func cyclicParents(components map[ComponentID]*Component, start ComponentID) bool {
	seen := map[ComponentID]bool{start: true}
	c := components[start]
	for c != nil && c.Parent != "" {
		if seen[c.Parent] {
			return c.Parent == start
		}
		seen[c.Parent] = true
		c = components[c.Parent]
	}
	return false
}
