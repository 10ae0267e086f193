package model

// BindingKind is the closed set of binding kinds.
type BindingKind string

const (
	KindConstructor             BindingKind = "constructor"
	KindProvision               BindingKind = "provision"
	KindBoundInstance           BindingKind = "bound_instance"
	KindSetContribution         BindingKind = "set_contribution"
	KindMapContribution         BindingKind = "map_contribution"
	KindSubcomponentCreator     BindingKind = "subcomponent_creator"
	KindComponentDependency     BindingKind = "component_dependency"
	KindMultibindingDeclaration BindingKind = "multibinding_declaration"
	KindAssistedInjection       BindingKind = "assisted_injection"
	KindAssistedFactory         BindingKind = "assisted_factory"

	// Synthesized by the resolver, never declared.
	KindMultibinding BindingKind = "multibinding"
	KindAbsent       BindingKind = "absent"
)

// Declared reports whether k may appear in a model.
func (k BindingKind) Declared() bool {
	switch k {
	case KindConstructor, KindProvision, KindBoundInstance, KindSetContribution,
		KindMapContribution, KindSubcomponentCreator, KindComponentDependency,
		KindMultibindingDeclaration, KindAssistedInjection, KindAssistedFactory:
		return true
	case KindMultibinding, KindAbsent:
		return false
	}
	return false
}

// Synthetic reports whether k is produced only by the resolver.
func (k BindingKind) Synthetic() bool {
	return k == KindMultibinding || k == KindAbsent
}

// IsContribution reports whether bindings of this kind contribute to a multibinding.
func (k BindingKind) IsContribution() bool {
	return k == KindSetContribution || k == KindMapContribution
}

// IsImplicit reports whether bindings of this kind have no owning module or component.
func (k BindingKind) IsImplicit() bool {
	return k == KindConstructor || k == KindAssistedInjection
}

// IsModuleOwned reports whether bindings of this kind are declared by a module.
func (k BindingKind) IsModuleOwned() bool {
	switch k {
	case KindProvision, KindSetContribution, KindMapContribution,
		KindMultibindingDeclaration, KindAssistedFactory:
		return true
	}
	return false
}

// IsComponentOwned reports whether bindings of this kind are declared by a component.
func (k BindingKind) IsComponentOwned() bool {
	switch k {
	case KindBoundInstance, KindComponentDependency, KindSubcomponentCreator:
		return true
	}
	return false
}

// Constructed reports whether the generated component constructs values of this
// kind. Bound instances and component dependencies are handed in from outside.
func (k BindingKind) Constructed() bool {
	switch k {
	case KindBoundInstance, KindComponentDependency, KindAbsent, KindMultibindingDeclaration:
		return false
	}
	return true
}

// BindingID is the declaration identity of a binding.
type BindingID string

// Binding is a single production rule. Bindings are immutable once handed to the
// catalog.
type Binding struct {
	ID           BindingID           `json:"id" yaml:"id"`
	Key          Key                 `json:"key" yaml:"key"`
	Kind         BindingKind         `json:"kind" yaml:"kind"`
	Dependencies []DependencyRequest `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Scope        string              `json:"scope,omitempty" yaml:"scope,omitempty"`

	Module    string      `json:"module,omitempty" yaml:"module,omitempty"`
	Component ComponentID `json:"component,omitempty" yaml:"component,omitempty"`
	Method    string      `json:"method,omitempty" yaml:"method,omitempty"`

	MapKey       string      `json:"mapKey,omitempty" yaml:"map_key,omitempty"`
	Elements     bool        `json:"elements,omitempty" yaml:"elements,omitempty"`
	Subcomponent ComponentID `json:"subcomponent,omitempty" yaml:"subcomponent,omitempty"`
	Target       Key         `json:"target,omitempty" yaml:"target,omitempty"`
}

// Scoped reports whether the binding carries a scope annotation.
func (b *Binding) Scoped() bool {
	return b.Scope != ""
}

// Owner renders the declaring module or component, or "" for implicit bindings.
func (b *Binding) Owner() string {
	switch {
	case b.Module != "":
		return b.Module
	case b.Component != "":
		return "component " + string(b.Component)
	default:
		return ""
	}
}

// ConstructorBinding builds the implicit binding of an injectable constructor.
func ConstructorBinding(key Key, scope string, deps ...DependencyRequest) *Binding {
	return &Binding{
		ID:           BindingID(key.String() + ".<init>"),
		Key:          key,
		Kind:         KindConstructor,
		Scope:        scope,
		Dependencies: deps,
	}
}

// ProvisionBinding builds a module provision method binding.
func ProvisionBinding(module, method string, key Key, scope string, deps ...DependencyRequest) *Binding {
	return &Binding{
		ID:           BindingID(module + "." + method),
		Key:          key,
		Kind:         KindProvision,
		Scope:        scope,
		Module:       module,
		Method:       method,
		Dependencies: deps,
	}
}

// SetContributionBinding builds a contribution into the set multibinding aggregate.
func SetContributionBinding(module, method string, aggregate Key, deps ...DependencyRequest) *Binding {
	return &Binding{
		ID:           BindingID(module + "." + method),
		Key:          ContributionKey(aggregate, module, method),
		Kind:         KindSetContribution,
		Module:       module,
		Method:       method,
		Dependencies: deps,
	}
}

// MapContributionBinding builds a contribution under mapKey into the map
// multibinding aggregate.
func MapContributionBinding(module, method string, aggregate Key, mapKey string, deps ...DependencyRequest) *Binding {
	return &Binding{
		ID:           BindingID(module + "." + method),
		Key:          ContributionKey(aggregate, module, method),
		Kind:         KindMapContribution,
		Module:       module,
		Method:       method,
		MapKey:       mapKey,
		Dependencies: deps,
	}
}

// MultibindsDeclaration declares a possibly empty multibinding.
func MultibindsDeclaration(module, method string, aggregate Key) *Binding {
	return &Binding{
		ID:     BindingID(module + "." + method),
		Key:    aggregate.Aggregate(),
		Kind:   KindMultibindingDeclaration,
		Module: module,
		Method: method,
	}
}

// BoundInstanceBinding builds the binding of a value handed to the component creator.
func BoundInstanceBinding(component ComponentID, key Key) *Binding {
	return &Binding{
		ID:        BindingID(string(component) + ".bind(" + key.String() + ")"),
		Key:       key,
		Kind:      KindBoundInstance,
		Component: component,
	}
}

// ComponentDependencyBinding builds the binding of a component-provided dependency.
func ComponentDependencyBinding(component ComponentID, key Key) *Binding {
	return &Binding{
		ID:        BindingID(string(component) + ".dependency(" + key.String() + ")"),
		Key:       key,
		Kind:      KindComponentDependency,
		Component: component,
	}
}

// SubcomponentCreatorBinding builds the binding through which parent creates child.
func SubcomponentCreatorBinding(parent, child ComponentID, creator Key) *Binding {
	return &Binding{
		ID:           BindingID(string(parent) + ".creator(" + string(child) + ")"),
		Key:          creator,
		Kind:         KindSubcomponentCreator,
		Component:    parent,
		Subcomponent: child,
	}
}

// AssistedInjectionBinding builds the implicit binding of an assisted constructor.
// Assisted parameters are not dependencies; deps lists only injected ones.
func AssistedInjectionBinding(key Key, deps ...DependencyRequest) *Binding {
	return &Binding{
		ID:           BindingID(key.String() + ".<assisted>"),
		Key:          key,
		Kind:         KindAssistedInjection,
		Dependencies: deps,
	}
}

// AssistedFactoryBinding builds a module-declared factory for the assisted type target.
func AssistedFactoryBinding(module string, factory, target Key) *Binding {
	return &Binding{
		ID:     BindingID(module + "." + factory.String()),
		Key:    factory,
		Kind:   KindAssistedFactory,
		Module: module,
		Target: target,
	}
}
