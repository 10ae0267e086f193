package planner

import "github.com/xraph/kiln/internal/model"

// CacheTier is how long a constructed value is kept.
type CacheTier string

const (
	// TierPerCall constructs a new value on every request.
	TierPerCall CacheTier = "per_call"
	// TierPerComponentInstance caches one value per component instance.
	TierPerComponentInstance CacheTier = "per_component_instance"
	// TierBoundInstance values are supplied to the component and never constructed.
	TierBoundInstance CacheTier = "bound_instance"
)

// PlanDependency is one input of a construction step.
type PlanDependency struct {
	Key      model.Key         `json:"key" yaml:"key"`
	Kind     model.RequestKind `json:"kind" yaml:"kind"`
	Deferred bool              `json:"deferred,omitempty" yaml:"deferred,omitempty"`
	Optional bool              `json:"optional,omitempty" yaml:"optional,omitempty"`
	Absent   bool              `json:"absent,omitempty" yaml:"absent,omitempty"`
	// Source is the component that owns the dependency's binding.
	Source    model.ComponentID `json:"source,omitempty" yaml:"source,omitempty"`
	Inherited bool              `json:"inherited,omitempty" yaml:"inherited,omitempty"`
}

// Step constructs (or exposes) the value of one key.
type Step struct {
	Key          model.Key         `json:"key" yaml:"key"`
	Binding      model.BindingID   `json:"binding" yaml:"binding"`
	Kind         model.BindingKind `json:"kind" yaml:"kind"`
	Scope        string            `json:"scope,omitempty" yaml:"scope,omitempty"`
	Tier         CacheTier         `json:"tier" yaml:"tier"`
	MapKey       string            `json:"mapKey,omitempty" yaml:"map_key,omitempty"`
	Subcomponent model.ComponentID `json:"subcomponent,omitempty" yaml:"subcomponent,omitempty"`
	Dependencies []PlanDependency  `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Closure is a deferred-construction edge: From receives a provider or lazy
// handle to To instead of the value.
type Closure struct {
	From model.Key         `json:"from" yaml:"from"`
	To   model.Key         `json:"to" yaml:"to"`
	Kind model.RequestKind `json:"kind" yaml:"kind"`
}

// InheritedRef is a key the component reads from an ancestor's instance.
type InheritedRef struct {
	Key    model.Key         `json:"key" yaml:"key"`
	Source model.ComponentID `json:"source" yaml:"source"`
}

// ConstructionPlan is the backend-facing description of one accepted component.
// It holds no maps so its encodings are deterministic.
type ConstructionPlan struct {
	Component     model.ComponentID   `json:"component" yaml:"component"`
	Scope         string              `json:"scope,omitempty" yaml:"scope,omitempty"`
	Parent        model.ComponentID   `json:"parent,omitempty" yaml:"parent,omitempty"`
	Steps         []Step              `json:"steps" yaml:"steps"`
	EntryPoints   []PlanDependency    `json:"entryPoints,omitempty" yaml:"entry_points,omitempty"`
	Inherited     []InheritedRef      `json:"inherited,omitempty" yaml:"inherited,omitempty"`
	Closures      []Closure           `json:"closures,omitempty" yaml:"closures,omitempty"`
	Subcomponents []model.ComponentID `json:"subcomponents,omitempty" yaml:"subcomponents,omitempty"`
}

// Step returns the step for key.
func (p *ConstructionPlan) Step(key model.Key) (Step, bool) {
	for _, s := range p.Steps {
		if s.Key == key {
			return s, true
		}
	}
	return Step{}, false
}

// Position returns the index of key's step, or -1.
func (p *ConstructionPlan) Position(key model.Key) int {
	for i, s := range p.Steps {
		if s.Key == key {
			return i
		}
	}
	return -1
}
