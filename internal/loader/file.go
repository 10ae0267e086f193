package loader

import (
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/xraph/kiln/internal/model"
)

// File is the on-disk shape of a model. It is flatter than model.Model: bindings
// are declared where they live (module provides, constructors, components) and
// expanded into catalog bindings by Model.
type File struct {
	Schema       string            `json:"schema" yaml:"schema"`
	Modules      []ModuleSpec      `json:"modules,omitempty" yaml:"modules,omitempty"`
	Constructors []ConstructorSpec `json:"constructors,omitempty" yaml:"constructors,omitempty"`
	Components   []ComponentSpec   `json:"components" yaml:"components"`
}

// ModuleSpec declares a module and its bindings.
type ModuleSpec struct {
	Name              string                `json:"name" yaml:"name"`
	Includes          []string              `json:"includes,omitempty" yaml:"includes,omitempty"`
	Provides          []ProvideSpec         `json:"provides,omitempty" yaml:"provides,omitempty"`
	AssistedFactories []AssistedFactorySpec `json:"assistedFactories,omitempty" yaml:"assisted_factories,omitempty"`
}

// Provide kinds.
const (
	ProvideProvision  = "provision"
	ProvideSet        = "set"
	ProvideSetValues  = "set_values"
	ProvideMap        = "map"
	ProvideMultibinds = "multibinds"
)

// ProvideSpec is a module method producing a binding.
type ProvideSpec struct {
	Method    string    `json:"method" yaml:"method"`
	Type      string    `json:"type" yaml:"type"`
	Qualifier string    `json:"qualifier,omitempty" yaml:"qualifier,omitempty"`
	Scope     string    `json:"scope,omitempty" yaml:"scope,omitempty"`
	Kind      string    `json:"kind,omitempty" yaml:"kind,omitempty"`
	MapKey    string    `json:"mapKey,omitempty" yaml:"map_key,omitempty"`
	Deps      []DepSpec `json:"deps,omitempty" yaml:"deps,omitempty"`
}

// AssistedFactorySpec declares a factory for an assisted-injection type.
type AssistedFactorySpec struct {
	Type   KeySpec `json:"type" yaml:"type"`
	Target KeySpec `json:"target" yaml:"target"`
}

// ConstructorSpec declares an injectable constructor.
type ConstructorSpec struct {
	Type      string    `json:"type" yaml:"type"`
	Qualifier string    `json:"qualifier,omitempty" yaml:"qualifier,omitempty"`
	Scope     string    `json:"scope,omitempty" yaml:"scope,omitempty"`
	Assisted  bool      `json:"assisted,omitempty" yaml:"assisted,omitempty"`
	Deps      []DepSpec `json:"deps,omitempty" yaml:"deps,omitempty"`
}

// ComponentSpec declares a component node.
type ComponentSpec struct {
	ID             string    `json:"id" yaml:"id"`
	Scope          string    `json:"scope,omitempty" yaml:"scope,omitempty"`
	Parent         string    `json:"parent,omitempty" yaml:"parent,omitempty"`
	Modules        []string  `json:"modules,omitempty" yaml:"modules,omitempty"`
	EntryPoints    []DepSpec `json:"entryPoints,omitempty" yaml:"entry_points,omitempty"`
	Creator        KeySpec   `json:"creator,omitempty" yaml:"creator,omitempty"`
	BoundInstances []KeySpec `json:"boundInstances,omitempty" yaml:"bound_instances,omitempty"`
	Dependencies   []KeySpec `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// KeySpec is a key written either as "@Qualifier Type" or as a mapping.
type KeySpec struct {
	Type      string `json:"type" yaml:"type"`
	Qualifier string `json:"qualifier,omitempty" yaml:"qualifier,omitempty"`
}

// Key returns the model key.
func (k KeySpec) Key() model.Key {
	if k.Qualifier != "" {
		return model.QualifiedKey(k.Qualifier, k.Type)
	}
	return model.ParseKey(k.Type)
}

// UnmarshalYAML accepts a scalar or a mapping.
func (k *KeySpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*k = KeySpec{Type: node.Value}
		return nil
	}
	type plain KeySpec
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*k = KeySpec(p)
	return nil
}

// UnmarshalJSON accepts a string or an object.
func (k *KeySpec) UnmarshalJSON(data []byte) error {
	var s string
	if isJSONString(data) {
		if err := jsoniter.Unmarshal(data, &s); err != nil {
			return err
		}
		*k = KeySpec{Type: s}
		return nil
	}
	type plain KeySpec
	var p plain
	if err := jsoniter.Unmarshal(data, &p); err != nil {
		return err
	}
	*k = KeySpec(p)
	return nil
}

// DepSpec is a dependency request written either as "@Qualifier Type" (an
// instance request) or as a mapping carrying kind and optionality.
type DepSpec struct {
	Type      string `json:"type" yaml:"type"`
	Qualifier string `json:"qualifier,omitempty" yaml:"qualifier,omitempty"`
	Kind      string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Optional  bool   `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// Request returns the model request.
func (d DepSpec) Request() model.DependencyRequest {
	key := KeySpec{Type: d.Type, Qualifier: d.Qualifier}.Key()
	return model.DependencyRequest{
		Key:      key,
		Kind:     model.RequestKind(strings.TrimSpace(d.Kind)).Normalize(),
		Optional: d.Optional,
	}
}

// UnmarshalYAML accepts a scalar or a mapping.
func (d *DepSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*d = DepSpec{Type: node.Value}
		return nil
	}
	type plain DepSpec
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*d = DepSpec(p)
	return nil
}

// UnmarshalJSON accepts a string or an object.
func (d *DepSpec) UnmarshalJSON(data []byte) error {
	if isJSONString(data) {
		var s string
		if err := jsoniter.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = DepSpec{Type: s}
		return nil
	}
	type plain DepSpec
	var p plain
	if err := jsoniter.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = DepSpec(p)
	return nil
}

func isJSONString(data []byte) bool {
	for _, c := range data {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		case '"':
			return true
		default:
			return false
		}
	}
	return false
}
