// Package loader decodes model files into a model.Model.
package loader

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/xraph/kiln/internal/errors"
	"github.com/xraph/kiln/internal/model"
	"github.com/xraph/kiln/internal/semver"
)

// Format is a model file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	// FormatAuto picks JSON or YAML from the content.
	FormatAuto Format = "auto"
)

var strictJSON = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	DisallowUnknownFields:  true,
}.Froze()

// FormatFor picks the encoding from a file extension; anything but .json is YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Sniff reports JSON when the first non-space byte of data opens an object or
// array, and YAML otherwise.
func Sniff(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}

// LoadFile reads, decodes and expands the model file at path.
func LoadFile(path string) (*model.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ErrLoad(path, err)
	}

	m, err := Decode(data, FormatFor(path))
	if err != nil {
		if errors.GetErrorCode(err) != "" {
			return nil, err
		}
		return nil, errors.ErrLoad(path, err)
	}
	return m, nil
}

// Decode parses data in the given format and expands it into a model.
func Decode(data []byte, format Format) (*model.Model, error) {
	file, err := DecodeFile(data, format)
	if err != nil {
		return nil, err
	}
	return file.Model()
}

// DecodeFile parses data without expanding it.
func DecodeFile(data []byte, format Format) (*File, error) {
	var file File

	if format == FormatAuto {
		format = Sniff(data)
	}
	switch format {
	case FormatJSON:
		if err := strictJSON.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case FormatYAML, "":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown model format %q", format)
	}

	return &file, nil
}

// Model gates the schema version and expands the file into a model. Structural
// checks beyond the file shape are left to model.Check.
func (f *File) Model() (*model.Model, error) {
	version, err := semver.CheckSchema(f.Schema)
	if err != nil {
		return nil, errors.ErrUnsupportedSchema(f.Schema, semver.SupportedSchema, err)
	}

	m := &model.Model{Schema: version.String()}
	var reasons []string

	for _, ms := range f.Modules {
		m.Modules = append(m.Modules, model.Module{Name: ms.Name, Includes: ms.Includes})

		for _, p := range ms.Provides {
			b, reason := p.binding(ms.Name)
			if reason != "" {
				reasons = append(reasons, fmt.Sprintf("module %q method %q: %s", ms.Name, p.Method, reason))
				continue
			}
			m.Bindings = append(m.Bindings, b)
		}

		for _, af := range ms.AssistedFactories {
			m.Bindings = append(m.Bindings, model.AssistedFactoryBinding(ms.Name, af.Type.Key(), af.Target.Key()))
		}
	}

	for _, c := range f.Constructors {
		key := KeySpec{Type: c.Type, Qualifier: c.Qualifier}.Key()
		deps := requests(c.Deps)
		if c.Assisted {
			if c.Scope != "" {
				reasons = append(reasons, fmt.Sprintf("constructor %q: assisted constructors cannot be scoped", key))
				continue
			}
			m.Bindings = append(m.Bindings, model.AssistedInjectionBinding(key, deps...))
			continue
		}
		m.Bindings = append(m.Bindings, model.ConstructorBinding(key, c.Scope, deps...))
	}

	for _, cs := range f.Components {
		comp := model.Component{
			ID:          model.ComponentID(cs.ID),
			Scope:       cs.Scope,
			Parent:      model.ComponentID(cs.Parent),
			Modules:     cs.Modules,
			EntryPoints: requests(cs.EntryPoints),
		}
		if cs.Creator.Type != "" {
			comp.Creator = cs.Creator.Key()
		}
		for _, k := range cs.BoundInstances {
			comp.BoundInstances = append(comp.BoundInstances, k.Key())
		}
		for _, k := range cs.Dependencies {
			comp.Dependencies = append(comp.Dependencies, k.Key())
		}
		m.Components = append(m.Components, comp)
	}

	if len(reasons) > 0 {
		return nil, errors.ErrInvalidModel(reasons...)
	}
	return m, nil
}

func (p ProvideSpec) binding(module string) (*model.Binding, string) {
	if p.Method == "" {
		return nil, "missing method"
	}
	key := KeySpec{Type: p.Type, Qualifier: p.Qualifier}.Key()
	deps := requests(p.Deps)

	switch p.Kind {
	case "", ProvideProvision:
		return model.ProvisionBinding(module, p.Method, key, p.Scope, deps...), ""
	case ProvideSet, ProvideSetValues:
		if p.Scope != "" {
			return nil, "multibinding contributions cannot be scoped"
		}
		b := model.SetContributionBinding(module, p.Method, key, deps...)
		b.Elements = p.Kind == ProvideSetValues
		return b, ""
	case ProvideMap:
		if p.Scope != "" {
			return nil, "multibinding contributions cannot be scoped"
		}
		if p.MapKey == "" {
			return nil, "map contribution without map_key"
		}
		return model.MapContributionBinding(module, p.Method, key, p.MapKey, deps...), ""
	case ProvideMultibinds:
		if len(deps) > 0 {
			return nil, "multibinds declarations take no dependencies"
		}
		return model.MultibindsDeclaration(module, p.Method, key), ""
	default:
		return nil, fmt.Sprintf("unknown kind %q", p.Kind)
	}
}

func requests(specs []DepSpec) []model.DependencyRequest {
	if len(specs) == 0 {
		return nil
	}
	out := make([]model.DependencyRequest, 0, len(specs))
	for _, d := range specs {
		out = append(out, d.Request())
	}
	return out
}
