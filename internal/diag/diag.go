// Package diag defines the typed problems reported for a component.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xraph/kiln/internal/model"
)

// Code identifies a problem category.
type Code string

const (
	CodeMissingBinding           Code = "MISSING_BINDING"
	CodeDuplicateBinding         Code = "DUPLICATE_BINDING"
	CodeDuplicateMapKey          Code = "DUPLICATE_MAP_KEY"
	CodeAssistedInjectionRequest Code = "ASSISTED_INJECTION_REQUEST"
	CodeScopeMismatch            Code = "SCOPE_MISMATCH"
	CodeDuplicateScope           Code = "DUPLICATE_SCOPE"
	CodeUnbreakableCycle         Code = "UNBREAKABLE_CYCLE"
	CodeUnusedSubcomponent       Code = "UNUSED_SUBCOMPONENT"
	CodeAncestorRejected         Code = "ANCESTOR_REJECTED"
	CodeLifetimeViolation        Code = "LIFETIME_VIOLATION"
)

// Severity of a problem. Only errors reject a component.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Severity returns the fixed severity of the code.
func (c Code) Severity() Severity {
	switch c {
	case CodeUnusedSubcomponent, CodeLifetimeViolation:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// Problem is a single diagnostic attached to a component.
type Problem struct {
	Code       Code                `json:"code" yaml:"code"`
	Severity   Severity            `json:"severity" yaml:"severity"`
	Component  model.ComponentID   `json:"component" yaml:"component"`
	Message    string              `json:"message" yaml:"message"`
	Keys       []model.Key         `json:"keys,omitempty" yaml:"keys,omitempty"`
	Bindings   []model.BindingID   `json:"bindings,omitempty" yaml:"bindings,omitempty"`
	Scope      string              `json:"scope,omitempty" yaml:"scope,omitempty"`
	Components []model.ComponentID `json:"components,omitempty" yaml:"components,omitempty"`
	MapKey     string              `json:"mapKey,omitempty" yaml:"map_key,omitempty"`
	Chain      []model.Key         `json:"chain,omitempty" yaml:"chain,omitempty"`
}

func (p Problem) String() string {
	return fmt.Sprintf("[%s] %s: %s", p.Code, p.Component, p.Message)
}

// IsError reports whether p rejects its component.
func (p Problem) IsError() bool {
	return p.Severity == SeverityError
}

func newProblem(code Code, component model.ComponentID, message string) Problem {
	return Problem{
		Code:      code,
		Severity:  code.Severity(),
		Component: component,
		Message:   message,
	}
}

// FormatChain renders a request chain as "A -> B -> C".
func FormatChain(chain []model.Key) string {
	parts := make([]string, len(chain))
	for i, k := range chain {
		parts[i] = k.String()
	}
	return strings.Join(parts, " -> ")
}

func MissingBinding(component model.ComponentID, key model.Key, chain []model.Key) Problem {
	p := newProblem(CodeMissingBinding, component,
		fmt.Sprintf("%s cannot be provided without a binding", key))
	if len(chain) > 1 {
		p.Message += "; requested at " + FormatChain(chain)
	}
	p.Keys = []model.Key{key}
	p.Chain = chain
	return p
}

func DuplicateBinding(component model.ComponentID, key model.Key, bindings []model.BindingID) Problem {
	p := newProblem(CodeDuplicateBinding, component,
		fmt.Sprintf("%s is bound multiple times: %s", key, joinIDs(bindings)))
	p.Keys = []model.Key{key}
	p.Bindings = bindings
	return p
}

func DuplicateMapKey(component model.ComponentID, key model.Key, mapKey string, bindings []model.BindingID) Problem {
	p := newProblem(CodeDuplicateMapKey, component,
		fmt.Sprintf("%s has multiple contributions for map key %q: %s", key, mapKey, joinIDs(bindings)))
	p.Keys = []model.Key{key}
	p.MapKey = mapKey
	p.Bindings = bindings
	return p
}

func AssistedInjectionRequest(component model.ComponentID, key model.Key, chain []model.Key) Problem {
	p := newProblem(CodeAssistedInjectionRequest, component,
		fmt.Sprintf("%s uses assisted injection and can only be created through its assisted factory", key))
	if len(chain) > 1 {
		p.Message += "; requested at " + FormatChain(chain)
	}
	p.Keys = []model.Key{key}
	p.Chain = chain
	return p
}

// ScopeMismatch reports a scoped binding owned by a level that does not declare
// its scope. requester is the component whose request placed it there.
func ScopeMismatch(component model.ComponentID, key model.Key, binding model.BindingID, scope string, requester model.ComponentID) Problem {
	p := newProblem(CodeScopeMismatch, component,
		fmt.Sprintf("%s (%s) is scoped @%s but component %s does not declare that scope", key, binding, scope, requester))
	p.Keys = []model.Key{key}
	p.Bindings = []model.BindingID{binding}
	p.Scope = scope
	p.Components = []model.ComponentID{requester}
	return p
}

func DuplicateScope(component model.ComponentID, scope string, ancestor model.ComponentID) Problem {
	p := newProblem(CodeDuplicateScope, component,
		fmt.Sprintf("scope @%s is declared by both %s and its ancestor %s", scope, component, ancestor))
	p.Scope = scope
	p.Components = []model.ComponentID{ancestor, component}
	return p
}

// UnbreakableCycle reports an eager construction cycle. The chain starts and
// ends with the same key.
func UnbreakableCycle(component model.ComponentID, chain []model.Key) Problem {
	p := newProblem(CodeUnbreakableCycle, component,
		"dependency cycle without a lazy or provider edge: "+FormatChain(chain))
	p.Chain = chain
	p.Keys = CycleKeys(chain)
	return p
}

func UnusedSubcomponent(component model.ComponentID) Problem {
	return newProblem(CodeUnusedSubcomponent, component,
		fmt.Sprintf("subcomponent %s is never reached from any entry point", component))
}

func AncestorRejected(component, ancestor model.ComponentID) Problem {
	p := newProblem(CodeAncestorRejected, component,
		fmt.Sprintf("ancestor %s was rejected", ancestor))
	p.Components = []model.ComponentID{ancestor}
	return p
}

func LifetimeViolation(component model.ComponentID, key model.Key, binding model.BindingID, owner model.ComponentID) Problem {
	p := newProblem(CodeLifetimeViolation, component,
		fmt.Sprintf("%s (%s) is cached by %s which does not enclose %s", key, binding, owner, component))
	p.Keys = []model.Key{key}
	p.Bindings = []model.BindingID{binding}
	p.Components = []model.ComponentID{owner}
	return p
}

// CycleKeys returns the distinct keys of a cycle chain, sorted. Two chains
// describe the same cycle iff their CycleKeys are equal.
func CycleKeys(chain []model.Key) []model.Key {
	seen := make(map[model.Key]bool, len(chain))
	var keys []model.Key
	for _, k := range chain {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

func joinIDs(ids []model.BindingID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}
