package compiler

import (
	"github.com/xraph/kiln/internal/diag"
	"github.com/xraph/kiln/internal/errors"
	"github.com/xraph/kiln/internal/model"
	"github.com/xraph/kiln/internal/planner"
	"github.com/xraph/kiln/internal/validator"
)

// ComponentResult is the outcome of compiling one component. Plan is nil when
// the component is rejected.
type ComponentResult struct {
	Component model.ComponentID         `json:"component" yaml:"component"`
	Status    validator.Status          `json:"status" yaml:"status"`
	Plan      *planner.ConstructionPlan `json:"plan,omitempty" yaml:"plan,omitempty"`
	Problems  diag.List                 `json:"problems,omitempty" yaml:"problems,omitempty"`
}

// Accepted reports whether the component compiled.
func (r ComponentResult) Accepted() bool {
	return r.Status == validator.StatusAccepted
}

// Results are component results in model order.
type Results []ComponentResult

// Rejected lists the rejected components.
func (rs Results) Rejected() []model.ComponentID {
	var out []model.ComponentID
	for _, r := range rs {
		if !r.Accepted() {
			out = append(out, r.Component)
		}
	}
	return out
}

// Problems returns every problem of every component, in result order.
func (rs Results) Problems() diag.List {
	var out diag.List
	for _, r := range rs {
		out = append(out, r.Problems...)
	}
	return out
}

// HasWarnings reports whether any component carries a warning.
func (rs Results) HasWarnings() bool {
	return len(rs.Problems().Warnings()) > 0
}

// Result returns the result of id.
func (rs Results) Result(id model.ComponentID) (ComponentResult, bool) {
	for _, r := range rs {
		if r.Component == id {
			return r, true
		}
	}
	return ComponentResult{}, false
}

// Err returns a COMPILE_FAILED error naming the rejected components, or nil.
func (rs Results) Err() error {
	rejected := rs.Rejected()
	if len(rejected) == 0 {
		return nil
	}
	ids := make([]string, len(rejected))
	for i, id := range rejected {
		ids[i] = string(id)
	}
	return errors.ErrCompileFailed(ids)
}
