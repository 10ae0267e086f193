package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/xraph/kiln/internal/compiler"
	"github.com/xraph/kiln/internal/diag"
	"github.com/xraph/kiln/internal/planner"
)

type palette struct {
	ok, bad, warn, dim, bold *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		ok:   color.New(color.FgGreen, color.Bold),
		bad:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow),
		dim:  color.New(color.FgHiBlack),
		bold: color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.ok, p.bad, p.warn, p.dim, p.bold} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Text writes a human readable report.
func Text(w io.Writer, results compiler.Results, opts Options) error {
	p := newPalette(opts.Color)
	tw := &textWriter{w: w}

	var accepted, rejected, warnings int
	for _, r := range results {
		status := p.ok.Sprint(r.Status)
		if r.Accepted() {
			accepted++
		} else {
			status = p.bad.Sprint(r.Status)
			rejected++
		}
		warnings += len(r.Problems.Warnings())

		tw.printf("component %s [%s]", p.bold.Sprint(r.Component), status)
		if r.Plan != nil && r.Plan.Scope != "" {
			tw.printf(" scope %s", r.Plan.Scope)
		}
		tw.printf("\n")

		for _, prob := range r.Problems {
			severity := p.bad.Sprintf("%-7s", prob.Severity)
			if !prob.IsError() {
				severity = p.warn.Sprintf("%-7s", prob.Severity)
			}
			tw.printf("  %s %s %s\n", severity, prob.Code, prob.Message)
		}

		if r.Plan != nil {
			writePlan(tw, p, r.Plan)
		}
	}

	tw.printf("%d accepted, %d rejected, %d warnings\n", accepted, rejected, warnings)
	return tw.err
}

func writePlan(tw *textWriter, p palette, plan *planner.ConstructionPlan) {
	if len(plan.Steps) > 0 {
		tw.printf("  steps:\n")
	}
	for i, s := range plan.Steps {
		tw.printf("    %2d. %s %s %s", i+1, s.Key, p.dim.Sprintf("<- %s", s.Binding), s.Tier)
		if s.MapKey != "" {
			tw.printf(" map_key=%s", s.MapKey)
		}
		if len(s.Dependencies) > 0 {
			deps := make([]string, len(s.Dependencies))
			for j, d := range s.Dependencies {
				deps[j] = dependencyString(d)
			}
			tw.printf(" (%s)", strings.Join(deps, ", "))
		}
		tw.printf("\n")
	}

	if len(plan.EntryPoints) > 0 {
		eps := make([]string, len(plan.EntryPoints))
		for i, d := range plan.EntryPoints {
			eps[i] = dependencyString(d)
		}
		tw.printf("  entry points: %s\n", strings.Join(eps, ", "))
	}
	for _, c := range plan.Closures {
		tw.printf("  closure: %s -> %s (%s)\n", c.From, c.To, c.Kind)
	}
	for _, inh := range plan.Inherited {
		tw.printf("  inherited: %s from %s\n", inh.Key, inh.Source)
	}
}

func dependencyString(d planner.PlanDependency) string {
	s := d.Key.String()
	if d.Kind != "" && d.Kind != "instance" {
		s = string(d.Kind) + "<" + s + ">"
	}
	if d.Optional {
		s = "optional<" + s + ">"
	}
	if d.Absent {
		s += "=absent"
	}
	return s
}

// Problems writes one line per problem, without color.
func Problems(w io.Writer, problems diag.List) error {
	tw := &textWriter{w: w}
	for _, p := range problems {
		tw.printf("%s\n", p)
	}
	return tw.err
}

type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}
