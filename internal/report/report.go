// Package report renders compile results for people and tools.
package report

import (
	"fmt"
	"io"

	"github.com/xraph/kiln/internal/compiler"
)

// Format is an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Options control rendering.
type Options struct {
	Format Format
	Color  bool
	// ProblemsOnly drops construction plans from the output.
	ProblemsOnly bool
}

// Render writes results to w in the requested format.
func Render(w io.Writer, results compiler.Results, opts Options) error {
	if opts.ProblemsOnly {
		results = withoutPlans(results)
	}

	switch opts.Format {
	case FormatText, "":
		return Text(w, results, opts)
	case FormatJSON:
		return JSON(w, results)
	case FormatYAML:
		return YAML(w, results)
	default:
		return fmt.Errorf("unknown report format %q", opts.Format)
	}
}

func withoutPlans(results compiler.Results) compiler.Results {
	out := make(compiler.Results, len(results))
	for i, r := range results {
		r.Plan = nil
		out[i] = r
	}
	return out
}
