package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xraph/kiln/internal/diag"
	"github.com/xraph/kiln/internal/model"
	"github.com/xraph/kiln/internal/resolver"
)

// DOT writes the resolved graph of one component in Graphviz format. Owned
// bindings are boxes, bindings owned by ancestors are dashed, keys without a
// binding are red and deferred requests are dashed edges.
func DOT(w io.Writer, g *resolver.BindingGraph, problems diag.List) error {
	tw := &textWriter{w: w}
	entry := "component:" + string(g.Component)

	tw.printf("digraph %s {\n", quote(string(g.Component)))
	tw.printf("  rankdir=LR;\n")
	tw.printf("  node [shape=box, fontname=\"monospace\"];\n")
	tw.printf("  %s [shape=ellipse, label=%s];\n", quote(entry), quote(string(g.Component)))

	declared := make(map[model.Key]bool)
	for _, rb := range g.Bindings() {
		declared[rb.Key] = true
		attrs := []string{"label=" + quote(rb.Key.String()+`\n`+string(rb.Kind))}
		if rb.Kind == model.KindAbsent {
			attrs = append(attrs, "style=dotted")
		}
		if rb.Scope != "" {
			attrs = append(attrs, "peripheries=2")
		}
		tw.printf("  %s [%s];\n", quote(rb.Key.String()), strings.Join(attrs, ", "))
	}
	for _, inh := range g.Inherited() {
		declared[inh.Key] = true
		label := fmt.Sprintf(`%s\n(%s)`, inh.Key, inh.Owner)
		tw.printf("  %s [label=%s, style=dashed];\n", quote(inh.Key.String()), quote(label))
	}

	seen := make(map[resolver.Edge]bool)
	for _, e := range g.Edges {
		e.Owner = ""
		if seen[e] {
			continue
		}
		seen[e] = true

		from := entry
		if !e.From.IsZero() {
			from = e.From.String()
		}
		attrs := ""
		if e.Kind.Deferred() {
			attrs = fmt.Sprintf(" [style=dashed, label=%s]", quote(string(e.Kind)))
		}
		tw.printf("  %s -> %s%s;\n", quote(from), quote(e.To.String()), attrs)
	}

	for _, p := range problems.WithCode(diag.CodeMissingBinding) {
		if len(p.Keys) == 0 {
			continue
		}
		key := p.Keys[0]
		if !declared[key] {
			declared[key] = true
			tw.printf("  %s [color=red, fontcolor=red];\n", quote(key.String()))
		}
		from := entry
		if len(p.Chain) > 1 {
			from = p.Chain[len(p.Chain)-2].String()
		}
		tw.printf("  %s -> %s [color=red];\n", quote(from), quote(key.String()))
	}

	tw.printf("}\n")
	return tw.err
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
