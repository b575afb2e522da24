package io

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/pipemerge/pkg/dag"
)

// DOTOptions configures [ToDOT].
type DOTOptions struct {
	// Detailed adds every record's primitive path and owning graph to the
	// label. When false, labels show the node ID and distinct display names.
	Detailed bool
}

// ToDOT converts g to Graphviz DOT source. Nodes shared by several
// pipelines (more than one record) are drawn with a bold, coloured outline.
func ToDOT(g *dag.DAG, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	if name := g.Name(); name != "" {
		fmt.Fprintf(&buf, "  label=%q;\n", name)
	}
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed))
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *dag.Node, detailed bool) string {
	if !detailed {
		names := make(map[string]struct{})
		for _, r := range n.Records {
			if r.Name != "" {
				names[r.Name] = struct{}{}
			}
		}
		if len(names) == 0 {
			return n.ID
		}
		return n.ID + "\n" + strings.Join(slices.Sorted(maps.Keys(names)), "\n")
	}

	parts := []string{n.ID}
	for _, r := range n.Records {
		if r.Graph != "" {
			parts = append(parts, fmt.Sprintf("%s (%s)", r.Path, r.Graph))
		} else {
			parts = append(parts, r.Path)
		}
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n *dag.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if len(n.Records) > 1 {
		attrs = append(attrs, "penwidth=2", "color=\"#1f77b4\"", "fillcolor=\"#dbe9f6\"")
	}
	return attrs
}
