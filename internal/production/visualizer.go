package production

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/comalice/psl/internal/core"
)

// DOTVisualizer renders a runtime snapshot as a Graphviz digraph: one record
// node per psl node with one port per inlet, and one edge per connection.
type DOTVisualizer struct{}

// ExportDOT generates Graphviz DOT source for the snapshot.
func (DOTVisualizer) ExportDOT(snapshot core.RuntimeSnapshot) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", snapshot.RuntimeID)
	buf.WriteString(`  rankdir=TB;
  node [shape=record, fontsize=10];
  edge [fontsize=9];
`)

	for _, n := range snapshot.Nodes {
		renderNode(&buf, n)
	}
	for _, c := range snapshot.Connections {
		fmt.Fprintf(&buf, "  %q:out -> %q:in%d;\n", c.From, c.To, c.Inlet)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// renderNode writes a record with inlets on top and the outlet below.
func renderNode(buf *bytes.Buffer, n core.NodeSnapshot) {
	inlets := make([]string, 0, len(n.Buffer)+1)
	inlets = append(inlets, "<in0> "+formatValue(n.Primary))
	for i, v := range n.Buffer {
		inlets = append(inlets, fmt.Sprintf("<in%d> %s", i+1, formatValue(v)))
	}

	label := n.Op
	if n.Selector != n.Op {
		label = fmt.Sprintf("%s (%s)", n.Selector, n.Op)
	}
	style := ""
	if n.Selector != n.Op {
		style = ` style=filled fillcolor=orange`
	}
	fmt.Fprintf(buf, "  %q [label=\"{{%s}|%s: %s|<out>}\"%s];\n",
		n.ID, strings.Join(inlets, "|"), escapeRecord(n.ID), escapeRecord(label), style)
}

func formatValue(v float64) string {
	return escapeRecord(fmt.Sprintf("%g", v))
}

// escapeRecord escapes characters that are structural in record labels.
func escapeRecord(s string) string {
	r := strings.NewReplacer(`{`, `\{`, `}`, `\}`, `|`, `\|`, `<`, `\<`, `>`, `\>`, `"`, `\"`)
	return r.Replace(s)
}
