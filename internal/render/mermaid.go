package render

import (
	"fmt"
	"strings"

	"amrdiff/internal/diff"
)

var mermaidStroke = map[diff.Color]string{
	diff.Agree:    "#333",
	diff.Disagree: "#80c",
	diff.TestOnly: "#d00",
	diff.GoldOnly: "#00d",
}

// Mermaid emits a flowchart of the merged graph. Node ids are positional
// since graph names may contain spaces.
func Mermaid(g *diff.Graph) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	ids := make(map[*diff.Node]string, len(g.Nodes()))
	for i, n := range g.Nodes() {
		ids[n] = fmt.Sprintf("n%d", i)
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]:::%s\n", ids[n], escapeMermaid(n.Label), n.Color))
	}
	for _, e := range g.Edges() {
		sb.WriteString(fmt.Sprintf("    %s -->|\"%s\"| %s\n", ids[e.F], escapeMermaid(e.Label), ids[e.T]))
	}
	for i, e := range g.Edges() {
		sb.WriteString(fmt.Sprintf("    linkStyle %d stroke:%s\n", i, mermaidStroke[e.Color]))
	}
	for _, c := range []diff.Color{diff.Agree, diff.Disagree, diff.TestOnly, diff.GoldOnly} {
		sb.WriteString(fmt.Sprintf("    classDef %s stroke:%s\n", c, mermaidStroke[c]))
	}
	return sb.String()
}

func escapeMermaid(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
