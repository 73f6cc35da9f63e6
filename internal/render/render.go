package render

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gonum.org/v1/gonum/graph/encoding/dot"

	"amrdiff/internal/diff"
)

// Format selects an export encoding.
type Format string

const (
	FormatDOT     Format = "dot"
	FormatMermaid Format = "mermaid"
	FormatJSON    Format = "json"
)

// ParseFormat accepts dot, mermaid or json, ignoring case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatDOT, FormatMermaid, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Extension returns the file extension used for f.
func (f Format) Extension() string {
	switch f {
	case FormatMermaid:
		return ".mmd"
	case FormatJSON:
		return ".json"
	default:
		return ".dot"
	}
}

// Render encodes g in the given format. name titles the document.
func Render(g *diff.Graph, f Format, name string) ([]byte, error) {
	switch f {
	case FormatDOT:
		return DOT(g, name)
	case FormatMermaid:
		return []byte(Mermaid(g)), nil
	case FormatJSON:
		return json.Marshal(g)
	}
	return nil, fmt.Errorf("unknown output format %q", f)
}

var nonIdent = regexp.MustCompile(`[^A-Za-z0-9_]`)

// DOT writes a Graphviz digraph with colored nodes and edges.
func DOT(g *diff.Graph, name string) ([]byte, error) {
	id := nonIdent.ReplaceAllString(name, "_")
	if id == "" {
		id = "amr"
	}
	b, err := dot.MarshalMulti(g.Multigraph(), id, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal dot: %w", err)
	}
	return b, nil
}
