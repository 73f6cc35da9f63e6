package diff

import (
	"encoding/json"
	"fmt"
)

// nodeLink mirrors the networkx node-link layout.
type nodeLink struct {
	Directed   bool           `json:"directed"`
	Multigraph bool           `json:"multigraph"`
	Graph      map[string]any `json:"graph"`
	Nodes      []jsonNode     `json:"nodes"`
	Links      []jsonLink     `json:"links"`
}

type jsonNode struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	TestLabel string `json:"test_label"`
	GoldLabel string `json:"gold_label"`
	TestIndex *int   `json:"test_ind"`
	GoldIndex *int   `json:"gold_ind"`
	Color     Color  `json:"color"`
}

// index reads an optional position; absent means no counterpart.
func index(p *int) int {
	if p == nil {
		return -1
	}
	return *p
}

type jsonLink struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	Key       int    `json:"key"`
	Label     string `json:"label"`
	TestLabel string `json:"test_label"`
	GoldLabel string `json:"gold_label"`
	Color     Color  `json:"color"`
}

// MarshalJSON encodes the graph in node-link form.
func (g *Graph) MarshalJSON() ([]byte, error) {
	doc := nodeLink{
		Directed:   true,
		Multigraph: true,
		Graph:      map[string]any{},
		Nodes:      make([]jsonNode, 0, len(g.nodes)),
		Links:      make([]jsonLink, 0, len(g.edges)),
	}
	for _, n := range g.nodes {
		doc.Nodes = append(doc.Nodes, jsonNode{
			ID:        n.Name,
			Label:     n.Label,
			TestLabel: n.TestLabel,
			GoldLabel: n.GoldLabel,
			TestIndex: &n.TestIndex,
			GoldIndex: &n.GoldIndex,
			Color:     n.Color,
		})
	}

	keys := make(map[[2]int64]int)
	for _, e := range g.edges {
		pair := [2]int64{e.F.ID(), e.T.ID()}
		doc.Links = append(doc.Links, jsonLink{
			Source:    e.F.Name,
			Target:    e.T.Name,
			Key:       keys[pair],
			Label:     e.Label,
			TestLabel: e.TestLabel,
			GoldLabel: e.GoldLabel,
			Color:     e.Color,
		})
		keys[pair]++
	}
	return json.Marshal(doc)
}

// UnmarshalJSON rebuilds a graph from node-link form. Stored labels and
// colors are kept as written.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var doc nodeLink
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	out := newGraph()
	for _, jn := range doc.Nodes {
		if out.Node(jn.ID) != nil {
			return fmt.Errorf("duplicate node %q", jn.ID)
		}
		n := out.addNode(jn.ID, jn.TestLabel, jn.GoldLabel, index(jn.TestIndex), index(jn.GoldIndex))
		n.Label, n.Color = jn.Label, jn.Color
	}
	for _, jl := range doc.Links {
		from, to := out.Node(jl.Source), out.Node(jl.Target)
		if from == nil || to == nil {
			return fmt.Errorf("link %q -> %q references an unknown node", jl.Source, jl.Target)
		}
		e := out.addEdge(from, to, jl.TestLabel, jl.GoldLabel)
		e.Label, e.Color = jl.Label, jl.Color
	}
	*g = *out
	return nil
}

// Decode validates and parses one node-link document.
func Decode(data []byte) (*Graph, error) {
	if err := validateNodeLink(data); err != nil {
		return nil, fmt.Errorf("decode diff graph: %w", err)
	}
	g := newGraph()
	if err := g.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("decode diff graph: %w", err)
	}
	return g, nil
}
