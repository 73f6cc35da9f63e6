package diff

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/multi"
)

// Graph is the merged test/gold multigraph. Nodes and edges keep insertion
// order; the gonum multigraph backs adjacency queries and export.
type Graph struct {
	g      *multi.DirectedGraph
	nodes  []*Node
	edges  []*Edge
	byName map[string]*Node
	nextID int64
}

func newGraph() *Graph {
	return &Graph{
		g:      multi.NewDirectedGraph(),
		byName: make(map[string]*Node),
	}
}

// Nodes returns nodes in insertion order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Edges returns edges in insertion order.
func (g *Graph) Edges() []*Edge { return g.edges }

// Node looks up a node by name.
func (g *Graph) Node(name string) *Node { return g.byName[name] }

// Multigraph exposes the underlying gonum graph.
func (g *Graph) Multigraph() graph.DirectedMultigraph { return g.g }

// From returns the edges leaving n in insertion order.
func (g *Graph) From(n *Node) []*Edge {
	var out []*Edge
	for _, e := range g.edges {
		if e.F == n {
			out = append(out, e)
		}
	}
	return out
}

// Parallel counts the lines from u to v.
func (g *Graph) Parallel(u, v *Node) int {
	return g.g.Lines(u.ID(), v.ID()).Len()
}

// Tally counts nodes and edges per color.
type Tally struct {
	Nodes map[Color]int
	Edges map[Color]int
}

func (g *Graph) Tally() Tally {
	t := Tally{Nodes: make(map[Color]int), Edges: make(map[Color]int)}
	for _, n := range g.nodes {
		t.Nodes[n.Color]++
	}
	for _, e := range g.edges {
		t.Edges[e.Color]++
	}
	return t
}

func (g *Graph) addNode(name, test, gold string, testIndex, goldIndex int) *Node {
	n := &Node{id: g.nextID, Name: name, TestIndex: testIndex, GoldIndex: goldIndex}
	g.nextID++
	n.setLabels(test, gold)
	g.g.AddNode(n)
	g.nodes = append(g.nodes, n)
	g.byName[name] = n
	return n
}

func (g *Graph) addEdge(from, to *Node, test, gold string) *Edge {
	e := &Edge{id: int64(len(g.edges)), F: from, T: to, TestLabel: test, GoldLabel: gold}
	e.Color, e.Label = classify(test, gold)
	if e.Color == TestOnly || e.Color == GoldOnly {
		// edges show only the role, never the placeholder
		e.Label = test + gold
	}
	g.g.SetLine(e)
	g.edges = append(g.edges, e)
	return e
}
