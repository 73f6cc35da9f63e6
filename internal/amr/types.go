package amr

// TopRole marks the designated root of a graph. It is never stored as an
// edge; consumers derive it from Graph.Root.
const TopRole = "TOP"

// Instance is the "instance-of" triple of a node.
type Instance struct {
	Node    string `json:"node"`
	Concept string `json:"concept"`
}

// Relation is a variable-edge between two node identifiers.
type Relation struct {
	Role string `json:"role"`
	From string `json:"from"`
	To   string `json:"to"`
}

// Attribute is a constant-edge from a node to a literal leaf value.
type Attribute struct {
	Role  string `json:"role"`
	Node  string `json:"node"`
	Value string `json:"value"`
}

// Graph is one parsed annotation.
// Nodes keeps first-occurrence order; the first node is the root.
type Graph struct {
	Nodes      []string
	Concepts   map[string]string
	Relations  []Relation
	Attributes []Attribute
	Paths      *PathTable

	index map[string]int
}

func newGraph() *Graph {
	return &Graph{
		Concepts: make(map[string]string),
		Paths:    NewPathTable(),
		index:    make(map[string]int),
	}
}

func (g *Graph) addNode(v, concept string) {
	g.index[v] = len(g.Nodes)
	g.Nodes = append(g.Nodes, v)
	if concept != "" {
		g.Concepts[v] = concept
	}
}

// Root returns the identifier of the first parsed node.
func (g *Graph) Root() string {
	if g == nil || len(g.Nodes) == 0 {
		return ""
	}
	return g.Nodes[0]
}

// Index returns the occurrence position of a node identifier.
func (g *Graph) Index(v string) (int, bool) {
	i, ok := g.index[v]
	return i, ok
}

// Concept returns the concept label of node v.
func (g *Graph) Concept(v string) string {
	return g.Concepts[v]
}

// Instances lists the instance triples in node order.
func (g *Graph) Instances() []Instance {
	out := make([]Instance, 0, len(g.Nodes))
	for _, v := range g.Nodes {
		out = append(out, Instance{Node: v, Concept: g.Concepts[v]})
	}
	return out
}

// Labels returns every label that can be aligned to sentence tokens:
// concepts in node order followed by constant values.
func (g *Graph) Labels() []string {
	out := make([]string, 0, len(g.Nodes)+len(g.Attributes))
	for _, v := range g.Nodes {
		out = append(out, g.Concepts[v])
	}
	for _, a := range g.Attributes {
		out = append(out, a.Value)
	}
	return out
}

// LabelAt resolves a dotted structural path such as "0.1.0".
func (g *Graph) LabelAt(path string) (string, bool) {
	if g == nil || g.Paths == nil {
		return "", false
	}
	return g.Paths.Lookup(path)
}

