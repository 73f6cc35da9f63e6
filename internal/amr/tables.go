package amr

import "sort"

// RoleSet is the set of edge labels connecting one pair of endpoints.
type RoleSet map[string]struct{}

func (s RoleSet) Add(role string)      { s[role] = struct{}{} }
func (s RoleSet) Remove(role string)   { delete(s, role) }
func (s RoleSet) Has(role string) bool { _, ok := s[role]; return ok }

// Clone returns an independent copy.
func (s RoleSet) Clone() RoleSet {
	out := make(RoleSet, len(s))
	for r := range s {
		out[r] = struct{}{}
	}
	return out
}

// Sorted returns the roles in lexical order.
func (s RoleSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// AttrKey addresses a constant-edge by node position and constant value.
type AttrKey struct {
	Node  int
	Value string
}

// RelKey addresses a variable-edge by node positions.
type RelKey struct {
	From int
	To   int
}

// Tables are position-indexed views of a graph, comparable across two graphs
// once a node correspondence is known.
type Tables struct {
	Concepts []string
	Attrs    map[AttrKey]RoleSet
	Rels     map[RelKey]RoleSet
	Top      int // position of the root; -1 for an empty graph
}

// NewTables builds the relation tables of g.
func NewTables(g *Graph) *Tables {
	t := &Tables{
		Concepts: make([]string, len(g.Nodes)),
		Attrs:    make(map[AttrKey]RoleSet),
		Rels:     make(map[RelKey]RoleSet),
		Top:      -1,
	}
	for i, v := range g.Nodes {
		t.Concepts[i] = g.Concepts[v]
	}
	if len(g.Nodes) > 0 {
		t.Top = 0
	}

	for _, a := range g.Attributes {
		key := AttrKey{Node: g.index[a.Node], Value: a.Value}
		if t.Attrs[key] == nil {
			t.Attrs[key] = make(RoleSet)
		}
		t.Attrs[key].Add(a.Role)
	}
	for _, r := range g.Relations {
		key := RelKey{From: g.index[r.From], To: g.index[r.To]}
		if t.Rels[key] == nil {
			t.Rels[key] = make(RoleSet)
		}
		t.Rels[key].Add(r.Role)
	}
	return t
}

// Clone deep-copies the tables so the copy can be drained independently.
func (t *Tables) Clone() *Tables {
	out := &Tables{
		Concepts: append([]string(nil), t.Concepts...),
		Attrs:    make(map[AttrKey]RoleSet, len(t.Attrs)),
		Rels:     make(map[RelKey]RoleSet, len(t.Rels)),
		Top:      t.Top,
	}
	for k, v := range t.Attrs {
		out.Attrs[k] = v.Clone()
	}
	for k, v := range t.Rels {
		out.Rels[k] = v.Clone()
	}
	return out
}
