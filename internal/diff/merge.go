package diff

import (
	"fmt"
	"sort"

	"amrdiff/internal/align"
	"amrdiff/internal/amr"
	"amrdiff/internal/match"
)

// Options tunes Merge.
type Options struct {
	// UnmatchDeadNodes demotes matched nodes whose labels carry no weight
	// and that no agreeing or parallel edge touches.
	UnmatchDeadNodes bool
}

// relink holds gold roles between a gold node and a constant that the test
// side already shows under a different role.
type relink struct {
	key    amr.AttrKey
	target *Node
	roles  amr.RoleSet
}

type merger struct {
	test  *amr.Graph
	gold  *amr.Tables
	corr  match.Correspondence
	model align.LabelWeightModel
	out   *Graph

	goldOf map[string]int

	unInst   map[int]string
	unAttrs  map[amr.AttrKey]amr.RoleSet
	unRels   map[amr.RelKey]amr.RoleSet
	relinks  map[amr.AttrKey]*relink
	relinked []*relink
	topTaken bool
}

// Merge overlays test on gold under corr and returns the merged graph with
// its alignment report. A nil model compares labels literally. Merge panics
// with a *match.ContractViolation when corr does not fit the graphs.
func Merge(test, gold *amr.Graph, corr match.Correspondence, model align.LabelWeightModel, opts Options) (*Graph, []string) {
	if model == nil {
		model = align.DefaultModel{}
	}
	match.MustValidate(corr, len(test.Nodes), len(gold.Nodes))

	gt := amr.NewTables(gold)
	pool := gt.Clone()
	m := &merger{
		test:    test,
		gold:    gt,
		corr:    corr,
		model:   model,
		out:     newGraph(),
		goldOf:  make(map[string]int, len(test.Nodes)),
		unInst:  make(map[int]string, len(gt.Concepts)),
		unAttrs: pool.Attrs,
		unRels:  pool.Rels,
		relinks: make(map[amr.AttrKey]*relink),
	}
	for i, c := range gt.Concepts {
		m.unInst[i] = c
	}

	m.nodePass()
	m.topPass()
	m.constantPass()
	m.relationPass()
	if opts.UnmatchDeadNodes {
		m.unmatchDeadNodes()
	}
	m.residualPass()

	return m.out, Report(m.out)
}

func (m *merger) nodePass() {
	for i, v := range m.test.Nodes {
		g := m.corr.Gold(i)
		m.goldOf[v] = g
		goldLabel := ""
		if g >= 0 {
			goldLabel = m.gold.Concepts[g]
			delete(m.unInst, g)
		}
		m.out.addNode(v, m.test.Concept(v), goldLabel, i, g)
	}
}

// topPass draws the root self-loop. It agrees when the test root maps to
// the gold root, whatever the identifiers are.
func (m *merger) topPass() {
	root := m.out.Node(m.test.Root())
	if root == nil {
		return
	}
	gold := ""
	if m.gold.Top >= 0 && m.goldOf[root.Name] == m.gold.Top {
		gold = amr.TopRole
		m.topTaken = true
	}
	m.out.addEdge(root, root, amr.TopRole, gold)
}

func (m *merger) constantPass() {
	for _, a := range m.test.Attributes {
		from := m.out.Node(a.Node)
		name := a.Node + " " + a.Value
		goldNode, goldEdge := "", ""

		var moved *relink
		if g := m.goldOf[a.Node]; g >= 0 {
			for _, cand := range m.model.ConstantCandidates(a.Value) {
				key := amr.AttrKey{Node: g, Value: cand}
				roles, ok := m.gold.Attrs[key]
				if !ok {
					continue
				}
				goldNode = cand
				switch {
				case !roles.Has(a.Role):
					moved = m.relink(key)
				case m.unAttrs[key].Has(a.Role):
					m.unAttrs[key].Remove(a.Role)
					goldEdge = a.Role
				case m.relinks[key] != nil && m.relinks[key].roles.Has(a.Role):
					m.relinks[key].roles.Remove(a.Role)
					goldEdge = a.Role
				}
				break
			}
		}

		to := m.constNode(name, a.Value, goldNode)
		if moved != nil && moved.target == nil {
			moved.target = to
		}
		m.out.addEdge(from, to, a.Role, goldEdge)
	}
}

// relink moves the unconsumed gold roles of key out of the constant pool.
// They are later drawn as gold-only edges to the test's constant node.
func (m *merger) relink(key amr.AttrKey) *relink {
	if r, ok := m.relinks[key]; ok {
		return r
	}
	r := &relink{key: key, roles: m.unAttrs[key]}
	if r.roles == nil {
		r.roles = make(amr.RoleSet)
	}
	delete(m.unAttrs, key)
	m.relinks[key] = r
	m.relinked = append(m.relinked, r)
	return r
}

func (m *merger) constNode(name, test, gold string) *Node {
	if n := m.out.Node(name); n != nil {
		if n.GoldLabel == "" && gold != "" {
			n.setLabels(n.TestLabel, gold)
		}
		return n
	}
	return m.out.addNode(name, test, gold, -1, -1)
}

func (m *merger) relationPass() {
	for _, r := range m.test.Relations {
		goldEdge := ""
		from, to := m.goldOf[r.From], m.goldOf[r.To]
		if from >= 0 && to >= 0 {
			if roles := m.unRels[amr.RelKey{From: from, To: to}]; roles.Has(r.Role) {
				roles.Remove(r.Role)
				goldEdge = r.Role
			}
		}
		m.out.addEdge(m.out.Node(r.From), m.out.Node(r.To), r.Role, goldEdge)
	}
}

// unmatchDeadNodes returns matched variable nodes to the gold pool when the
// model gives their labels no weight and no agreeing or parallel edge
// touches them.
func (m *merger) unmatchDeadNodes() {
	live := make(map[*Node]bool)
	for _, n := range m.out.nodes {
		if n.IsConst() || n.GoldIndex < 0 || m.model.NodeWeight(n.TestLabel, n.GoldLabel) > 0 {
			live[n] = true
		}
	}
	for _, e := range m.out.edges {
		if e.Color == Agree || m.out.Parallel(e.F, e.T) > 1 {
			live[e.F] = true
			live[e.T] = true
		}
	}

	for _, n := range m.out.nodes {
		if live[n] {
			continue
		}
		m.unInst[n.GoldIndex] = n.GoldLabel
		m.goldOf[n.Name] = match.Unmatched
		n.GoldIndex = match.Unmatched
		n.setLabels(n.TestLabel, "")
	}
}

// residualPass adds every gold fact the test side did not account for.
func (m *merger) residualPass() {
	place := make(map[int]*Node)
	for _, n := range m.out.nodes {
		if n.TestIndex >= 0 && n.GoldIndex >= 0 {
			place[n.GoldIndex] = n
		}
	}
	for _, g := range sortedInts(m.unInst) {
		place[g] = m.out.addNode(fmt.Sprintf("GOLD %d", g), "", m.unInst[g], -1, g)
	}

	for _, key := range sortedAttrKeys(m.unAttrs) {
		src := place[key.Node]
		for _, role := range m.unAttrs[key].Sorted() {
			name := src.Name + " " + key.Value
			to := m.out.Node(name)
			if to == nil {
				to = m.out.addNode(name, "", key.Value, -1, -1)
			}
			m.out.addEdge(src, to, "", role)
		}
	}
	for _, r := range m.relinked {
		for _, role := range r.roles.Sorted() {
			m.out.addEdge(place[r.key.Node], r.target, "", role)
		}
	}
	for _, key := range sortedRelKeys(m.unRels) {
		for _, role := range m.unRels[key].Sorted() {
			m.out.addEdge(place[key.From], place[key.To], "", role)
		}
	}
	if !m.topTaken && m.gold.Top >= 0 {
		root := place[m.gold.Top]
		m.out.addEdge(root, root, "", amr.TopRole)
	}
}

// Report lists one line per variable node:
// test index, test label, "-", gold index, gold label.
func Report(g *Graph) []string {
	var lines []string
	for _, n := range g.nodes {
		if n.IsConst() {
			continue
		}
		lines = append(lines, fmt.Sprintf("%d\t%s\t-\t%d\t%s", n.TestIndex, n.TestLabel, n.GoldIndex, n.GoldLabel))
	}
	return lines
}

func sortedInts(m map[int]string) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func sortedAttrKeys(m map[amr.AttrKey]amr.RoleSet) []amr.AttrKey {
	out := make([]amr.AttrKey, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Node != out[j].Node {
			return out[i].Node < out[j].Node
		}
		return out[i].Value < out[j].Value
	})
	return out
}

func sortedRelKeys(m map[amr.RelKey]amr.RoleSet) []amr.RelKey {
	out := make([]amr.RelKey, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}
