package match

import (
	"amrdiff/internal/align"
	"amrdiff/internal/amr"
)

// Counts tallies weighted triple agreement under a correspondence.
type Counts struct {
	Matched float64
	Test    int
	Gold    int
}

func (c Counts) Precision() float64 {
	if c.Test == 0 {
		return 0
	}
	return c.Matched / float64(c.Test)
}

func (c Counts) Recall() float64 {
	if c.Gold == 0 {
		return 0
	}
	return c.Matched / float64(c.Gold)
}

// F1 is the harmonic mean of precision and recall.
func (c Counts) F1() float64 {
	p, r := c.Precision(), c.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// Tally counts instance, constant and relation triples that agree under
// corr, weighting labels and roles with model. TOP counts as one triple
// per non-empty graph.
func Tally(test, gold *amr.Graph, corr Correspondence, model align.LabelWeightModel) Counts {
	tt, gt := amr.NewTables(test), amr.NewTables(gold)
	c := Counts{
		Test: len(test.Nodes) + len(test.Attributes) + len(test.Relations),
		Gold: len(gold.Nodes) + len(gold.Attributes) + len(gold.Relations),
	}
	if tt.Top >= 0 {
		c.Test++
	}
	if gt.Top >= 0 {
		c.Gold++
	}

	for i, concept := range tt.Concepts {
		if g := corr.Gold(i); g >= 0 {
			c.Matched += model.NodeWeight(concept, gt.Concepts[g])
		}
	}
	if tt.Top >= 0 && corr.Gold(tt.Top) == gt.Top {
		c.Matched++
	}
	for key, roles := range tt.Attrs {
		g := corr.Gold(key.Node)
		if g < 0 {
			continue
		}
		if gr, ok := gt.Attrs[amr.AttrKey{Node: g, Value: key.Value}]; ok {
			c.Matched += bestRoles(roles, gr, model)
		}
	}
	for key, roles := range tt.Rels {
		from, to := corr.Gold(key.From), corr.Gold(key.To)
		if from < 0 || to < 0 {
			continue
		}
		if gr, ok := gt.Rels[amr.RelKey{From: from, To: to}]; ok {
			c.Matched += bestRoles(roles, gr, model)
		}
	}
	return c
}

// bestRoles pairs each test role with its best unused gold role.
func bestRoles(test, gold amr.RoleSet, model align.LabelWeightModel) float64 {
	used := make(map[string]bool)
	var sum float64
	for _, tr := range test.Sorted() {
		best, bestRole := 0.0, ""
		for _, gr := range gold.Sorted() {
			if used[gr] {
				continue
			}
			if w := model.EdgeWeight(tr, gr); w > best {
				best, bestRole = w, gr
			}
		}
		if bestRole != "" {
			used[bestRole] = true
			sum += best
		}
	}
	return sum
}
