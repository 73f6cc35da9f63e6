package match

import (
	"sort"

	"amrdiff/internal/align"
	"amrdiff/internal/amr"
)

// Greedy pairs nodes by descending concept weight, breaking ties by
// neighbourhood support and then by position. It is a baseline, not an
// optimal search.
type Greedy struct{}

type candidate struct {
	test, gold int
	weight     float64
	support    int
}

func (Greedy) Match(test, gold *amr.Graph, model align.LabelWeightModel) (Correspondence, float64, error) {
	tt, gt := amr.NewTables(test), amr.NewTables(gold)

	var cands []candidate
	for i, tc := range tt.Concepts {
		for j, gc := range gt.Concepts {
			w := model.NodeWeight(tc, gc)
			if w <= 0 {
				continue
			}
			cands = append(cands, candidate{test: i, gold: j, weight: w, support: support(tt, gt, i, j)})
		}
	}
	sort.SliceStable(cands, func(a, b int) bool {
		ca, cb := cands[a], cands[b]
		if ca.weight != cb.weight {
			return ca.weight > cb.weight
		}
		if ca.support != cb.support {
			return ca.support > cb.support
		}
		if ca.test != cb.test {
			return ca.test < cb.test
		}
		return ca.gold < cb.gold
	})

	corr := make(Correspondence, len(tt.Concepts))
	for i := range corr {
		corr[i] = Unmatched
	}
	taken := make(map[int]bool)
	for _, c := range cands {
		if corr[c.test] != Unmatched || taken[c.gold] {
			continue
		}
		corr[c.test] = c.gold
		taken[c.gold] = true
	}

	return corr, Tally(test, gold, corr, model).F1(), nil
}

// support counts shared constant values and shared outgoing/incoming role
// names around a candidate pair.
func support(tt, gt *amr.Tables, i, j int) int {
	n := 0
	for key, roles := range tt.Attrs {
		if key.Node != i {
			continue
		}
		if gr, ok := gt.Attrs[amr.AttrKey{Node: j, Value: key.Value}]; ok {
			for r := range roles {
				if gr.Has(r) {
					n++
				}
			}
		}
	}
	out, in := roleCounts(tt, i), roleCounts(gt, j)
	for r, k := range out {
		n += min(k, in[r])
	}
	return n
}

func roleCounts(t *amr.Tables, node int) map[string]int {
	counts := make(map[string]int)
	for key, roles := range t.Rels {
		switch node {
		case key.From:
			for r := range roles {
				counts[">"+r]++
			}
		case key.To:
			for r := range roles {
				counts["<"+r]++
			}
		}
	}
	return counts
}
