package stats

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"amrdiff/internal/diff"
)

const totalEdges = "total_edges"

// Analyzer accumulates edge disagreement counts over merged graphs.
type Analyzer struct {
	counts map[string]int
}

// NewAnalyzer creates an empty analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{counts: make(map[string]int)}
}

// side groups colors by which annotation an element comes from; agreeing
// and disagreeing elements both come from the two sides.
func side(c diff.Color) diff.Color {
	if c == diff.Disagree {
		return diff.Agree
	}
	return c
}

func prefixOf(e *diff.Edge) string {
	switch {
	case e.GoldLabel == "":
		return "test"
	case e.TestLabel == "":
		return "gold"
	default:
		return "dflt"
	}
}

func isDefault(e *diff.Edge) bool { return e.GoldLabel == e.TestLabel }

// Add counts every edge of g.
func (a *Analyzer) Add(g *diff.Graph) {
	for _, e := range g.Edges() {
		a.addEdge(g, e)
	}
}

func (a *Analyzer) addEdge(g *diff.Graph, e *diff.Edge) {
	prefix := prefixOf(e)
	incr := func(name string) {
		a.counts["total_"+name]++
		a.counts[prefix+"_"+name]++
	}
	same := func(o *diff.Edge) bool { return side(o.Color) == side(e.Color) }
	opposite := func(o *diff.Edge) bool { return !same(o) && !isDefault(o) }

	incr("edges")
	if e.Label == "polarity" {
		incr("polarity")
	}
	if strings.HasPrefix(e.Label, "op") && len(e.Label) == 3 {
		incr("name_opt")
		return
	}
	if side(e.T.Color) == side(e.Color) {
		incr("same_color_head")
	}
	if side(e.F.Color) == side(e.Color) {
		incr("same_color_tail")
	}
	if prefix == "dflt" {
		return
	}

	out := g.From(e.F)
	for _, cur := range out {
		if same(cur) {
			continue
		}
		if cur.T == e.T {
			if opposite(cur) {
				incr("cfg1")
			}
			continue
		}
		for _, par := range out {
			if par.T == e.T && opposite(par) {
				if isDefault(cur) {
					incr("cfg2")
				} else {
					incr("cfg3")
				}
			}
		}
	}
	for _, back := range g.From(e.T) {
		if back.T == e.F && opposite(back) {
			incr("cfg1_reverse")
		}
	}
}

// Counts returns a copy of the raw counters.
func (a *Analyzer) Counts() map[string]int {
	out := make(map[string]int, len(a.counts))
	for k, v := range a.counts {
		out[k] = v
	}
	return out
}

// Proportions divides every counter by the total edge count.
func (a *Analyzer) Proportions() map[string]float64 {
	total := a.counts[totalEdges]
	out := make(map[string]float64, len(a.counts))
	if total == 0 {
		return out
	}
	for k, v := range a.counts {
		if k == totalEdges {
			continue
		}
		out[k] = float64(v) / float64(total)
	}
	return out
}

// WriteTo prints counts, a separator, then proportions, keys sorted.
func (a *Analyzer) WriteTo(w io.Writer) (int64, error) {
	keys := make([]string, 0, len(a.counts))
	for k := range a.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s: %d\n", k, a.counts[k])
	}
	sb.WriteString("=======\n")
	props := a.Proportions()
	for _, k := range keys {
		if k == totalEdges {
			continue
		}
		fmt.Fprintf(&sb, "%s: %f\n", k, props[k])
	}
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}
