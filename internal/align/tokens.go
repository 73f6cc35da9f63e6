package align

import (
	"regexp"
	"strings"
)

var senseSuffix = regexp.MustCompile(`^(.+)-\d\d$`)

// labelDist maps each distinct label to a distribution over sentence tokens.
type labelDist struct {
	labels []string // distinct, first-occurrence order
	dist   map[string][]float64
}

func newLabelDist(labels []string, n int) *labelDist {
	d := &labelDist{dist: make(map[string][]float64)}
	for _, l := range labels {
		d.add(l, n)
	}
	return d
}

func (d *labelDist) add(label string, n int) []float64 {
	if w, ok := d.dist[label]; ok {
		return w
	}
	w := make([]float64, n)
	d.labels = append(d.labels, label)
	d.dist[label] = w
	return w
}

// surfaceDist aligns each label uniformly to the tokens equal (ignoring
// case) to the label or to one of its underscore-separated parts.
func surfaceDist(labels, toks []string) *labelDist {
	d := newLabelDist(labels, len(toks))
	for _, label := range d.labels {
		lower := strings.ToLower(label)
		forms := append(strings.Split(lower, "_"), lower)

		var hits []int
		for i, tok := range toks {
			for _, f := range forms {
				if f != "" && strings.ToLower(tok) == f {
					hits = append(hits, i)
					break
				}
			}
		}
		spread(d.dist[label], hits)
	}
	return d
}

// evidenceDist aligns labels using token spans; labels the spans do not
// fully account for fall back to stem matching over unclaimed tokens.
func evidenceDist(src LabelSource, toks []string, spans []Span) (*labelDist, error) {
	all := src.Labels()
	d := newLabelDist(all, len(toks))

	remaining := make(map[string]int)
	for _, l := range all {
		remaining[l]++
	}
	claimed := make([]bool, len(toks))

	for _, sp := range spans {
		if sp.End > len(toks) {
			return nil, spanError("span %d-%d beyond %d tokens", sp.Start, sp.End, len(toks))
		}
		share := 1 / float64(sp.End-sp.Start)
		for _, path := range sp.Paths {
			label, ok := src.LabelAt(path)
			if !ok {
				return nil, spanError("unknown node path %q", path)
			}
			w := d.add(label, len(toks))
			for t := sp.Start; t < sp.End; t++ {
				w[t] += share
			}
			remaining[label]--
		}
		for t := sp.Start; t < sp.End; t++ {
			claimed[t] = true
		}
	}

	var free []int
	for t, c := range claimed {
		if !c {
			free = append(free, t)
		}
	}
	for _, label := range d.labels {
		if remaining[label] <= 0 || len(free) == 0 {
			continue
		}
		stemFallback(d.dist[label], label, toks, free)
	}

	for _, w := range d.dist {
		normalize(w)
	}
	return d, nil
}

// stemFallback spreads one unit of mass over the free tokens that share a
// stem with label, or over all free tokens when none does.
func stemFallback(w []float64, label string, toks []string, free []int) {
	stem := strings.ToLower(label)
	if m := senseSuffix.FindStringSubmatch(stem); m != nil {
		stem = m[1]
	}
	switch {
	case len(stem) > 5:
		stem = stem[:len(stem)-2]
	case len(stem) > 4:
		stem = stem[:len(stem)-1]
	}

	var hits []int
	for _, t := range free {
		if strings.HasPrefix(strings.ToLower(toks[t]), stem) {
			hits = append(hits, t)
		}
	}
	if len(hits) == 0 {
		hits = free
	}
	share := 1 / float64(len(hits))
	for _, t := range hits {
		w[t] += share
	}
}

func spread(w []float64, hits []int) {
	if len(hits) == 0 {
		return
	}
	share := 1 / float64(len(hits))
	for _, i := range hits {
		w[i] += share
	}
}

func normalize(w []float64) {
	var sum float64
	for _, x := range w {
		sum += x
	}
	if sum == 0 {
		return
	}
	for i := range w {
		w[i] /= sum
	}
}
