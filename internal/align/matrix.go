package align

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// tokenMatrix accumulates alignment scores at (target, source), then
// scales the whole matrix to unit mass. It returns nil when either
// sentence has no tokens.
func tokenMatrix(rows, cols int, aligns []ScoredAlignment, name string) (*mat.Dense, error) {
	for _, a := range aligns {
		for _, l := range a.Links {
			if l.Target >= rows || l.Source >= cols {
				return nil, &FormatError{
					Source:   name,
					Sentence: a.Sentence,
					Msg:      fmt.Sprintf("link %d-%d outside %dx%d token grid", l.Source, l.Target, cols, rows),
				}
			}
		}
	}
	if rows == 0 || cols == 0 {
		return nil, nil
	}

	m := mat.NewDense(rows, cols, nil)
	for _, a := range aligns {
		for _, l := range a.Links {
			m.Set(l.Target, l.Source, m.At(l.Target, l.Source)+a.Score)
		}
	}
	if total := mat.Sum(m); total > 0 {
		m.Scale(1/total, m)
	}
	return m, nil
}

// unionMatrix averages a test-by-gold matrix with the transpose of a
// gold-by-test one.
func unionMatrix(testGold, goldTest *mat.Dense) *mat.Dense {
	if testGold == nil || goldTest == nil {
		return nil
	}
	var out mat.Dense
	out.Add(testGold, goldTest.T())
	out.Scale(0.5, &out)
	return &out
}
