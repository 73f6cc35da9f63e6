package align

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type labelPair struct{ test, gold string }

// EvidenceModel weighs labels through GIZA n-best token alignments of the
// test and gold sentences. It reads both streams in lockstep with the
// sentence pairs and keeps per-stream position state, so one model serves
// one comparison run.
type EvidenceModel struct {
	src2tgt *NBestReader // gold tokens as source, test tokens as target
	tgt2src *NBestReader

	weights map[labelPair]float64
	byTest  map[string][]string
}

func NewEvidenceModel(src2tgt, tgt2src *NBestReader) *EvidenceModel {
	return &EvidenceModel{
		src2tgt: src2tgt,
		tgt2src: tgt2src,
		weights: make(map[labelPair]float64),
		byTest:  make(map[string][]string),
	}
}

// SetPair consumes the next sentence from both n-best streams and rebuilds
// the label weight table. Streams that run out yield ErrEndOfAlignments.
func (m *EvidenceModel) SetPair(test, gold Sentence) error {
	m.weights = make(map[labelPair]float64)
	m.byTest = make(map[string][]string)

	fwd, err := m.src2tgt.Next()
	if err != nil {
		return fmt.Errorf("read %s: %w", m.src2tgt.name, err)
	}
	bwd, err := m.tgt2src.Next()
	if err != nil {
		return fmt.Errorf("read %s: %w", m.tgt2src.name, err)
	}

	testGold, err := tokenMatrix(len(test.Tokens), len(gold.Tokens), fwd, m.src2tgt.name)
	if err != nil {
		return err
	}
	goldTest, err := tokenMatrix(len(gold.Tokens), len(test.Tokens), bwd, m.tgt2src.name)
	if err != nil {
		return err
	}
	tok := unionMatrix(testGold, goldTest)

	testDist, err := sentenceDist(test)
	if err != nil {
		return fmt.Errorf("test side: %w", err)
	}
	goldDist, err := sentenceDist(gold)
	if err != nil {
		return fmt.Errorf("gold side: %w", err)
	}

	for _, tl := range testDist.labels {
		tw := testDist.dist[tl]
		for _, gl := range goldDist.labels {
			if strings.EqualFold(tl, gl) {
				m.set(tl, gl, identicalWeight)
				continue
			}
			gw := goldDist.dist[gl]
			var sum float64
			for t, tp := range tw {
				if tp == 0 {
					continue
				}
				for s, sp := range gw {
					sum += tp * sp * tok.At(t, s)
				}
			}
			if sum > 0 {
				m.set(tl, gl, sum)
			}
		}
	}
	return nil
}

func (m *EvidenceModel) set(test, gold string, w float64) {
	m.weights[labelPair{test, gold}] = w
	m.byTest[test] = append(m.byTest[test], gold)
}

func sentenceDist(s Sentence) (*labelDist, error) {
	if s.Graph == nil {
		return nil, errors.New("sentence has no graph")
	}
	if s.Spans != nil {
		return evidenceDist(s.Graph, s.Tokens, s.Spans)
	}
	return surfaceDist(s.Graph.Labels(), s.Tokens), nil
}

func (m *EvidenceModel) NodeWeight(testLabel, goldLabel string) float64 {
	if testLabel == "" || goldLabel == "" {
		return 0
	}
	if w, ok := m.weights[labelPair{testLabel, goldLabel}]; ok {
		return w
	}
	if strings.EqualFold(testLabel, goldLabel) {
		return identicalWeight
	}
	return 0
}

func (m *EvidenceModel) EdgeWeight(testRole, goldRole string) float64 {
	return RoleWeight(testRole, goldRole)
}

func (m *EvidenceModel) ConstantCandidates(value string) []string {
	out := []string{value}
	for _, g := range m.byTest[value] {
		if g != value {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return m.NodeWeight(value, out[i]) > m.NodeWeight(value, out[j])
	})
	return out
}

// Skip consumes the next sentence from both streams without building
// weights, keeping the streams in step with a skipped pair.
func (m *EvidenceModel) Skip() error {
	m.weights = make(map[labelPair]float64)
	m.byTest = make(map[string][]string)
	if _, err := m.src2tgt.Next(); err != nil {
		return fmt.Errorf("read %s: %w", m.src2tgt.name, err)
	}
	if _, err := m.tgt2src.Next(); err != nil {
		return fmt.Errorf("read %s: %w", m.tgt2src.name, err)
	}
	return nil
}
