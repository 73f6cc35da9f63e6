package align

import (
	"regexp"
	"strings"

	"amrdiff/internal/amr"
)

const (
	identicalWeight  = 1.0
	enumeratedWeight = 0.9
)

// enumeratedRole matches roles that differ only by position, e.g. op1/op2.
var enumeratedRole = regexp.MustCompile(`^(op|snt)\d+$`)

// LabelWeightModel scores how well test labels correspond to gold labels.
type LabelWeightModel interface {
	NodeWeight(testLabel, goldLabel string) float64
	EdgeWeight(testRole, goldRole string) float64
	// ConstantCandidates returns gold values worth trying for a test
	// constant, the value itself first, ordered by decreasing weight.
	ConstantCandidates(value string) []string
}

// PairAligner is a LabelWeightModel whose weights depend on the sentence
// pair being compared.
type PairAligner interface {
	LabelWeightModel
	SetPair(test, gold Sentence) error
}

// Skipper is implemented by aligners that read per-pair input streams and
// must advance past pairs that are not compared.
type Skipper interface {
	Skip() error
}

// LabelSource exposes the labels of a graph and their structural paths.
type LabelSource interface {
	Labels() []string
	LabelAt(path string) (string, bool)
}

// Sentence is one side of a compared pair.
type Sentence struct {
	Tokens []string
	Graph  LabelSource
	// Spans holds token-to-node evidence; nil when the annotation has none.
	Spans []Span
}

// SentenceFrom builds a Sentence from an annotation, reading the "tok" or
// "snt" tokens and the optional "alignments" evidence.
func SentenceFrom(a *amr.Annotation) (Sentence, error) {
	toks, err := a.Tokens()
	if err != nil {
		return Sentence{}, err
	}
	s := Sentence{Tokens: toks, Graph: a.Graph}
	if raw, ok := a.Get(amr.KeyAlignments); ok {
		spans, err := ParseSpans(raw)
		if err != nil {
			return Sentence{}, err
		}
		s.Spans = spans
	}
	return s, nil
}

// RoleWeight scores two role names: 1 when equal ignoring case, 0.9 when
// both are enumerated roles of the same family, 0 otherwise.
func RoleWeight(testRole, goldRole string) float64 {
	t, g := strings.ToLower(testRole), strings.ToLower(goldRole)
	if t == g {
		return identicalWeight
	}
	mt := enumeratedRole.FindStringSubmatch(t)
	mg := enumeratedRole.FindStringSubmatch(g)
	if mt != nil && mg != nil && mt[1] == mg[1] {
		return enumeratedWeight
	}
	return 0
}

// DefaultModel compares labels by case-insensitive equality.
type DefaultModel struct{}

func (DefaultModel) SetPair(_, _ Sentence) error { return nil }

func (DefaultModel) NodeWeight(testLabel, goldLabel string) float64 {
	if testLabel == "" || goldLabel == "" {
		return 0
	}
	if strings.EqualFold(testLabel, goldLabel) {
		return identicalWeight
	}
	return 0
}

func (DefaultModel) EdgeWeight(testRole, goldRole string) float64 {
	return RoleWeight(testRole, goldRole)
}

func (DefaultModel) ConstantCandidates(value string) []string {
	return []string{value}
}
