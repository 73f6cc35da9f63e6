package align

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"amrdiff/internal/amr"
)

func TestRoleWeight(t *testing.T) {
	assert.Equal(t, 1.0, RoleWeight("ARG0", "arg0"))
	assert.Equal(t, 0.9, RoleWeight("op1", "op2"))
	assert.Equal(t, 0.9, RoleWeight("snt1", "snt3"))
	assert.Equal(t, 0.0, RoleWeight("op1", "snt1"))
	assert.Equal(t, 0.0, RoleWeight("ARG0", "ARG1"))
}

func TestDefaultModel_NoSharedSurfaceForms(t *testing.T) {
	var m DefaultModel
	test := Sentence{Tokens: []string{"the", "dog", "runs"}}
	gold := Sentence{Tokens: []string{"le", "chien", "court"}}
	require.NoError(t, m.SetPair(test, gold))

	for _, tl := range test.Tokens {
		for _, gl := range gold.Tokens {
			assert.Zero(t, m.NodeWeight(tl, gl), "%s/%s", tl, gl)
		}
	}
	assert.Equal(t, 1.0, m.NodeWeight("Dog", "dog"))
	assert.Zero(t, m.NodeWeight("", ""))
	assert.Equal(t, []string{"x"}, m.ConstantCandidates("x"))
}

func parsed(t *testing.T, text string) *amr.Graph {
	t.Helper()
	g, err := amr.Parse(text, false)
	require.NoError(t, err)
	return g
}

const diagonal = `# Sentence pair (1) source length 3 target length 3 alignment score : 1
le chien court
NULL ({ }) the ({ 1 }) dog ({ 2 }) runs ({ 3 })
`

func TestEvidenceModel_WeightsFromTokenAlignments(t *testing.T) {
	m := NewEvidenceModel(
		NewNBestReader(strings.NewReader(diagonal), "fwd", 1, 1),
		NewNBestReader(strings.NewReader(diagonal), "bwd", 1, 1),
	)

	spans, err := ParseSpans("2-3|0 1-2|0.0")
	require.NoError(t, err)
	test := Sentence{
		Tokens: []string{"the", "dog", "runs"},
		Graph:  parsed(t, "(r / run-01 :ARG0 (d / dog))"),
		Spans:  spans,
	}
	gold := Sentence{
		Tokens: []string{"le", "chien", "court"},
		Graph:  parsed(t, "(c / courir-01 :ARG0 (h / chien))"),
		Spans:  spans,
	}
	require.NoError(t, m.SetPair(test, gold))

	assert.InDelta(t, 1.0/3, m.NodeWeight("dog", "chien"), 1e-9)
	assert.InDelta(t, 1.0/3, m.NodeWeight("run-01", "courir-01"), 1e-9)
	assert.Zero(t, m.NodeWeight("dog", "courir-01"))
	assert.Equal(t, 1.0, m.NodeWeight("dog", "DOG"))
	assert.Equal(t, []string{"dog", "chien"}, m.ConstantCandidates("dog"))

	err = m.SetPair(test, gold)
	assert.ErrorIs(t, err, ErrEndOfAlignments)
}

// gold tokens are the source of the forward file and the target of the
// backward one
const forwardShifted = `# Sentence pair (1) source length 3 target length 2 alignment score : 1
big dog
NULL ({ }) le ({ }) gros ({ 1 }) chien ({ 2 })
`

const backwardShifted = `# Sentence pair (1) source length 2 target length 3 alignment score : 1
le gros chien
NULL ({ 1 }) big ({ 2 }) dog ({ 3 })
`

func TestEvidenceModel_UnevenLengthsOffDiagonal(t *testing.T) {
	m := NewEvidenceModel(
		NewNBestReader(strings.NewReader(forwardShifted), "fwd", 1, 1),
		NewNBestReader(strings.NewReader(backwardShifted), "bwd", 1, 1),
	)
	test := Sentence{
		Tokens: []string{"big", "dog"},
		Graph:  parsed(t, "(d / dog :mod (b / big))"),
	}
	gold := Sentence{
		Tokens: []string{"le", "gros", "chien"},
		Graph:  parsed(t, "(c / chien :mod (g / gros))"),
	}
	require.NoError(t, m.SetPair(test, gold))

	assert.InDelta(t, 0.5, m.NodeWeight("dog", "chien"), 1e-9)
	assert.InDelta(t, 0.5, m.NodeWeight("big", "gros"), 1e-9)
	assert.Zero(t, m.NodeWeight("dog", "gros"))
	assert.Zero(t, m.NodeWeight("big", "chien"))
}

func TestUnionMatrix_TransposesBackward(t *testing.T) {
	fwd, err := tokenMatrix(2, 3, []ScoredAlignment{{Score: 1, Links: []Link{{Source: 1, Target: 0}}}}, "fwd")
	require.NoError(t, err)
	bwd, err := tokenMatrix(3, 2, []ScoredAlignment{{Score: 3, Links: []Link{{Source: 1, Target: 2}}}}, "bwd")
	require.NoError(t, err)

	u := unionMatrix(fwd, bwd)
	r, c := u.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.InDelta(t, 0.5, u.At(0, 1), 1e-9)
	assert.InDelta(t, 0.5, u.At(1, 2), 1e-9)
	assert.InDelta(t, 1.0, mat.Sum(u), 1e-9)

	_, err = tokenMatrix(2, 3, []ScoredAlignment{{Score: 1, Links: []Link{{Source: 3, Target: 0}}}}, "fwd")
	assert.ErrorIs(t, err, ErrAlignmentFormat)

	empty, err := tokenMatrix(0, 3, nil, "fwd")
	require.NoError(t, err)
	assert.Nil(t, unionMatrix(empty, bwd))
}

func TestEvidenceModel_SurfaceDistWithoutSpans(t *testing.T) {
	m := NewEvidenceModel(
		NewNBestReader(strings.NewReader(diagonal), "fwd", 1, 1),
		NewNBestReader(strings.NewReader(diagonal), "bwd", 1, 1),
	)
	test := Sentence{Tokens: []string{"the", "dog", "runs"}, Graph: parsed(t, "(d / dog)")}
	gold := Sentence{Tokens: []string{"le", "chien", "court"}, Graph: parsed(t, "(h / chien)")}
	require.NoError(t, m.SetPair(test, gold))
	assert.InDelta(t, 1.0/3, m.NodeWeight("dog", "chien"), 1e-9)
}

func TestEvidenceDist_StemFallback(t *testing.T) {
	g := parsed(t, "(w / want-01 :ARG0 (b / boy))")
	spans, err := ParseSpans("1-2|0.0")
	require.NoError(t, err)

	d, err := evidenceDist(g, []string{"the", "boy", "wanted", "it"}, spans)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0, 0}, d.dist["boy"])
	assert.Equal(t, []float64{0, 0, 1, 0}, d.dist["want-01"])
}

func TestEvidenceDist_SpreadsOverFreeTokens(t *testing.T) {
	g := parsed(t, "(x / zebra :ARG0 (b / boy))")
	spans, err := ParseSpans("1-2|0.0")
	require.NoError(t, err)

	d, err := evidenceDist(g, []string{"a", "boy", "runs"}, spans)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0, 0.5}, d.dist["zebra"])
}

func TestEvidenceDist_Errors(t *testing.T) {
	g := parsed(t, "(b / boy)")
	_, err := evidenceDist(g, []string{"boy"}, []Span{{Start: 0, End: 1, Paths: []string{"0.3"}}})
	assert.ErrorIs(t, err, ErrAlignmentFormat)
	_, err = evidenceDist(g, []string{"boy"}, []Span{{Start: 0, End: 2, Paths: []string{"0"}}})
	assert.ErrorIs(t, err, ErrAlignmentFormat)
}

func TestParseSpans(t *testing.T) {
	spans, err := ParseSpans("0-2|0.1+0.1.0 3-4|0")
	require.NoError(t, err)
	assert.Equal(t, []Span{
		{Start: 0, End: 2, Paths: []string{"0.1", "0.1.0"}},
		{Start: 3, End: 4, Paths: []string{"0"}},
	}, spans)

	for _, bad := range []string{"0-2", "2-1|0", "a-b|0", "3|0"} {
		_, err := ParseSpans(bad)
		assert.ErrorIs(t, err, ErrAlignmentFormat, bad)
	}
}

func TestSurfaceDist_UnderscoreParts(t *testing.T) {
	d := surfaceDist([]string{"New_York"}, []string{"in", "new", "york"})
	assert.Equal(t, []float64{0, 0.5, 0.5}, d.dist["New_York"])
}

func TestEvidenceModel_SkipAdvancesStreams(t *testing.T) {
	two := diagonal + `# Sentence pair (2) source length 1 target length 1 alignment score : 1
chien
NULL ({ }) dog ({ 1 })
`
	m := NewEvidenceModel(
		NewNBestReader(strings.NewReader(two), "fwd", 1, 1),
		NewNBestReader(strings.NewReader(two), "bwd", 1, 1),
	)
	var _ Skipper = m
	require.NoError(t, m.Skip())

	test := Sentence{Tokens: []string{"dog"}, Graph: parsed(t, "(d / dog)")}
	gold := Sentence{Tokens: []string{"chien"}, Graph: parsed(t, "(c / chien)")}
	require.NoError(t, m.SetPair(test, gold))
	assert.InDelta(t, 1.0, m.NodeWeight("dog", "chien"), 1e-9)
}
