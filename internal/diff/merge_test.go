package diff

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amrdiff/internal/align"
	"amrdiff/internal/amr"
	"amrdiff/internal/match"
)

func parse(t *testing.T, s string) *amr.Graph {
	t.Helper()
	g, err := amr.Parse(s, false)
	require.NoError(t, err)
	return g
}

func edgeByLabel(g *Graph, from, to, label string) *Edge {
	for _, e := range g.Edges() {
		if e.F.Name == from && e.T.Name == to && e.Label == label {
			return e
		}
	}
	return nil
}

func TestMerge_AgreeingNode(t *testing.T) {
	g, report := Merge(parse(t, "(x / dog)"), parse(t, "(y / dog)"), match.Correspondence{0}, nil, Options{})

	require.Len(t, g.Nodes(), 1)
	n := g.Nodes()[0]
	assert.Equal(t, "dog", n.TestLabel)
	assert.Equal(t, "dog", n.GoldLabel)
	assert.Equal(t, Agree, n.Color)
	assert.Equal(t, []string{"0\tdog\t-\t0\tdog"}, report)

	// root identifiers differ but TOP still agrees
	require.Len(t, g.Edges(), 1)
	assert.Equal(t, Agree, g.Edges()[0].Color)
	assert.Equal(t, amr.TopRole, g.Edges()[0].Label)
}

func TestMerge_DisagreeingNode(t *testing.T) {
	g, _ := Merge(parse(t, "(x / cat)"), parse(t, "(y / dog)"), match.Correspondence{0}, nil, Options{})

	require.Len(t, g.Nodes(), 1)
	n := g.Nodes()[0]
	assert.Equal(t, "cat", n.TestLabel)
	assert.Equal(t, "dog", n.GoldLabel)
	assert.Equal(t, Disagree, n.Color)
	assert.Equal(t, "cat (dog)", n.Label)
}

func TestMerge_IdenticalGraphsHaveNoOneSidedElements(t *testing.T) {
	inputs := []string{
		"(a / want-01 :ARG0 (b / boy) :ARG1 (c / go-01 :ARG0 b))",
		`(c / city :name (n / name :op1 "New York" :op2 "City") :polarity -)`,
		`(a / and :op1 (p / person :name (n / name :op1 "Ann")) :op2 (q / person :name (m / name :op1 "Ann")))`,
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			g := parse(t, in)
			out, report := Merge(g, g, match.Identity(len(g.Nodes)), nil, Options{})
			tally := out.Tally()
			assert.Zero(t, tally.Nodes[TestOnly]+tally.Nodes[GoldOnly])
			assert.Zero(t, tally.Edges[TestOnly]+tally.Edges[GoldOnly])
			assert.Zero(t, tally.Nodes[Disagree]+tally.Edges[Disagree])
			assert.Len(t, report, len(g.Nodes))
		})
	}
}

func TestMerge_UnmatchedNodesAndResidualGold(t *testing.T) {
	test := parse(t, "(w / want-01 :ARG0 (b / boy))")
	gold := parse(t, "(w / want-01 :ARG0 (g / girl) :ARG1 (b / boy))")
	out, report := Merge(test, gold, match.Correspondence{0, 2}, nil, Options{})

	assert.Equal(t, []string{
		"0\twant-01\t-\t0\twant-01",
		"1\tboy\t-\t2\tboy",
		"-1\t\t-\t1\tgirl",
	}, report)

	girl := out.Node("GOLD 1")
	require.NotNil(t, girl)
	assert.Equal(t, GoldOnly, girl.Color)
	assert.Equal(t, "* / girl", girl.Label)

	// test ARG0 w->b lands on gold ARG1, so it is test-only
	assert.Equal(t, TestOnly, edgeByLabel(out, "w", "b", "ARG0").Color)
	assert.Equal(t, GoldOnly, edgeByLabel(out, "w", "b", "ARG1").Color)
	assert.Equal(t, GoldOnly, edgeByLabel(out, "w", "GOLD 1", "ARG0").Color)
}

func TestMerge_TestOnlyNodeAndConstant(t *testing.T) {
	test := parse(t, `(w / want-01 :ARG0 (b / boy) :polarity -)`)
	gold := parse(t, "(w / want-01)")
	out, report := Merge(test, gold, match.Correspondence{0, match.Unmatched}, nil, Options{})

	boy := out.Node("b")
	require.NotNil(t, boy)
	assert.Equal(t, TestOnly, boy.Color)
	assert.Equal(t, "boy / *", boy.Label)

	neg := out.Node("w -")
	require.NotNil(t, neg)
	assert.Equal(t, TestOnly, neg.Color)
	assert.Equal(t, TestOnly, edgeByLabel(out, "w", "w -", "polarity").Color)
	assert.Len(t, report, 2)
}

func TestMerge_RootMappedElsewhere(t *testing.T) {
	test := parse(t, "(b / boy :ARG0-of (w / want-01))")
	gold := parse(t, "(w / want-01 :ARG0 (b / boy))")
	out, _ := Merge(test, gold, match.Correspondence{1, 0}, nil, Options{})

	assert.Equal(t, TestOnly, edgeByLabel(out, "b", "b", amr.TopRole).Color)
	assert.Equal(t, GoldOnly, edgeByLabel(out, "w", "w", amr.TopRole).Color)
	assert.Equal(t, Agree, edgeByLabel(out, "w", "b", "ARG0").Color)
}

func TestMerge_ConstantRoleMismatchRelinks(t *testing.T) {
	test := parse(t, `(n / name :op2 "Ann")`)
	gold := parse(t, `(n / name :op1 "Ann")`)
	out, _ := Merge(test, gold, match.Identity(1), nil, Options{})

	c := out.Node("n Ann")
	require.NotNil(t, c)
	assert.Equal(t, Agree, c.Color)
	assert.Equal(t, TestOnly, edgeByLabel(out, "n", "n Ann", "op2").Color)
	assert.Equal(t, GoldOnly, edgeByLabel(out, "n", "n Ann", "op1").Color)
	assert.Len(t, out.Nodes(), 2)
}

func TestMerge_ResidualConstantReusesNode(t *testing.T) {
	test := parse(t, `(n / name :op1 "Ann")`)
	gold := parse(t, `(n / name :op1 "Ann" :op2 "Ann")`)
	out, _ := Merge(test, gold, match.Identity(1), nil, Options{})

	assert.Len(t, out.Nodes(), 2)
	assert.Equal(t, Agree, edgeByLabel(out, "n", "n Ann", "op1").Color)
	assert.Equal(t, GoldOnly, edgeByLabel(out, "n", "n Ann", "op2").Color)
}

func TestMerge_GoldOnlyConstantOnPlaceholder(t *testing.T) {
	test := parse(t, "(w / want-01)")
	gold := parse(t, `(w / want-01 :ARG0 (p / person :name (n / name :op1 "Ann")))`)
	out, _ := Merge(test, gold, match.Identity(1), nil, Options{})

	c := out.Node("GOLD 2 Ann")
	require.NotNil(t, c)
	assert.Equal(t, GoldOnly, c.Color)
	assert.Equal(t, GoldOnly, edgeByLabel(out, "GOLD 2", "GOLD 2 Ann", "op1").Color)
	assert.Equal(t, GoldOnly, edgeByLabel(out, "GOLD 1", "GOLD 2", "name").Color)
}

type constModel struct {
	align.DefaultModel
	candidates map[string][]string
}

func (m constModel) ConstantCandidates(v string) []string {
	if c, ok := m.candidates[v]; ok {
		return c
	}
	return []string{v}
}

func TestMerge_ConstantCandidatesFirstFit(t *testing.T) {
	test := parse(t, `(n / name :op1 "Bob")`)
	gold := parse(t, `(n / name :op1 "Robert" :op2 "Rob")`)
	model := constModel{candidates: map[string][]string{"Bob": {"Bob", "Rob", "Robert"}}}
	out, _ := Merge(test, gold, match.Identity(1), model, Options{})

	c := out.Node("n Bob")
	require.NotNil(t, c)
	assert.Equal(t, "Rob", c.GoldLabel)
	assert.Equal(t, "Bob (Rob)", c.Label)
	// "Rob" hangs off op2 in gold, so the op1 edge moves to the relinked pool
	assert.Equal(t, TestOnly, edgeByLabel(out, "n", "n Bob", "op1").Color)
	assert.Equal(t, GoldOnly, edgeByLabel(out, "n", "n Bob", "op2").Color)
	assert.Equal(t, GoldOnly, edgeByLabel(out, "n", "n Robert", "op1").Color)
}

func TestMerge_UnmatchDeadNodes(t *testing.T) {
	test := parse(t, "(w / want-01 :ARG0 (c / cat))")
	gold := parse(t, "(w / want-01 :ARG1 (d / dog))")

	kept, _ := Merge(test, gold, match.Identity(2), nil, Options{})
	assert.Equal(t, Disagree, kept.Node("c").Color)

	out, report := Merge(test, gold, match.Identity(2), nil, Options{UnmatchDeadNodes: true})
	c := out.Node("c")
	assert.Equal(t, TestOnly, c.Color)
	assert.Equal(t, match.Unmatched, c.GoldIndex)
	assert.Equal(t, "cat / *", c.Label)

	dog := out.Node("GOLD 1")
	require.NotNil(t, dog)
	assert.Equal(t, GoldOnly, edgeByLabel(out, "w", "GOLD 1", "ARG1").Color)
	assert.Contains(t, report, "1\tcat\t-\t-1\t")
	assert.Contains(t, report, "-1\t\t-\t1\tdog")

	// the root keeps its match through the agreeing TOP loop
	assert.Equal(t, Agree, out.Node("w").Color)
}

func TestMerge_ParallelEdgesKeepNodesLive(t *testing.T) {
	test := parse(t, "(w / want-01 :ARG0 (c / cat) :ARG1 c)")
	gold := parse(t, "(w / want-01 :ARG2 (d / dog))")
	out, _ := Merge(test, gold, match.Identity(2), nil, Options{UnmatchDeadNodes: true})
	assert.Equal(t, Disagree, out.Node("c").Color)
}

func TestMerge_ContractViolationPanics(t *testing.T) {
	test := parse(t, "(a / b :ARG0 (c / d))")
	gold := parse(t, "(x / y)")

	for _, corr := range []match.Correspondence{{0}, {0, 5}} {
		func() {
			defer func() {
				r := recover()
				require.NotNil(t, r)
				err, ok := r.(error)
				require.True(t, ok)
				var cv *match.ContractViolation
				assert.True(t, errors.As(err, &cv))
			}()
			Merge(test, gold, corr, nil, Options{})
		}()
	}
}

func TestMerge_CrossLingualConstantsAlignAsNodes(t *testing.T) {
	test, err := amr.Parse(`(p / person :name (n / name :op1 "Ann"))`, true)
	require.NoError(t, err)
	gold, err := amr.Parse(`(p / person :name (n / name :op1 "Ann"))`, true)
	require.NoError(t, err)

	out, _ := Merge(test, gold, match.Identity(len(test.Nodes)), nil, Options{})
	tally := out.Tally()
	assert.Equal(t, 3, tally.Nodes[Agree])
	assert.Zero(t, tally.Edges[TestOnly]+tally.Edges[GoldOnly])
}
