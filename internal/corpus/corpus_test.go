package corpus

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amrdiff/internal/amr"
)

const sample = `

# ::id s1 ::annotator ann1
# ::snt The boy wants to go
(w / want-01
   :ARG0 (b / boy)
   :ARG1 (g / go-01 :ARG0 b))

# ::id s1 ::annotator ann2
(w / want-01 :ARG0 (b / boy))
# ::id s2 ::annotator ann1
(d / dog)



# ::id s2 ::annotator ann2
(c / cat)
`

func TestReader_NextBlock(t *testing.T) {
	r := NewReader(strings.NewReader(sample), false)

	b, err := r.NextBlock()
	require.NoError(t, err)
	assert.Equal(t, 1, b.Index)
	assert.Equal(t, []string{"# ::id s1 ::annotator ann1", "# ::snt The boy wants to go"}, b.Comments)
	assert.Equal(t, "(w / want-01 :ARG0 (b / boy) :ARG1 (g / go-01 :ARG0 b))", b.Text)

	// no blank line between the second and third entries: the later graph wins
	b, err = r.NextBlock()
	require.NoError(t, err)
	assert.Equal(t, "(d / dog)", b.Text)
	assert.Len(t, b.Comments, 2)

	b, err = r.NextBlock()
	require.NoError(t, err)
	assert.Equal(t, "(c / cat)", b.Text)

	_, err = r.NextBlock()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReader_NextParsesMetadata(t *testing.T) {
	r := NewReader(strings.NewReader(sample), false)
	a, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, a.Block)
	assert.Equal(t, "ann1", a.Annotator())
	toks, err := a.Tokens()
	require.NoError(t, err)
	assert.Equal(t, []string{"The", "boy", "wants", "to", "go"}, toks)
	assert.Len(t, a.Graph.Nodes, 3)
}

func TestGroups(t *testing.T) {
	input := `# ::id a
(x / one)

# ::id a
(y / two)

(z / no-id)

# ::id b
(x / three

# ::id b
(y / four)
`
	var ids []string
	var sizes []int
	var invalid []error
	err := Groups(NewReader(strings.NewReader(input), false), func(id string, g []*amr.Annotation) error {
		ids = append(ids, id)
		sizes = append(sizes, len(g))
		return nil
	}, func(err error) error {
		invalid = append(invalid, err)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.Equal(t, []int{2, 1}, sizes)
	require.Len(t, invalid, 2)
	assert.True(t, errors.Is(invalid[0], amr.ErrMissingMetadata))
	assert.True(t, errors.Is(invalid[1], amr.ErrParse))
}

func TestGroups_StopsWithoutHandler(t *testing.T) {
	err := Groups(NewReader(strings.NewReader("(x / no-id)\n"), false), func(string, []*amr.Annotation) error {
		return nil
	}, nil)
	assert.ErrorIs(t, err, amr.ErrMissingMetadata)
}

func TestInterAnnotator(t *testing.T) {
	var pairs []Pair
	require.NoError(t, Groups(NewReader(strings.NewReader(sample), false), func(_ string, g []*amr.Annotation) error {
		pairs = append(pairs, InterAnnotator(g)...)
		return nil
	}, nil))

	require.Len(t, pairs, 1)
	assert.Equal(t, "ann1", pairs[0].Gold.Annotator())
	assert.Equal(t, "ann2", pairs[0].Test.Annotator())
	assert.Equal(t, "s2", pairs[0].SentenceID())
}

func TestLockstep(t *testing.T) {
	gold := "# ::id s1\n(a / dog)\n\n# ::id s2\n(b / cat)\n"
	test := "(x / dog)\n\n(y / cat\n"

	var pairs []Pair
	err := Lockstep(NewReader(strings.NewReader(test), false), NewReader(strings.NewReader(gold), false), func(p Pair) error {
		pairs = append(pairs, p)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.NoError(t, pairs[0].Err)
	assert.Equal(t, "s1", pairs[0].SentenceID())
	assert.ErrorIs(t, pairs[1].Err, amr.ErrParse)
	assert.Nil(t, pairs[1].Test)
	assert.Equal(t, "s2", pairs[1].SentenceID())

	err = Lockstep(NewReader(strings.NewReader(test), false), NewReader(strings.NewReader("(a / dog)\n"), false), func(Pair) error { return nil })
	assert.ErrorIs(t, err, ErrUneven)
}
