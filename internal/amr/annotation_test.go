package amr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetadata(t *testing.T) {
	meta := ParseMetadata([]string{
		"# ::id s1.2 ::annotator bob ::date 2014-01-01",
		"# ::snt The boy wants: to go",
		"# ::alignments 0-1|0 1-2|0.0",
		"# plain comment",
	})

	assert.Equal(t, "s1.2", meta["id"])
	assert.Equal(t, "bob", meta["annotator"])
	assert.Equal(t, "2014-01-01", meta["date"])
	assert.Equal(t, "The boy wants: to go", meta["snt"])
	assert.Equal(t, "0-1|0 1-2|0.0", meta["alignments"])
	assert.Len(t, meta, 5)
}

func TestAnnotation_Tokens(t *testing.T) {
	a, err := NewAnnotation("(d / dog)", []string{"# ::snt the dog ::tok the dog ."}, false)
	require.NoError(t, err)

	toks, err := a.Tokens()
	require.NoError(t, err)
	assert.Equal(t, []string{"the", "dog", "."}, toks)

	delete(a.Metadata, "tok")
	toks, err = a.Tokens()
	require.NoError(t, err)
	assert.Equal(t, []string{"the", "dog"}, toks)
}

func TestAnnotation_MissingID(t *testing.T) {
	a, err := NewAnnotation("(d / dog)", nil, false)
	require.NoError(t, err)
	a.Block = 3

	_, err = a.ID()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingMetadata))

	var me *MissingMetadataError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "id", me.Key)
	assert.Equal(t, 3, me.Block)
}
