package corpus

import (
	"errors"
	"fmt"
	"io"

	"amrdiff/internal/amr"
)

// ErrUneven reports test and gold files with different block counts.
var ErrUneven = errors.New("test and gold corpora differ in length")

// Pair is one test annotation compared against a gold annotation. Either
// side is nil when its block failed to parse; Err then holds the cause.
type Pair struct {
	Index int
	Test  *amr.Annotation
	Gold  *amr.Annotation
	Err   error
}

// SentenceID returns the id of the gold side, then the test side, or the
// pair position when neither carries one.
func (p Pair) SentenceID() string {
	for _, a := range []*amr.Annotation{p.Gold, p.Test} {
		if a == nil {
			continue
		}
		if id, err := a.ID(); err == nil {
			return id
		}
	}
	return fmt.Sprintf("%d", p.Index)
}

// Lockstep reads test and gold blocks in parallel and passes each pair to
// fn. Parse failures are reported on the pair instead of stopping.
func Lockstep(test, gold *Reader, fn func(Pair) error) error {
	for i := 1; ; i++ {
		t, terr := test.Next()
		g, gerr := gold.Next()

		tEOF, gEOF := errors.Is(terr, io.EOF), errors.Is(gerr, io.EOF)
		switch {
		case tEOF && gEOF:
			return nil
		case tEOF || gEOF:
			return fmt.Errorf("%w: pair %d", ErrUneven, i)
		}
		if fatal(terr) {
			return terr
		}
		if fatal(gerr) {
			return gerr
		}

		if err := fn(Pair{Index: i, Test: t, Gold: g, Err: errors.Join(terr, gerr)}); err != nil {
			return err
		}
	}
}

func fatal(err error) bool {
	return err != nil && !errors.Is(err, amr.ErrParse)
}

// Groups passes runs of consecutive annotations sharing an id to fn.
// Annotations without an id, or that fail to parse, go to onInvalid.
func Groups(r *Reader, fn func(id string, group []*amr.Annotation) error, onInvalid func(error) error) error {
	var (
		cur   string
		group []*amr.Annotation
	)
	flush := func() error {
		if len(group) == 0 {
			return nil
		}
		err := fn(cur, group)
		group = nil
		return err
	}

	err := r.Scan(func(a *amr.Annotation) error {
		id, err := a.ID()
		if err != nil {
			if onInvalid != nil {
				return onInvalid(err)
			}
			return err
		}
		if id != cur {
			if err := flush(); err != nil {
				return err
			}
			cur = id
		}
		group = append(group, a)
		return nil
	}, onInvalid)
	if err != nil {
		return err
	}
	return flush()
}

// InterAnnotator pairs every annotation of a group against the first one.
func InterAnnotator(group []*amr.Annotation) []Pair {
	if len(group) < 2 {
		return nil
	}
	pairs := make([]Pair, 0, len(group)-1)
	for i, a := range group[1:] {
		pairs = append(pairs, Pair{Index: i + 1, Test: a, Gold: group[0]})
	}
	return pairs
}
