package align

import (
	"fmt"
	"strconv"
	"strings"
)

// Span ties the half-open token range [Start, End) to the graph nodes at
// the listed structural paths.
type Span struct {
	Start int
	End   int
	Paths []string
}

// ParseSpans decodes "alignments" metadata such as "0-1|0.0 2-3|0+0.1".
func ParseSpans(raw string) ([]Span, error) {
	var spans []Span
	for _, chunk := range strings.Fields(raw) {
		rng, nodes, ok := strings.Cut(chunk, "|")
		if !ok || nodes == "" {
			return nil, spanError("malformed chunk %q", chunk)
		}
		lo, hi, ok := strings.Cut(rng, "-")
		if !ok {
			return nil, spanError("malformed range %q", rng)
		}
		start, err1 := strconv.Atoi(lo)
		end, err2 := strconv.Atoi(hi)
		if err1 != nil || err2 != nil || start < 0 || end <= start {
			return nil, spanError("invalid range %q", rng)
		}
		spans = append(spans, Span{Start: start, End: end, Paths: strings.Split(nodes, "+")})
	}
	return spans, nil
}

func spanError(format string, args ...any) error {
	return &FormatError{Source: "alignments", Sentence: -1, Msg: fmt.Sprintf(format, args...)}
}
