package amr

import (
	"strings"
	"unicode"
)

// Metadata keys used by callers.
const (
	KeyID         = "id"
	KeyTokens     = "tok"
	KeySentence   = "snt"
	KeyAnnotator  = "annotator"
	KeyAlignments = "alignments"
)

// Annotation is one graph together with the "::key value" pairs of its
// comment lines.
type Annotation struct {
	Block    int // 1-based position in the source, 0 if unknown
	Metadata map[string]string
	Comments []string
	Text     string
	Graph    *Graph
}

// NewAnnotation parses the graph text and comment lines of one block.
func NewAnnotation(text string, comments []string, crossLingual bool) (*Annotation, error) {
	g, err := Parse(text, crossLingual)
	if err != nil {
		return nil, err
	}
	return &Annotation{
		Metadata: ParseMetadata(comments),
		Comments: comments,
		Text:     text,
		Graph:    g,
	}, nil
}

// ParseMetadata collects "::key value" pairs. A value runs until the next
// "::" or the end of the line.
func ParseMetadata(comments []string) map[string]string {
	meta := make(map[string]string)
	for _, line := range comments {
		segments := strings.Split(line, "::")
		for _, seg := range segments[1:] {
			end := strings.IndexFunc(seg, unicode.IsSpace)
			if end <= 0 {
				continue
			}
			value := strings.TrimSpace(seg[end:])
			if value == "" {
				continue
			}
			meta[seg[:end]] = value
		}
	}
	return meta
}

// Get returns a metadata value.
func (a *Annotation) Get(key string) (string, bool) {
	v, ok := a.Metadata[key]
	return v, ok
}

// Require returns a metadata value or a MissingMetadataError.
func (a *Annotation) Require(key string) (string, error) {
	v, ok := a.Metadata[key]
	if !ok {
		return "", &MissingMetadataError{Key: key, Block: a.Block}
	}
	return v, nil
}

// ID returns the sentence id that groups annotations of one sentence.
func (a *Annotation) ID() (string, error) {
	return a.Require(KeyID)
}

// Annotator returns the annotator name, or "" when absent.
func (a *Annotation) Annotator() string {
	return a.Metadata[KeyAnnotator]
}

// Tokens returns the whitespace-tokenized sentence, preferring "tok" over "snt".
func (a *Annotation) Tokens() ([]string, error) {
	if v, ok := a.Metadata[KeyTokens]; ok {
		return strings.Fields(v), nil
	}
	if v, ok := a.Metadata[KeySentence]; ok {
		return strings.Fields(v), nil
	}
	return nil, &MissingMetadataError{Key: KeyTokens, Block: a.Block}
}
