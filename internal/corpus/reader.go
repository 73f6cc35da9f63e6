package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"amrdiff/internal/amr"
)

// Block is one blank-line separated entry of an annotation file.
type Block struct {
	Index    int // 1-based
	Comments []string
	Text     string
}

// Reader streams annotation blocks. It keeps read position state and must
// not be shared between goroutines.
type Reader struct {
	sc           *bufio.Scanner
	blocks       int
	crossLingual bool
}

// NewReader reads annotations from r.
func NewReader(r io.Reader, crossLingual bool) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &Reader{sc: sc, crossLingual: crossLingual}
}

// NextBlock returns the next non-empty block, or io.EOF. Graph lines are
// trimmed and joined; a line opening a new graph discards earlier ones.
func (r *Reader) NextBlock() (*Block, error) {
	var (
		comments []string
		graph    []string
		content  bool
	)
	for r.sc.Scan() {
		line := r.sc.Text()
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(line, "(") && len(graph) > 0 {
			graph = graph[:0]
		}
		switch {
		case trimmed == "":
			if content {
				return r.emit(comments, graph), nil
			}
		case strings.HasPrefix(trimmed, "#"):
			comments = append(comments, trimmed)
		default:
			content = true
			graph = append(graph, trimmed)
		}
	}
	if err := r.sc.Err(); err != nil {
		return nil, err
	}
	if content {
		return r.emit(comments, graph), nil
	}
	return nil, io.EOF
}

func (r *Reader) emit(comments, graph []string) *Block {
	r.blocks++
	return &Block{Index: r.blocks, Comments: comments, Text: strings.Join(graph, " ")}
}

// Next parses the next block. The block is consumed even when parsing
// fails, so callers may skip it and continue.
func (r *Reader) Next() (*amr.Annotation, error) {
	b, err := r.NextBlock()
	if err != nil {
		return nil, err
	}
	a, err := amr.NewAnnotation(b.Text, b.Comments, r.crossLingual)
	if err != nil {
		return nil, fmt.Errorf("block %d: %w", b.Index, err)
	}
	a.Block = b.Index
	return a, nil
}

// Scan streams every annotation to onAnnotation. Parse failures go to
// onInvalid, which returns nil to skip the block or an error to stop.
func (r *Reader) Scan(onAnnotation func(*amr.Annotation) error, onInvalid func(error) error) error {
	for {
		a, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if errors.Is(err, amr.ErrParse) && onInvalid != nil {
				if err := onInvalid(err); err != nil {
					return err
				}
				continue
			}
			return err
		}
		if err := onAnnotation(a); err != nil {
			return err
		}
	}
}
