package align

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var metaLine = regexp.MustCompile(`^# Sentence pair \((\d+)\) source length (\d+) target length (\d+) alignment score : (.+)$`)

// Link connects a source token to a target token (0-based).
type Link struct {
	Source int
	Target int
}

// ScoredAlignment is one n-best GIZA alignment of a sentence pair.
type ScoredAlignment struct {
	Sentence     int
	Score        float64
	SourceTokens []string
	TargetTokens []string
	Links        []Link
}

// ParseSentenceAlignment decodes the two token lines of an A3 record. The
// source line reads "NULL ({ 3 }) the ({ 1 }) dog ({ 2 })" with 1-based
// target positions; links from NULL are dropped.
func ParseSentenceAlignment(sourceLine, targetLine string) ([]string, []string, []Link, error) {
	target := strings.Fields(targetLine)

	var (
		source  []string
		links   []Link
		inGroup bool
		srcPos  = -1
	)
	for _, word := range strings.Fields(sourceLine) {
		switch {
		case word == "({":
			inGroup = true
		case word == "})":
			inGroup = false
		case inGroup:
			t, err := strconv.Atoi(word)
			if err != nil || t < 1 {
				return nil, nil, nil, errors.New("invalid target position " + strconv.Quote(word))
			}
			if srcPos >= 0 {
				links = append(links, Link{Source: srcPos, Target: t - 1})
			}
		case word == "NULL" && len(source) == 0 && srcPos < 0:
			// the empty word is not a source token
		default:
			source = append(source, word)
			srcPos = len(source) - 1
		}
	}
	if inGroup {
		return nil, nil, nil, errors.New("unterminated alignment group")
	}
	return source, target, links, nil
}

// NBestReader reads a GIZA A3 n-best file one sentence at a time. It keeps
// read position state and must not be shared between goroutines.
type NBestReader struct {
	name    string
	r       *bufio.Reader
	line    int
	numBest int
	inFile  int
	carry   *ScoredAlignment
}

// NewNBestReader wraps r. numBest alignments are kept per sentence; up to
// numBestInFile records per sentence are consumed (values below numBest
// mean numBest).
func NewNBestReader(r io.Reader, name string, numBest, numBestInFile int) *NBestReader {
	if numBestInFile < numBest {
		numBestInFile = numBest
	}
	return &NBestReader{
		name:    name,
		r:       bufio.NewReader(r),
		numBest: numBest,
		inFile:  numBestInFile,
	}
}

// Next returns the alignments of the next sentence. A record for a new
// sentence index ends the current group early and is kept for the next
// call. ErrEndOfAlignments is returned once the stream is exhausted.
func (n *NBestReader) Next() ([]ScoredAlignment, error) {
	var aligns []ScoredAlignment
	current := -1
	start := 0

	if n.carry != nil {
		if n.numBest > 0 {
			aligns = append(aligns, *n.carry)
		}
		current = n.carry.Sentence
		n.carry = nil
		start = 1
	}

	for i := start; i < n.inFile; i++ {
		rec, err := n.readRecord()
		if errors.Is(err, io.EOF) {
			if current < 0 {
				return nil, ErrEndOfAlignments
			}
			break
		}
		if err != nil {
			return nil, err
		}

		if current < 0 {
			current = rec.Sentence
		}
		if rec.Sentence != current {
			n.carry = rec
			break
		}
		if i < n.numBest {
			aligns = append(aligns, *rec)
		}
	}
	return aligns, nil
}

func (n *NBestReader) readRecord() (*ScoredAlignment, error) {
	meta, err := n.readLine()
	if err != nil {
		return nil, err
	}
	m := metaLine.FindStringSubmatch(strings.TrimSpace(meta))
	if m == nil {
		return nil, n.errorf(-1, "expected sentence pair header, got %q", meta)
	}
	sent, _ := strconv.Atoi(m[1])
	score, err := strconv.ParseFloat(strings.TrimSpace(m[4]), 64)
	if err != nil || score < 0 {
		return nil, n.errorf(sent, "invalid alignment score %q", m[4])
	}

	targetLine, err := n.readLine()
	if err != nil {
		return nil, n.errorf(sent, "truncated record")
	}
	sourceLine, err := n.readLine()
	if err != nil {
		return nil, n.errorf(sent, "truncated record")
	}

	src, tgt, links, err := ParseSentenceAlignment(sourceLine, targetLine)
	if err != nil {
		return nil, n.errorf(sent, "%v", err)
	}
	for _, l := range links {
		if l.Target >= len(tgt) {
			return nil, n.errorf(sent, "target position %d beyond %d tokens", l.Target+1, len(tgt))
		}
	}
	return &ScoredAlignment{
		Sentence:     sent,
		Score:        score,
		SourceTokens: src,
		TargetTokens: tgt,
		Links:        links,
	}, nil
}

func (n *NBestReader) readLine() (string, error) {
	line, err := n.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	n.line++
	return strings.TrimRight(line, "\r\n"), nil
}

func (n *NBestReader) errorf(sentence int, format string, args ...any) error {
	return &FormatError{Source: n.name, Line: n.line, Sentence: sentence, Msg: fmt.Sprintf(format, args...)}
}
