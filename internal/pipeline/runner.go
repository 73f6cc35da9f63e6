package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"amrdiff/internal/align"
	"amrdiff/internal/amr"
	"amrdiff/internal/corpus"
	"amrdiff/internal/diff"
	"amrdiff/internal/match"
)

// Options configure a Runner.
type Options struct {
	CrossLingual bool
	// SkipInvalid logs and skips pairs that fail to parse or lack
	// required metadata instead of stopping the run.
	SkipInvalid bool
}

// Result is one compared pair.
type Result struct {
	Index         int
	SentenceID    string
	TestAnnotator string
	GoldAnnotator string
	Score         float64
	Graph         *diff.Graph
	Report        []string

	Test *amr.Graph
	Gold *amr.Graph
}

// Summary counts the pairs of a run.
type Summary struct {
	Pairs   int
	Skipped int
}

// Runner compares annotation pairs one at a time. The model carries
// per-pair state, so a Runner must not be used concurrently.
type Runner struct {
	model    align.PairAligner
	oracle   match.Oracle
	log      *slog.Logger
	opts     Options
	evidence bool
}

// NewRunner wires a comparison. Evidence-driven models also enable the
// dead-node correction of the merge.
func NewRunner(model align.PairAligner, oracle match.Oracle, log *slog.Logger, opts Options) *Runner {
	if model == nil {
		model = align.DefaultModel{}
	}
	if oracle == nil {
		oracle = match.Greedy{}
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	_, evidence := model.(*align.EvidenceModel)
	return &Runner{model: model, oracle: oracle, log: log, opts: opts, evidence: evidence}
}

// Compare merges one test annotation against its gold annotation.
func (r *Runner) Compare(test, gold *amr.Annotation) (*Result, error) {
	if err := r.sentenceStage(test, gold); err != nil {
		return nil, err
	}

	corr, score, err := r.oracle.Match(test.Graph, gold.Graph, r.model)
	if err != nil {
		return nil, fmt.Errorf("match: %w", err)
	}

	g, report := diff.Merge(test.Graph, gold.Graph, corr, r.model, diff.Options{UnmatchDeadNodes: r.evidence})
	return &Result{
		TestAnnotator: test.Annotator(),
		GoldAnnotator: gold.Annotator(),
		Score:         score,
		Graph:         g,
		Report:        report,
		Test:          test.Graph,
		Gold:          gold.Graph,
	}, nil
}

// sentenceStage hands the pair's tokens to the model. Tokens are required
// only when the model reads alignment evidence.
func (r *Runner) sentenceStage(test, gold *amr.Annotation) error {
	ts, err := r.sentence(test)
	if err != nil {
		return fmt.Errorf("test: %w", err)
	}
	gs, err := r.sentence(gold)
	if err != nil {
		return fmt.Errorf("gold: %w", err)
	}
	return r.model.SetPair(ts, gs)
}

func (r *Runner) sentence(a *amr.Annotation) (align.Sentence, error) {
	if r.evidence {
		return align.SentenceFrom(a)
	}
	toks, _ := a.Tokens()
	return align.Sentence{Tokens: toks, Graph: a.Graph}, nil
}

// Diff compares a test corpus against a gold corpus block by block.
func (r *Runner) Diff(ctx context.Context, test, gold io.Reader, sink func(*Result) error) (*Summary, error) {
	sum := &Summary{}
	err := corpus.Lockstep(corpus.NewReader(test, r.opts.CrossLingual), corpus.NewReader(gold, r.opts.CrossLingual), func(p corpus.Pair) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return r.pairStage(p, sum, sink)
	})
	return sum, err
}

// Disagree compares every annotation of a sentence id against the first
// annotation of that id.
func (r *Runner) Disagree(ctx context.Context, in io.Reader, sink func(*Result) error) (*Summary, error) {
	sum := &Summary{}
	onInvalid := func(err error) error {
		if !r.opts.SkipInvalid {
			return err
		}
		sum.Skipped++
		r.log.Warn("annotation skipped", "error", err)
		return nil
	}
	err := corpus.Groups(corpus.NewReader(in, r.opts.CrossLingual), func(id string, group []*amr.Annotation) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, p := range corpus.InterAnnotator(group) {
			if err := r.pairStage(p, sum, sink); err != nil {
				return err
			}
		}
		return nil
	}, onInvalid)
	return sum, err
}

func (r *Runner) pairStage(p corpus.Pair, sum *Summary, sink func(*Result) error) error {
	id := p.SentenceID()
	err := p.Err
	var res *Result
	if err == nil {
		res, err = r.Compare(p.Test, p.Gold)
	}
	if err != nil {
		if !r.skippable(err) {
			return fmt.Errorf("pair %s: %w", id, err)
		}
		sum.Skipped++
		r.log.Warn("pair skipped", "sentence", id, "error", err)
		// skippable errors all arise before the model reads its streams
		if s, ok := r.model.(align.Skipper); ok {
			if err := s.Skip(); err != nil {
				return fmt.Errorf("pair %s: %w", id, err)
			}
		}
		return nil
	}

	res.Index = p.Index
	res.SentenceID = id
	sum.Pairs++
	tally := res.Graph.Tally()
	r.log.Debug("pair compared",
		"sentence", id,
		"test", res.TestAnnotator,
		"gold", res.GoldAnnotator,
		"score", res.Score,
		"nodes", len(res.Graph.Nodes()),
		"edges", len(res.Graph.Edges()),
		"test_only", tally.Nodes[diff.TestOnly]+tally.Edges[diff.TestOnly],
		"gold_only", tally.Nodes[diff.GoldOnly]+tally.Edges[diff.GoldOnly],
	)
	return sink(res)
}

func (r *Runner) skippable(err error) bool {
	if !r.opts.SkipInvalid {
		return false
	}
	return errors.Is(err, amr.ErrParse) || errors.Is(err, amr.ErrMissingMetadata)
}
