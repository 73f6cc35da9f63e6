package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"amrdiff/internal/align"
	"amrdiff/internal/config"
	"amrdiff/internal/render"
	"amrdiff/internal/stats"
	"amrdiff/internal/storage"
)

// Job runs one comparison end to end: it opens the alignment evidence,
// compares every pair, renders each diff and persists the run.
type Job struct {
	Config *config.Config
	Log    *slog.Logger

	// Store receives the run when set.
	Store storage.Store
	// Stats accumulates edge statistics when set.
	Stats *stats.Analyzer
}

// JobResult describes a finished job.
type JobResult struct {
	Summary *Summary
	Run     *storage.Run // nil without a store
	Written int
}

// Diff compares the test file against the gold file.
func (j *Job) Diff(ctx context.Context, testPath, goldPath string) (*JobResult, error) {
	test, err := os.Open(testPath)
	if err != nil {
		return nil, err
	}
	defer test.Close()
	gold, err := os.Open(goldPath)
	if err != nil {
		return nil, err
	}
	defer gold.Close()

	return j.run(ctx, testPath+" "+goldPath, func(r *Runner, sink func(*Result) error) (*Summary, error) {
		return r.Diff(ctx, test, gold, sink)
	})
}

// Disagree compares the annotators of every sentence in one file.
func (j *Job) Disagree(ctx context.Context, path string) (*JobResult, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	return j.run(ctx, path, func(r *Runner, sink func(*Result) error) (*Summary, error) {
		return r.Disagree(ctx, in, sink)
	})
}

func (j *Job) run(ctx context.Context, source string, compare func(*Runner, func(*Result) error) (*Summary, error)) (*JobResult, error) {
	log := j.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	model, closeModel, err := j.modelStage()
	if err != nil {
		return nil, err
	}
	defer closeModel()

	out, run, err := j.outputStage(ctx, source, model)
	if err != nil {
		return nil, err
	}

	runner := NewRunner(model, nil, log, Options{
		CrossLingual: j.Config.CrossLingual,
		SkipInvalid:  j.Config.SkipInvalid,
	})
	sum, err := compare(runner, func(res *Result) error {
		if j.Stats != nil {
			j.Stats.Add(res.Graph)
		}
		return out.Write(ctx, res)
	})
	// keep what was compared before a failure
	if ferr := out.Flush(ctx); ferr != nil {
		err = errors.Join(err, ferr)
	}
	if err != nil {
		return nil, err
	}

	log.Info("comparison finished", "source", source, "pairs", sum.Pairs, "skipped", sum.Skipped, "files", out.Written())
	return &JobResult{Summary: sum, Run: run, Written: out.Written()}, nil
}

// modelStage opens the n-best files when evidence is configured.
func (j *Job) modelStage() (align.PairAligner, func(), error) {
	cfg := j.Config
	if !cfg.Evidence() {
		return align.DefaultModel{}, func() {}, nil
	}

	a := cfg.Alignment
	fwd, err := os.Open(a.Src2Tgt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open alignments: %w", err)
	}
	bwd, err := os.Open(a.Tgt2Src)
	if err != nil {
		fwd.Close()
		return nil, nil, fmt.Errorf("failed to open alignments: %w", err)
	}
	model := align.NewEvidenceModel(
		align.NewNBestReader(fwd, a.Src2Tgt, a.NumBest, a.NumBestInFile),
		align.NewNBestReader(bwd, a.Tgt2Src, a.NumBest, a.NumBestInFile),
	)
	return model, func() {
		fwd.Close()
		bwd.Close()
	}, nil
}

func (j *Job) outputStage(ctx context.Context, source string, model align.PairAligner) (*Output, *storage.Run, error) {
	format, err := render.ParseFormat(j.Config.Output.Format)
	if err != nil {
		return nil, nil, err
	}
	out := &Output{Dir: j.Config.Output.Dir, Format: format}
	if j.Store == nil {
		return out, nil, nil
	}

	_, evidence := model.(*align.EvidenceModel)
	run := &storage.Run{Source: source, Evidence: evidence}
	if err := j.Store.SaveRun(ctx, run); err != nil {
		return nil, nil, fmt.Errorf("failed to save run: %w", err)
	}
	out.Store = j.Store
	out.RunID = run.ID
	return out, run, nil
}
