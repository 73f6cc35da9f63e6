package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"amrdiff/internal/amr"
	"amrdiff/internal/render"
	"amrdiff/internal/storage"
)

const flushEvery = 64

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Output renders results into a directory and persists them to a store.
// Either destination may be left unset.
type Output struct {
	Dir    string
	Format render.Format
	Store  storage.DiffStore
	RunID  string

	pending []*storage.DiffRecord
	written int
}

// Write handles one result. Records are saved in batches; call Flush
// when the run ends.
func (o *Output) Write(ctx context.Context, res *Result) error {
	if o.Dir != "" {
		if err := o.writeFiles(res); err != nil {
			return err
		}
	}
	if o.Store == nil {
		return nil
	}
	o.pending = append(o.pending, &storage.DiffRecord{
		RunID:         o.RunID,
		SentenceID:    res.SentenceID,
		TestAnnotator: res.TestAnnotator,
		GoldAnnotator: res.GoldAnnotator,
		Score:         res.Score,
		Graph:         res.Graph,
		Report:        res.Report,
	})
	if len(o.pending) >= flushEvery {
		return o.Flush(ctx)
	}
	return nil
}

// Flush saves pending records.
func (o *Output) Flush(ctx context.Context) error {
	if o.Store == nil || len(o.pending) == 0 {
		return nil
	}
	if err := o.Store.SaveDiffs(ctx, o.pending); err != nil {
		return fmt.Errorf("failed to save diffs: %w", err)
	}
	o.pending = o.pending[:0]
	return nil
}

// Written returns how many results were rendered to files.
func (o *Output) Written() int { return o.written }

func (o *Output) writeFiles(res *Result) error {
	if err := os.MkdirAll(o.Dir, 0o755); err != nil {
		return err
	}
	base := filepath.Join(o.Dir, FileBase(res))

	data, err := render.Render(res.Graph, o.Format, res.SentenceID)
	if err != nil {
		return err
	}
	if err := os.WriteFile(base+o.Format.Extension(), data, 0o644); err != nil {
		return err
	}
	var report strings.Builder
	if res.Test != nil && res.Gold != nil {
		fmt.Fprintf(&report, "# ::test %s\n# ::gold %s\n", amr.Format(res.Test), amr.Format(res.Gold))
	}
	for _, line := range res.Report {
		report.WriteString(line)
		report.WriteByte('\n')
	}
	if err := os.WriteFile(base+".align.txt", []byte(report.String()), 0o644); err != nil {
		return err
	}
	o.written++
	return nil
}

// FileBase names the files of a result: the sentence id followed by the
// test annotator, or by the pair index when there is none.
func FileBase(res *Result) string {
	suffix := res.TestAnnotator
	if suffix == "" {
		suffix = fmt.Sprintf("%d", res.Index)
	}
	name := unsafeName.ReplaceAllString(res.SentenceID+"_"+suffix, "_")
	return strings.Trim(name, "_")
}
