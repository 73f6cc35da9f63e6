package storage

import (
	"context"
	"errors"
	"time"

	"amrdiff/internal/diff"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Store combines run and diff persistence.
type Store interface {
	RunStore
	DiffStore
	Close() error
}

// Run groups the diffs produced by one invocation.
type Run struct {
	ID        string
	Source    string // gold/test file names
	Evidence  bool   // alignment evidence was used
	CreatedAt time.Time
}

// DiffRecord is one merged test/gold pair.
type DiffRecord struct {
	ID            string
	RunID         string
	SentenceID    string
	TestAnnotator string
	GoldAnnotator string
	Score         float64
	Graph         *diff.Graph
	Report        []string
	CreatedAt     time.Time
}

// RunStore persists runs.
type RunStore interface {
	// SaveRun inserts a run, assigning an ID when empty.
	SaveRun(ctx context.Context, run *Run) error

	// ListRuns returns runs, newest first.
	ListRuns(ctx context.Context) ([]*Run, error)
}

// DiffStore persists merged graphs.
type DiffStore interface {
	// SaveDiffs inserts records in one transaction, assigning IDs when empty.
	SaveDiffs(ctx context.Context, recs []*DiffRecord) error

	GetDiff(ctx context.Context, id string) (*DiffRecord, error)

	// LoadDiffs returns the records of a run in insertion order.
	LoadDiffs(ctx context.Context, runID string) ([]*DiffRecord, error)

	// FindBySentence returns every stored diff of a sentence across runs.
	FindBySentence(ctx context.Context, sentenceID string) ([]*DiffRecord, error)
}
