package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"amrdiff/internal/diff"
)

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			source TEXT,
			evidence INTEGER,
			created_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS diffs (
			id TEXT PRIMARY KEY,
			seq INTEGER,
			run_id TEXT,
			sentence_id TEXT,
			test_annotator TEXT,
			gold_annotator TEXT,
			score REAL,
			graph JSON,
			report JSON,
			created_at TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_diffs_run ON diffs(run_id, seq);`,
		`CREATE INDEX IF NOT EXISTS idx_diffs_sentence ON diffs(sentence_id);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// --- RunStore Implementation ---

func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, source, evidence, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET source=excluded.source, evidence=excluded.evidence
	`, run.ID, run.Source, run.Evidence, run.CreatedAt.Format(timeLayout))
	return err
}

func (s *SQLiteStore) ListRuns(ctx context.Context) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, source, evidence, created_at FROM runs ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &r.Source, &r.Evidence, &created); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.CreatedAt, _ = time.Parse(timeLayout, created)
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

// --- DiffStore Implementation ---

func (s *SQLiteStore) SaveDiffs(ctx context.Context, recs []*DiffRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) FROM diffs").Scan(&seq); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO diffs (id, seq, run_id, sentence_id, test_annotator, gold_annotator, score, graph, report, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range recs {
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = time.Now().UTC()
		}
		graphJSON, err := json.Marshal(rec.Graph)
		if err != nil {
			return fmt.Errorf("encode graph of %s: %w", rec.SentenceID, err)
		}
		reportJSON, err := json.Marshal(rec.Report)
		if err != nil {
			return err
		}
		seq++
		if _, err := stmt.Exec(rec.ID, seq, rec.RunID, rec.SentenceID, rec.TestAnnotator, rec.GoldAnnotator,
			rec.Score, graphJSON, reportJSON, rec.CreatedAt.Format(timeLayout)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

const diffColumns = "id, run_id, sentence_id, test_annotator, gold_annotator, score, graph, report, created_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanDiff(row scanner) (*DiffRecord, error) {
	var rec DiffRecord
	var graphJSON, reportJSON []byte
	var created string
	if err := row.Scan(&rec.ID, &rec.RunID, &rec.SentenceID, &rec.TestAnnotator, &rec.GoldAnnotator,
		&rec.Score, &graphJSON, &reportJSON, &created); err != nil {
		return nil, err
	}
	g, err := diff.Decode(graphJSON)
	if err != nil {
		return nil, fmt.Errorf("diff %s: %w", rec.ID, err)
	}
	rec.Graph = g
	if len(reportJSON) > 0 {
		if err := json.Unmarshal(reportJSON, &rec.Report); err != nil {
			return nil, fmt.Errorf("diff %s report: %w", rec.ID, err)
		}
	}
	rec.CreatedAt, _ = time.Parse(timeLayout, created)
	return &rec, nil
}

func (s *SQLiteStore) GetDiff(ctx context.Context, id string) (*DiffRecord, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+diffColumns+" FROM diffs WHERE id = ?", id)
	rec, err := scanDiff(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("diff %s: %w", id, ErrNotFound)
	}
	return rec, err
}

func (s *SQLiteStore) LoadDiffs(ctx context.Context, runID string) ([]*DiffRecord, error) {
	return s.queryDiffs(ctx, "SELECT "+diffColumns+" FROM diffs WHERE run_id = ? ORDER BY seq", runID)
}

func (s *SQLiteStore) FindBySentence(ctx context.Context, sentenceID string) ([]*DiffRecord, error) {
	return s.queryDiffs(ctx, "SELECT "+diffColumns+" FROM diffs WHERE sentence_id = ? ORDER BY seq", sentenceID)
}

func (s *SQLiteStore) queryDiffs(ctx context.Context, query string, arg any) ([]*DiffRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query diffs: %w", err)
	}
	defer rows.Close()

	var recs []*DiffRecord
	for rows.Next() {
		rec, err := scanDiff(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan diff: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
