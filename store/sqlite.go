// Package store persists normalized referral tables and run summaries in a
// SQLite database so batch and watch runs can be queried after the fact.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"text2phenotype.com/refnorm/pipeline"
	"text2phenotype.com/refnorm/taxonomy"
	"text2phenotype.com/refnorm/types"
)

// FlagColumn selects which encoded column a count query reads.
type FlagColumn string

const (
	ExamFlagsColumn  FlagColumn = "exam_flags"
	OrganFlagsColumn FlagColumn = "organ_flags"
)

// RunInfo is one row of the runs listing.
type RunInfo struct {
	Tid       string `json:"tid"`
	Source    string `json:"source"`
	Rows      int    `json:"rows"`
	CreatedAt string `json:"created_at"`
}

type Store struct {
	db *sql.DB
}

// Open opens the database at path with WAL mode enabled and creates the
// schema when missing.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	tid TEXT PRIMARY KEY,
	source TEXT,
	row_count INTEGER NOT NULL,
	null_exam INTEGER NOT NULL,
	null_organ INTEGER NOT NULL,
	null_contrast INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	summary_json TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS referrals (
	tid TEXT NOT NULL,
	row_index INTEGER NOT NULL,
	exam TEXT,
	body_part TEXT,
	contrast TEXT,
	exam_flags INTEGER,
	organ_flags INTEGER,
	contrast_code INTEGER,
	PRIMARY KEY(tid, row_index),
	FOREIGN KEY(tid) REFERENCES runs(tid) ON DELETE CASCADE
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun stores the summary and the encoded rows of one finished run.
// Saving the same tid again replaces the earlier rows.
func (s *Store) SaveRun(ctx context.Context, source string, result pipeline.Result) error {
	if result.Table == nil {
		return fmt.Errorf("run %s carries no table", result.Summary.Tid)
	}

	summaryJSON, err := json.Marshal(result.Summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const runStmt = `
INSERT INTO runs (tid, source, row_count, null_exam, null_organ, null_contrast, duration_ms, summary_json, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(tid) DO UPDATE SET
	source=excluded.source,
	row_count=excluded.row_count,
	null_exam=excluded.null_exam,
	null_organ=excluded.null_organ,
	null_contrast=excluded.null_contrast,
	duration_ms=excluded.duration_ms,
	summary_json=excluded.summary_json,
	created_at=excluded.created_at;
`

	summary := result.Summary
	_, err = tx.ExecContext(
		ctx,
		runStmt,
		summary.Tid,
		source,
		summary.Rows,
		summary.NullExam,
		summary.NullOrgan,
		summary.NullContrast,
		summary.DurationMs,
		string(summaryJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return err
	}

	if err := replaceReferrals(ctx, tx, summary, result.Table); err != nil {
		return err
	}

	return tx.Commit()
}

func replaceReferrals(ctx context.Context, tx *sql.Tx, summary pipeline.Summary, table *types.Table) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM referrals WHERE tid=?`, summary.Tid); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO referrals (tid, row_index, exam, body_part, contrast, exam_flags, organ_flags, contrast_code)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	fields := summary.Fields
	for index, record := range table.Rows {
		_, err := stmt.ExecContext(
			ctx,
			summary.Tid,
			index,
			record.String(fields.Exam),
			record.String(fields.Organ),
			record.String(fields.Contrast),
			flagsArg(record, fields.Exam+"_flags"),
			flagsArg(record, fields.Organ+"_flags"),
			codeArg(record, fields.Contrast+"_flags"),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func flagsArg(record types.Record, field string) interface{} {
	if flags, ok := record[field].(types.Flags); ok {
		return int64(flags)
	}
	return nil
}

func codeArg(record types.Record, field string) interface{} {
	if code, ok := record[field].(types.ContrastCode); ok {
		return int64(code)
	}
	return nil
}

// LoadSummary retrieves the stored summary for a tid. The second return
// value reports whether the run exists.
func (s *Store) LoadSummary(ctx context.Context, tid string) (pipeline.Summary, bool, error) {
	var summaryJSON string
	err := s.db.QueryRowContext(ctx, `SELECT summary_json FROM runs WHERE tid=?`, tid).Scan(&summaryJSON)
	if err == sql.ErrNoRows {
		return pipeline.Summary{}, false, nil
	}
	if err != nil {
		return pipeline.Summary{}, false, err
	}

	var summary pipeline.Summary
	if err := json.Unmarshal([]byte(summaryJSON), &summary); err != nil {
		return pipeline.Summary{}, false, fmt.Errorf("failed to decode summary for %s: %w", tid, err)
	}
	return summary, true, nil
}

// Runs lists stored runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunInfo, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT tid, COALESCE(source, ''), row_count, created_at
FROM runs
ORDER BY created_at DESC, tid
LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var run RunInfo
		if err := rows.Scan(&run.Tid, &run.Source, &run.Rows, &run.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// CategoryCounts tallies, across every stored run, how many rows carry each
// category of the vocabulary in the given flag column.
func (s *Store) CategoryCounts(ctx context.Context, column FlagColumn, vocabulary *taxonomy.Vocabulary) (map[string]int, error) {
	switch column {
	case ExamFlagsColumn, OrganFlagsColumn:
	default:
		return nil, fmt.Errorf("unknown flag column %q", column)
	}

	counts := make(map[string]int)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM referrals WHERE %s IS NOT NULL AND %s & ? != 0`, column, column)
	for index, name := range vocabulary.CategoryNames() {
		var count int
		if err := s.db.QueryRowContext(ctx, query, int64(1)<<uint(index)).Scan(&count); err != nil {
			return nil, err
		}
		counts[name] = count
	}
	return counts, nil
}

// ContrastCounts tallies stored rows by standardized contrast phrase.
func (s *Store) ContrastCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT contrast_code, COUNT(*)
FROM referrals
WHERE contrast_code IS NOT NULL
GROUP BY contrast_code
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var code int64
		var count int
		if err := rows.Scan(&code, &count); err != nil {
			return nil, err
		}
		counts[types.ContrastCode(code).Name()] = count
	}
	return counts, rows.Err()
}
