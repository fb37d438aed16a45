package storage

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"ListingScanner/internal/domain"
	"ListingScanner/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS results (
    subject_id TEXT PRIMARY KEY,
    status     TEXT NOT NULL,
    condition  TEXT,
    message    TEXT,
    indicator  TEXT,
    sales_rank INTEGER,
    title      TEXT,
    source_url TEXT,
    checked_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_status ON results(status);
`

// SQLiteSink persists classification results keyed by subject id with
// last-write-wins semantics, and produces the CSV/JSON exports.
type SQLiteSink struct {
	db *sql.DB
}

var _ ports.ResultStore = (*SQLiteSink)(nil)

// Open opens (creating if needed) the sqlite database at path.
func Open(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteSink) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// StoreResult upserts the result for its subject; a newer check for the
// same subject overwrites the previous one.
func (s *SQLiteSink) StoreResult(ctx context.Context, result domain.ClassificationResult) error {
	if s.db == nil {
		return nil
	}

	query, args, err := sq.Insert("results").
		Columns("subject_id", "status", "condition", "message", "indicator", "sales_rank", "title", "source_url", "checked_at").
		Values(
			result.SubjectID,
			string(result.Status),
			result.Condition,
			result.Message,
			result.Indicator,
			result.Rank,
			result.Title,
			result.SourceURL,
			result.CheckedAt.UTC().Format(time.RFC3339),
		).
		Suffix(`ON CONFLICT(subject_id) DO UPDATE SET
			status = excluded.status,
			condition = excluded.condition,
			message = excluded.message,
			indicator = excluded.indicator,
			sales_rank = excluded.sales_rank,
			title = excluded.title,
			source_url = excluded.source_url,
			checked_at = excluded.checked_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert result %s: %w", result.SubjectID, err)
	}

	return nil
}

// Results returns every stored result, newest check first.
func (s *SQLiteSink) Results(ctx context.Context) ([]domain.ClassificationResult, error) {
	if s.db == nil {
		return nil, nil
	}

	query, args, err := sq.Select("subject_id", "status", "condition", "message", "indicator", "sales_rank", "title", "source_url", "checked_at").
		From("results").
		OrderBy("checked_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []domain.ClassificationResult
	for rows.Next() {
		var (
			result    domain.ClassificationResult
			status    string
			checkedAt string
		)
		if err := rows.Scan(
			&result.SubjectID,
			&status,
			&result.Condition,
			&result.Message,
			&result.Indicator,
			&result.Rank,
			&result.Title,
			&result.SourceURL,
			&checkedAt,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		result.Status = domain.ParseStatus(status)
		if parsed, err := time.Parse(time.RFC3339, checkedAt); err == nil {
			result.CheckedAt = parsed
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return results, nil
}

// Counts returns running totals per status for every stored result.
func (s *SQLiteSink) Counts(ctx context.Context) (map[domain.Status]int, error) {
	counts := make(map[domain.Status]int)
	if s.db == nil {
		return counts, nil
	}

	query, args, err := sq.Select("status", "COUNT(*)").
		From("results").
		GroupBy("status").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[domain.ParseStatus(status)] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return counts, nil
}

var exportHeader = []string{"asin", "status", "condition", "message", "indicator", "bsr", "title", "sourceUrl", "checkedAt"}

// ExportCSV writes every stored result as delimited rows with a header.
func (s *SQLiteSink) ExportCSV(ctx context.Context, w io.Writer) error {
	results, err := s.Results(ctx)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, result := range results {
		row := []string{
			result.SubjectID,
			string(result.Status),
			result.Condition,
			result.Message,
			result.Indicator,
			strconv.Itoa(result.Rank),
			result.Title,
			result.SourceURL,
			result.CheckedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", result.SubjectID, err)
		}
	}
	writer.Flush()

	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// exportEnvelope is the structured export consumed by downstream tooling.
type exportEnvelope struct {
	ExportedAt time.Time                     `json:"exportedAt"`
	Source     string                        `json:"source"`
	Results    []domain.ClassificationResult `json:"results"`
}

// ExportJSON writes every stored result inside the export envelope.
func (s *SQLiteSink) ExportJSON(ctx context.Context, w io.Writer) error {
	results, err := s.Results(ctx)
	if err != nil {
		return err
	}
	if results == nil {
		results = []domain.ClassificationResult{}
	}

	envelope := exportEnvelope{
		ExportedAt: time.Now().UTC(),
		Source:     "listingscanner",
		Results:    results,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(envelope); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}
