package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "voice-relay/internal/app/errors"
	"voice-relay/internal/app/model"
)

// CommonDB provides shared database functionality
type CommonDB struct {
	db           *sql.DB
	driverName   string
	placeholders PlaceholderFunc
}

// PlaceholderFunc generates parameter placeholders for different SQL dialects
type PlaceholderFunc func(n int) string

// NewCommonDB creates a new CommonDB instance
func NewCommonDB(db *sql.DB, driverName string) *CommonDB {
	var placeholders PlaceholderFunc

	switch driverName {
	case "postgres":
		placeholders = func(n int) string { return fmt.Sprintf("$%d", n) }
	default:
		placeholders = func(n int) string { return "?" }
	}

	return &CommonDB{
		db:           db,
		driverName:   driverName,
		placeholders: placeholders,
	}
}

// DB exposes the underlying connection.
func (c *CommonDB) DB() *sql.DB {
	return c.db
}

// Close closes the database connection
func (c *CommonDB) Close() error {
	return c.db.Close()
}

func (c *CommonDB) params(from, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = c.placeholders(from + i)
	}
	return strings.Join(ps, ", ")
}

// CreateRun inserts a started run
func (c *CommonDB) CreateRun(ctx context.Context, run model.Run) (int64, error) {
	if run.Status == "" {
		run.Status = model.RunStatusStarted
	}
	query := fmt.Sprintf(
		`INSERT INTO pipeline_runs (execution_id, bucket, source_key, run_key, target_languages, status, started_at) VALUES (%s) RETURNING id`,
		c.params(1, 7),
	)

	var id int64
	err := c.db.QueryRowContext(ctx, query,
		run.ExecutionID, run.Bucket, run.SourceKey, run.Key,
		strings.Join(run.TargetLanguages, ","), run.Status, run.StartedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert failed: %w", err)
	}
	return id, nil
}

// FinishRun records the outcome of a run
func (c *CommonDB) FinishRun(ctx context.Context, executionID string, outcome RunOutcome) error {
	outputs, err := json.Marshal(outcome.Outputs)
	if err != nil {
		return fmt.Errorf("failed to encode outputs: %w", err)
	}

	query := fmt.Sprintf(
		`UPDATE pipeline_runs SET status = %s, transcript_uri = %s, outputs = %s, error_message = %s, finished_at = %s WHERE execution_id = %s`,
		c.placeholders(1), c.placeholders(2), c.placeholders(3),
		c.placeholders(4), c.placeholders(5), c.placeholders(6),
	)

	result, err := c.db.ExecContext(ctx, query,
		outcome.Status, outcome.TranscriptURI, string(outputs), outcome.ErrorMessage, outcome.FinishedAt, executionID,
	)
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.NotFound("run", executionID)
	}
	return nil
}

const runColumns = `id, execution_id, bucket, source_key, run_key, target_languages, status, transcript_uri, outputs, error_message, started_at, finished_at`

// GetRun returns one run by execution id
func (c *CommonDB) GetRun(ctx context.Context, executionID string) (*model.Run, error) {
	query := fmt.Sprintf(`SELECT %s FROM pipeline_runs WHERE execution_id = %s`, runColumns, c.placeholders(1))

	run, err := scanRun(c.db.QueryRowContext(ctx, query, executionID))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("run", executionID)
	}
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first
func (c *CommonDB) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	query := fmt.Sprintf(`SELECT %s FROM pipeline_runs ORDER BY started_at DESC, id DESC`, runColumns)
	args := []interface{}{}
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %s", c.placeholders(1))
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return runs, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*model.Run, error) {
	var (
		run        model.Run
		languages  string
		outputs    string
		finishedAt sql.NullTime
	)
	err := row.Scan(
		&run.ID, &run.ExecutionID, &run.Bucket, &run.SourceKey, &run.Key, &languages, &run.Status,
		&run.TranscriptURI, &outputs, &run.ErrorMessage, &run.StartedAt, &finishedAt,
	)
	if err != nil {
		return nil, err
	}

	if languages != "" {
		run.TargetLanguages = strings.Split(languages, ",")
	}
	if outputs != "" && outputs != "null" {
		if err := json.Unmarshal([]byte(outputs), &run.Outputs); err != nil {
			return nil, fmt.Errorf("invalid outputs for run %s: %w", run.ExecutionID, err)
		}
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		run.FinishedAt = &t
	}
	return &run, nil
}
