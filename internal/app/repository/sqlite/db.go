package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"voice-relay/internal/app/repository"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	execution_id     TEXT NOT NULL UNIQUE,
	bucket           TEXT NOT NULL,
	source_key       TEXT NOT NULL,
	run_key          TEXT NOT NULL,
	target_languages TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL,
	transcript_uri   TEXT NOT NULL DEFAULT '',
	outputs          TEXT NOT NULL DEFAULT '{}',
	error_message    TEXT NOT NULL DEFAULT '',
	started_at       TIMESTAMP NOT NULL,
	finished_at      TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_pipeline_runs_started_at ON pipeline_runs (started_at);
`

// SQLiteDB is the run history on a local SQLite file.
type SQLiteDB struct {
	*repository.CommonDB
}

var _ repository.RunDAO = (*SQLiteDB)(nil)

// NewSQLiteDB opens (creating when needed) the database at dbFilePath and applies the schema.
func NewSQLiteDB(dbFilePath string) (*SQLiteDB, error) {
	if dir := filepath.Dir(dbFilePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?cache=shared&mode=rwc", dbFilePath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer at a time avoids SQLITE_BUSY between activity goroutines
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return &SQLiteDB{CommonDB: repository.NewCommonDB(db, "sqlite3")}, nil
}
