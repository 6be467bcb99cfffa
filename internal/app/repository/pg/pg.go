package pg

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"voice-relay/internal/app/repository"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	id               BIGSERIAL PRIMARY KEY,
	execution_id     TEXT NOT NULL UNIQUE,
	bucket           TEXT NOT NULL,
	source_key       TEXT NOT NULL,
	run_key          TEXT NOT NULL,
	target_languages TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL,
	transcript_uri   TEXT NOT NULL DEFAULT '',
	outputs          TEXT NOT NULL DEFAULT '{}',
	error_message    TEXT NOT NULL DEFAULT '',
	started_at       TIMESTAMPTZ NOT NULL,
	finished_at      TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_pipeline_runs_started_at ON pipeline_runs (started_at);
`

// PostgresDB is the run history on PostgreSQL.
type PostgresDB struct {
	*repository.CommonDB
}

var _ repository.RunDAO = (*PostgresDB)(nil)

// NewPostgresDB opens the database. sql.Open does not connect; the first query does.
func NewPostgresDB(connectionString string) (*PostgresDB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, err
	}
	return &PostgresDB{CommonDB: repository.NewCommonDB(db, "postgres")}, nil
}

// Migrate applies the schema.
func (p *PostgresDB) Migrate() error {
	if _, err := p.DB().Exec(createTableSQL); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}
