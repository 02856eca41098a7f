package store

import (
	"context"
	"database/sql"
)

const schemaVersion = 1

func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("migrate", err)
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v); err != nil {
		return unavailable("migrate: read schema version", err)
	}

	if v >= schemaVersion {
		return commit(tx)
	}

	// ---- Schema v1 ----

	if _, err := tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS jobs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  source TEXT NOT NULL,
  title TEXT NOT NULL,
  company TEXT NOT NULL,
  link TEXT,
  fingerprint TEXT NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`); err != nil {
		return unavailable("migrate: schema v1", err)
	}

	if _, err := tx.ExecContext(ctx, `
CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_fingerprint
ON jobs(fingerprint);
`); err != nil {
		return unavailable("migrate: schema v1", err)
	}

	if _, err := tx.ExecContext(ctx, `
CREATE INDEX IF NOT EXISTS idx_jobs_source
ON jobs(source);
`); err != nil {
		return unavailable("migrate: schema v1", err)
	}

	if _, err := tx.ExecContext(ctx, `
CREATE INDEX IF NOT EXISTS idx_jobs_created_at
ON jobs(created_at);
`); err != nil {
		return unavailable("migrate: schema v1", err)
	}

	// PRAGMA does not take bind parameters.
	if _, err := tx.ExecContext(ctx, `PRAGMA user_version = 1;`); err != nil {
		return unavailable("migrate: set schema version", err)
	}

	return commit(tx)
}

func commit(tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		return unavailable("migrate: commit", err)
	}
	return nil
}
