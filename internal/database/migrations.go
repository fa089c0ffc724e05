package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the subset of pgxpool.Pool / pgx.Conn used by migrations.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS applications (
		id               TEXT PRIMARY KEY,
		seq              BIGSERIAL NOT NULL,
		faculty          JSONB NOT NULL,
		faculty_name     TEXT NOT NULL,
		faculty_email    TEXT NOT NULL,
		appointment_type TEXT NOT NULL,
		effective_date   DATE NOT NULL,
		duration         TEXT NOT NULL,
		rationale        TEXT NOT NULL,
		approval_chain   JSONB NOT NULL,
		current_step     INTEGER NOT NULL DEFAULT 0,
		status           TEXT NOT NULL,
		status_history   JSONB NOT NULL DEFAULT '[]'::jsonb,
		cv_file          JSONB,
		submitted_at     TIMESTAMPTZ NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL,
		version          BIGINT NOT NULL DEFAULT 1
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS applications_seq_idx ON applications (seq)`,
	`CREATE INDEX IF NOT EXISTS applications_status_idx ON applications (status)`,
	`CREATE INDEX IF NOT EXISTS applications_faculty_email_idx ON applications (lower(faculty_email))`,
}

// Apply runs the schema statements in order. Every statement is idempotent.
func Apply(ctx context.Context, db Execer) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
