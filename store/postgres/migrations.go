package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Doorman store (PostgreSQL).
var Migrations = migrate.NewGroup("doorman")

const sessionsSchema = `
CREATE TABLE IF NOT EXISTS doorman_sessions (
    session_id      TEXT PRIMARY KEY,
    hit_count       INTEGER NOT NULL DEFAULT 0,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    expires_at      TIMESTAMPTZ NOT NULL,
    last_hit        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_doorman_sessions_expires ON doorman_sessions (expires_at);
`

const signupsSchema = `
CREATE TABLE IF NOT EXISTS doorman_signups (
    id              TEXT PRIMARY KEY,
    email           TEXT NOT NULL,
    approved        BOOLEAN NOT NULL DEFAULT FALSE,
    approved_at     TIMESTAMPTZ,
    processed_by    TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),

    UNIQUE(email)
);

CREATE INDEX IF NOT EXISTS idx_doorman_signups_approved ON doorman_signups (approved);
`

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_sessions",
			Version: "20250101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, sessionsSchema)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS doorman_sessions`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_signups",
			Version: "20250101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, signupsSchema)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS doorman_signups`)
				return err
			},
		},
	)
}
