// Package storage persists submissions and stage outputs in Postgres.
//
// Expected schema:
//
//	CREATE TABLE submissions (
//	    id               UUID PRIMARY KEY,
//	    client_name      TEXT NOT NULL,
//	    client_email     TEXT NOT NULL,
//	    client_phone     TEXT NOT NULL DEFAULT '',
//	    business_name    TEXT NOT NULL,
//	    team_size        TEXT NOT NULL,
//	    challenges       JSONB NOT NULL DEFAULT '[]',
//	    enquiry_sources  JSONB NOT NULL DEFAULT '[]',
//	    admin_method     TEXT NOT NULL DEFAULT '',
//	    notes            TEXT NOT NULL DEFAULT '',
//	    lead_score       INT NOT NULL DEFAULT 0,
//	    revenue_value    NUMERIC NOT NULL DEFAULT 0,
//	    complexity       TEXT NOT NULL DEFAULT '',
//	    status           TEXT NOT NULL DEFAULT 'new_lead',
//	    submitted_at     TIMESTAMPTZ NOT NULL,
//	    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//
//	CREATE TABLE stage_outputs (
//	    id                 UUID PRIMARY KEY,
//	    submission_id      UUID NOT NULL REFERENCES submissions(id),
//	    stage              TEXT NOT NULL,
//	    status             TEXT NOT NULL,
//	    content            JSONB NOT NULL DEFAULT '{}',
//	    html               TEXT NOT NULL DEFAULT '',
//	    markdown           TEXT NOT NULL DEFAULT '',
//	    tokens_used        INT NOT NULL DEFAULT 0,
//	    generation_seconds INT NOT NULL DEFAULT 0,
//	    approved_by        TEXT NOT NULL DEFAULT '',
//	    approved_at        TIMESTAMPTZ,
//	    rejection_reason   TEXT NOT NULL DEFAULT '',
//	    generated_at       TIMESTAMPTZ NOT NULL,
//	    UNIQUE (submission_id, stage)
//	);
package storage

import (
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidTransition is returned when a status change would violate the
// stage output state machine.
var ErrInvalidTransition = errors.New("invalid status transition")

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Open connects to Postgres through the pgx stdlib driver and verifies the
// connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
