package audit

import (
	"context"
	"database/sql"
	"fmt"

	"clubhub/pkg/utils"
)

const createAuditTable = `
CREATE TABLE IF NOT EXISTS audit_events (
	id            UUID PRIMARY KEY,
	source        TEXT NOT NULL,
	type          TEXT NOT NULL,
	actor_user_id TEXT NOT NULL DEFAULT '',
	actor_email   TEXT NOT NULL DEFAULT '',
	actor_role    TEXT NOT NULL DEFAULT '',
	profile       TEXT NOT NULL DEFAULT '',
	ip_address    TEXT NOT NULL DEFAULT '',
	message       TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS audit_events_created_at_idx ON audit_events (created_at);
`

const insertAuditEvent = `
INSERT INTO audit_events
	(id, source, type, actor_user_id, actor_email, actor_role, profile, ip_address, message, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

// PostgresRepo stores events in an INSERT-only table. Open the *sql.DB with the pgx stdlib
// driver ("pgx").
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

// EnsureSchema creates the audit table if it does not exist.
func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, createAuditTable); err != nil {
			return fmt.Errorf("audit: create schema: %w", err)
		}
		return nil
	})
}

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx, insertAuditEvent,
		e.ID,
		string(e.Source),
		string(e.Type),
		e.ActorUserID,
		e.ActorEmail,
		e.ActorRole,
		e.Profile,
		e.IPAddress,
		e.Message,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit: insert: %w", err)
	}
	return nil
}
