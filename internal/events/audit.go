// internal/events/audit.go
package events

import (
	"context"
	"database/sql"
	"fmt"

	"mergington-activities/internal/models"
)

const createAuditTable = `CREATE TABLE IF NOT EXISTS enrollment_events (
	id          UUID PRIMARY KEY,
	event_type  TEXT NOT NULL,
	activity    TEXT NOT NULL,
	email       TEXT NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL
)`

const insertAuditEvent = `INSERT INTO enrollment_events (id, event_type, activity, email, occurred_at) VALUES ($1, $2, $3, $4, $5)`

// AuditLog appends enrollment events to Postgres. Rows are write-only; the
// registry is never rebuilt from them.
type AuditLog struct {
	db *sql.DB
}

func NewAuditLog(db *sql.DB) *AuditLog {
	return &AuditLog{db: db}
}

// EnsureSchema creates the enrollment_events table if it is missing.
func (a *AuditLog) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, createAuditTable); err != nil {
		return fmt.Errorf("create enrollment_events: %w", err)
	}
	return nil
}

func (a *AuditLog) Publish(ctx context.Context, event models.EnrollmentEvent) error {
	_, err := a.db.ExecContext(ctx, insertAuditEvent,
		event.ID, string(event.Type), event.Activity, event.Email, event.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert enrollment event: %w", err)
	}
	return nil
}
