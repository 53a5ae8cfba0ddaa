package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "propex/pkg/domain"
	audit "propex/pkg/platform/audit"
	txcontext "propex/pkg/platform/tx"
)

// Store persists audit events in the audit_events table. Appends join the
// caller's transaction when one is carried in ctx, so a step completion and
// its audit row commit together.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const insertEventSQL = `
	INSERT INTO audit_events (
		id, category, occurred_at, user_id, transaction_id, subject,
		action, decision, reason, request_id, actor_id
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

// Append inserts event. The category is always derived from the action.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	var userID *uuid.UUID
	if !event.UserID.IsNil() {
		uid := uuid.UUID(event.UserID)
		userID = &uid
	}
	var txID *string
	if event.TransactionID != "" {
		txID = &event.TransactionID
	}

	_, err := txcontext.Use(ctx, s.db).ExecContext(ctx, insertEventSQL,
		uuid.New(),
		string(audit.AuditEvent(event.Action).Category()),
		event.Timestamp,
		userID,
		txID,
		event.Subject,
		event.Action,
		event.Decision,
		event.Reason,
		event.RequestID,
		event.ActorID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByUser returns events for a user, newest first.
func (s *Store) ListByUser(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	const query = `
		SELECT category, occurred_at, user_id, COALESCE(transaction_id, ''), subject,
			   action, decision, reason, request_id, actor_id
		FROM audit_events
		WHERE user_id = $1
		ORDER BY occurred_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			category string
			event    audit.Event
			uid      *uuid.UUID
		)
		if err := rows.Scan(
			&category,
			&event.Timestamp,
			&uid,
			&event.TransactionID,
			&event.Subject,
			&event.Action,
			&event.Decision,
			&event.Reason,
			&event.RequestID,
			&event.ActorID,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		if uid != nil {
			event.UserID = id.UserID(*uid)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
