package sqlite

import (
	"context"
	"fmt"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driven"
)

// eventLog implements driven.EventLog.
type eventLog struct {
	store *Store
}

var _ driven.EventLog = (*eventLog)(nil)

// Append stores an event. Re-appending an existing id is ignored, so
// at-least-once writers cannot duplicate the trail.
func (l *eventLog) Append(ctx context.Context, event domain.SourceEvent) error {
	payload, err := marshalItems(event.Payload)
	if err != nil {
		return err
	}

	_, err = l.store.db.ExecContext(ctx, `
		INSERT INTO search_events (id, seq, session_id, user_id, site, status, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, event.ID, event.Seq, event.SessionID, event.UserID, event.Source, string(event.Status),
		payload, event.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving event: %w", err)
	}
	return nil
}

// List returns a session's events ordered by sequence.
func (l *eventLog) List(ctx context.Context, sessionID string) ([]domain.SourceEvent, error) {
	rows, err := l.store.db.QueryContext(ctx, `
		SELECT id, seq, session_id, user_id, site, status, payload, created_at
		FROM search_events
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	events := make([]domain.SourceEvent, 0)
	for rows.Next() {
		var e domain.SourceEvent
		var status, payload string
		if err := rows.Scan(&e.ID, &e.Seq, &e.SessionID, &e.UserID, &e.Source, &status,
			&payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		e.Status = domain.EventStatus(status)
		items, err := unmarshalItems(payload)
		if err != nil {
			return nil, err
		}
		e.Payload = items
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return events, nil
}
