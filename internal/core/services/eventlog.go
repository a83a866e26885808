package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driven"
	"github.com/custodia-labs/lessonscout/internal/logger"
)

var recorderLog = logger.With("events")

// EventRecorder stamps, persists and publishes source events.
// Sequence numbers are monotonic within the process and seeded from the wall
// clock so they keep increasing across restarts.
type EventRecorder struct {
	log      driven.EventLog
	notifier driven.Notifier

	seq   atomic.Int64
	now   func() time.Time
	newID func() string
}

// NewEventRecorder creates a recorder. The notifier may be nil.
func NewEventRecorder(log driven.EventLog, notifier driven.Notifier) *EventRecorder {
	r := &EventRecorder{
		log:      log,
		notifier: notifier,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	r.seq.Store(time.Now().UnixMicro())
	return r
}

// Record appends an event for one connector invocation and publishes it.
// A nil payload is stored as an empty list. Publish failures are logged and
// never returned; persistence failures are returned wrapped in
// domain.ErrPersistence.
func (r *EventRecorder) Record(
	ctx context.Context,
	req domain.SearchRequest,
	source string,
	status domain.EventStatus,
	payload []domain.ResultItem,
) (domain.SourceEvent, error) {
	if payload == nil {
		payload = []domain.ResultItem{}
	}
	event := domain.SourceEvent{
		ID:        r.newID(),
		Seq:       r.seq.Add(1),
		SessionID: req.SessionID,
		UserID:    req.UserID,
		Source:    source,
		Status:    status,
		Payload:   payload,
		CreatedAt: r.now().UTC(),
	}

	if err := r.log.Append(ctx, event); err != nil {
		return event, fmt.Errorf("%w: append %s event for %s: %w", domain.ErrPersistence, status, source, err)
	}

	if r.notifier != nil {
		if err := r.notifier.Publish(ctx, domain.EventNotification(event)); err != nil {
			recorderLog.Warn("publish %s/%s: %v", event.SessionID, source, err)
		}
	}
	return event, nil
}

// List returns a session's events ordered by sequence.
func (r *EventRecorder) List(ctx context.Context, sessionID string) ([]domain.SourceEvent, error) {
	events, err := r.log.List(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: list events: %w", domain.ErrPersistence, err)
	}
	return events, nil
}
