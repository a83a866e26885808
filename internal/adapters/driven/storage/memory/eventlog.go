package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driven"
)

// Ensure EventLog implements the interface.
var _ driven.EventLog = (*EventLog)(nil)

// EventLog is an in-memory implementation of driven.EventLog.
type EventLog struct {
	mu     sync.RWMutex
	events map[string][]domain.SourceEvent
}

// NewEventLog creates a new in-memory event log.
func NewEventLog() *EventLog {
	return &EventLog{
		events: make(map[string][]domain.SourceEvent),
	}
}

// Append stores an event. Appending an id twice is a no-op.
func (l *EventLog) Append(_ context.Context, event domain.SourceEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.events[event.SessionID] {
		if e.ID == event.ID {
			return nil
		}
	}
	event.Payload = append([]domain.ResultItem{}, event.Payload...)
	l.events[event.SessionID] = append(l.events[event.SessionID], event)
	return nil
}

// List returns a session's events ordered by sequence.
func (l *EventLog) List(_ context.Context, sessionID string) ([]domain.SourceEvent, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	stored := l.events[sessionID]
	result := make([]domain.SourceEvent, len(stored))
	copy(result, stored)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Seq < result[j].Seq
	})
	return result, nil
}
