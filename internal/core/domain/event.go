package domain

import "time"

// EventStatus is the lifecycle stage of one connector invocation.
type EventStatus string

// Event statuses. Every invocation emits EventStarted followed by exactly one
// of EventCompleted or EventFailed.
const (
	EventStarted   EventStatus = "started"
	EventCompleted EventStatus = "completed"
	EventFailed    EventStatus = "failed"
)

// IsTerminal reports whether the status closes an invocation.
func (s EventStatus) IsTerminal() bool {
	return s == EventCompleted || s == EventFailed
}

// IsValid returns true if the status is recognised.
func (s EventStatus) IsValid() bool {
	switch s {
	case EventStarted, EventCompleted, EventFailed:
		return true
	default:
		return false
	}
}

// SourceEvent is an append-only progress record for one connector within a
// session. Payload is populated only on EventCompleted and may be empty when
// the source ran fine but found nothing.
type SourceEvent struct {
	ID        string       `json:"id"`
	Seq       int64        `json:"seq"`
	SessionID string       `json:"sessionId"`
	UserID    string       `json:"userId"`
	Source    string       `json:"source"`
	Status    EventStatus  `json:"status"`
	Payload   []ResultItem `json:"payload"`
	CreatedAt time.Time    `json:"createdAt"`
}

// CountTerminal returns how many events in the slice are terminal.
func CountTerminal(events []SourceEvent) int {
	n := 0
	for i := range events {
		if events[i].Status.IsTerminal() {
			n++
		}
	}
	return n
}
