package domain

import (
	"fmt"
	"time"
)

// SessionStatus is the lifecycle state of a search session.
type SessionStatus string

// Session statuses. Transitions only move forward:
// pending -> running -> completed | failed.
const (
	SessionPending   SessionStatus = "pending"
	SessionRunning   SessionStatus = "running"
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
)

// IsValid returns true if the status is recognised.
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionPending, SessionRunning, SessionCompleted, SessionFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are possible.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionCompleted || s == SessionFailed
}

// Rank orders statuses along the lifecycle. Terminal states share a rank.
func (s SessionStatus) Rank() int {
	switch s {
	case SessionPending:
		return 1
	case SessionRunning:
		return 2
	case SessionCompleted, SessionFailed:
		return 3
	default:
		return 0
	}
}

// CanTransition reports whether a session may move from one status to another.
// A session may fail from pending when it can never be admitted.
func CanTransition(from, to SessionStatus) bool {
	switch from {
	case SessionPending:
		return to == SessionRunning || to == SessionFailed
	case SessionRunning:
		return to == SessionCompleted || to == SessionFailed
	default:
		return false
	}
}

// CheckTransition returns ErrInvalidTransition when CanTransition is false.
func CheckTransition(from, to SessionStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// SearchSession is one query+grade submission and its processing record.
// Result is nil until the session completes and is set exactly once.
type SearchSession struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	Query     string        `json:"query"`
	Grade     GradeFilter   `json:"grade"`
	Status    SessionStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Result    []ResultItem  `json:"result"`
}

// OwnedBy reports whether the session belongs to the user.
func (s *SearchSession) OwnedBy(userID string) bool {
	return s.UserID == userID
}
