package domain

// NotificationKind distinguishes realtime payloads.
type NotificationKind string

// Notification kinds.
const (
	NotifyEvent   NotificationKind = "event"
	NotifySession NotificationKind = "session"
)

// Notification is a realtime change published to subscribers of a session.
// Delivery is at-least-once and unordered across sources.
type Notification struct {
	Kind      NotificationKind `json:"kind"`
	SessionID string           `json:"sessionId"`
	Event     *SourceEvent     `json:"event,omitempty"`
	Session   *SearchSession   `json:"session,omitempty"`
}

// EventNotification wraps a source event.
func EventNotification(e SourceEvent) Notification {
	return Notification{Kind: NotifyEvent, SessionID: e.SessionID, Event: &e}
}

// SessionNotification wraps a session snapshot.
func SessionNotification(s SearchSession) Notification {
	return Notification{Kind: NotifySession, SessionID: s.ID, Session: &s}
}
