// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/lessonscout/internal/core/domain"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driving"
)

// WatchOpened carries the initial snapshot and live feed of a session.
type WatchOpened struct {
	Watch *driving.SessionWatch
}

// WatchFailed is sent when the session could not be opened.
type WatchFailed struct {
	Err error
}

// Updated carries one live notification.
type Updated struct {
	Notification domain.Notification
}

// StreamClosed is sent when the live feed ends before the session finished.
type StreamClosed struct{}
