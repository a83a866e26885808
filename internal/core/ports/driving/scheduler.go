package driving

import (
	"context"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
)

// Scheduler is the bounded admission queue in front of the search pipeline.
type Scheduler interface {
	// Start launches the worker pool. It returns immediately.
	Start(ctx context.Context) error

	// Submit enqueues a pending session in FIFO order.
	// Returns domain.ErrSchedulerStopped once shutdown has begun.
	Submit(sessionID string) error

	// Stop stops accepting work and drains queued and in-flight sessions,
	// giving up when ctx is done.
	Stop(ctx context.Context) error

	// Stats reports queue depth and in-flight count.
	Stats() domain.SchedulerStats
}

// SessionRunner executes the pipeline for one admitted session.
type SessionRunner interface {
	Run(ctx context.Context, sessionID string) error
}
