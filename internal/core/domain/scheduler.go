package domain

import "time"

// DefaultCapacity is the number of sessions allowed to run their pipeline
// concurrently when no capacity is configured.
const DefaultCapacity = 10

// SchedulerConfig holds admission queue configuration.
type SchedulerConfig struct {
	// Capacity is the worker pool size K. At most Capacity sessions run at once.
	Capacity int

	// DrainTimeout bounds how long shutdown waits for queued and in-flight work.
	DrainTimeout time.Duration
}

// EffectiveCapacity returns Capacity, or DefaultCapacity when unset.
func (c SchedulerConfig) EffectiveCapacity() int {
	if c.Capacity <= 0 {
		return DefaultCapacity
	}
	return c.Capacity
}

// DefaultSchedulerConfig returns sensible defaults for the scheduler.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Capacity:     DefaultCapacity,
		DrainTimeout: 2 * time.Minute,
	}
}

// SchedulerStats is a point-in-time view of the admission queue.
type SchedulerStats struct {
	// Capacity is the worker pool size.
	Capacity int `json:"capacity"`

	// Queued is the number of admitted-but-not-started sessions.
	Queued int `json:"queued"`

	// Running is the number of pipelines currently executing.
	Running int `json:"running"`

	// Processed counts pipelines that reached a terminal state.
	Processed int64 `json:"processed"`

	// Accepting is false once shutdown has begun.
	Accepting bool `json:"accepting"`
}
