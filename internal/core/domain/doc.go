// Package domain defines the core business entities for lessonscout.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SearchSession: One query+grade submission and its lifecycle
//   - SourceEvent: Append-only per-connector progress record
//   - ResultItem: A candidate learning resource
//   - Notification: A realtime change pushed to subscribers
//   - Projection: Subscriber-side idempotent view of a session
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
