// Package notify provides realtime notification adapters.
//
// Adapters:
//   - Hub: in-process fan-out to per-session subscribers
//   - Redis: cross-process pub/sub over a channel per session
//   - Fanout: publishes to several notifiers at once
package notify
