// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Connector: Fetches candidate results from one content source
//   - SessionStore: Search session and result persistence
//   - EventLog: Append-only per-source progress events
//   - Notifier: Realtime fan-out of changes
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RelevanceScorer: Without it, the merged candidates are returned unfiltered.
//   - LLMService: Backs the default scorer and CK12 extraction.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
