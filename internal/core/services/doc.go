// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The search pipeline lives here: SessionService submits sessions to the
// Scheduler, whose workers run the Aggregator over the ConnectorRegistry and
// pass the merged results through the RelevanceFilter. EventRecorder is the
// only writer of per-source progress events.
package services
