// Package sync implements the synchronization and identity-reconciliation
// engine.
//
// The engine pulls from two authoritative sources: the identity directory
// (people and device registrations) and the device-management service
// (hardware and software inventory). Observations from both are matched
// onto one device record set by a priority-ordered key cascade (external
// id, then normalized serial, then fuzzy name), ownership conflicts are
// resolved by the Reconciler into a temporal assignment history, and the
// Orchestrator drives multi-stage runs through a durable state machine
// that never leaves a run record open.
//
// # Core types
//
//   - Matcher: resolves one observation to an existing device record
//   - Reconciler: picks winning owners and maintains assignment history
//   - DirectoryTask / DeviceTask: the per-source sync passes
//   - Orchestrator: runs the tasks in dependency order under one Sync Run
//   - Reporter: poller-facing view of run state
//   - Coordinator: ticker-based scheduled full syncs
package sync
