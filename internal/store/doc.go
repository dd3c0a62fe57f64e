// Package store provides the SQLite-backed host for the commune engine:
// address-keyed records, balance holdings and the audit log.
//
// # Tables
//
//   - records: one fixed-size slot per derived address (kind, bump, space, data)
//   - holdings: address -> balance, never negative
//   - invocations / completions: append-only audit log of every call
//
// # Atomicity
//
// Store.Update runs a callback inside one SQL transaction. Any error from
// the callback rolls back every record write, transfer and log row made
// through its Tx. This is the all-or-nothing boundary of an engine call.
//
// The handle is limited to a single connection, so transactions never
// interleave: two calls touching the same record are serialised.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
