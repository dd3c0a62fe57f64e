// Package engine implements the commune state machine.
//
// The engine exposes one method per operation: Initialize, Join,
// CreateItem, CreateMarketSale, AddProposal, VoteForProposal and
// ApproveProposal. Each runs as a single store transaction:
//
//  1. Derive the address of every record the call touches and check the
//     caller's nonce (creates) or the stored bump (loads).
//  2. Load the records and check access control and state.
//  3. Perform the transfer, if any.
//  4. Write the record mutations and the audit-log entry.
//
// The first failed check returns an *Error and the transaction rolls back,
// so a call commits all of its mutations and transfers or none. Rejected
// calls are then logged on their own with the error code as output case.
//
// Ordering: audit-log entries carry seq from a logical Clock. Proposal
// deadlines are compared against a TimeSource read once per call, never
// against seq.
package engine
