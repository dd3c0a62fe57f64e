// Package harness runs commune conformance scenarios.
//
// A scenario is a YAML file describing a sequence of calls against a fresh
// commune, the outcome each call must have, and assertions over the final
// trace and state. Every run uses an in-memory store, a manual wall clock
// and a fixed request ID, so the audit log it produces is reproducible and
// can be compared against a golden file.
//
// # Scenario Format
//
//	name: market_sale
//	description: "A member lists an item and another member buys it"
//	request_id: market-sale
//	clock: 1700000000
//	setup:
//	  - invoke: Host.fund
//	    args: { holder: alice, amount: 100 }
//	flow:
//	  - invoke: Commune.initialize
//	    as: admin
//	    args: { join_fee: 10, tax_percent: 3, unit_scale: 1 }
//	  - invoke: Commune.createMarketSale
//	    as: bob
//	    args: { id: 1, seller: mallory }
//	    expect:
//	      case: WrongSeller
//	assertions:
//	  - type: balance
//	    holder: pool
//	    equals: 23
//	  - type: record
//	    record: item
//	    id: 1
//	    expect: { sold: true, buyer: bob }
//
// Caller and identity-valued arguments are names; each name maps to a
// fixed key (testutil.Identity). "pool" names the commune pool. Nonces
// default to the canonical bump of the record being created. A step
// without expect must succeed.
//
// # Operations
//
// Commune.initialize, Commune.join, Commune.createItem,
// Commune.createMarketSale, Commune.addProposal, Commune.voteForProposal,
// Commune.approveProposal and Host.fund call the engine. Clock.advance
// (seconds) and Clock.set (now) move the wall clock and are not logged.
//
// # Assertion Types
//
//   - trace_contains: an action (optionally with a given case) was called
//   - trace_order: actions were called in the given relative order
//   - trace_count: an action (optionally with a given case) was called N times
//   - balance: a holding has an exact balance
//   - approved: an identity's approval state
//   - record: a record's fields match a subset; proposals add "status"
package harness
