package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			require.Equal(t, name, scenario.Name)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "scenario failed:\n%s", strings.Join(result.Errors, "\n"))
		})
	}
}

func mustParse(t *testing.T, content string) *Scenario {
	t.Helper()
	scenario, err := ParseScenario([]byte(content))
	require.NoError(t, err)
	return scenario
}

const genesis = `
  - invoke: Commune.initialize
    as: admin
    args: { join_fee: 10, tax_percent: 3, unit_scale: 1 }
`

func TestRun_Deterministic(t *testing.T) {
	scenario := mustParse(t, `
name: deterministic
description: "two runs produce the same trace"
flow:`+genesis+`
assertions:
  - type: trace_count
    action: Commune.initialize
    count: 1
`)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, first.Pass)
	assert.Equal(t, first.Trace, second.Trace)
	require.Len(t, first.Trace, 2)
	assert.Equal(t, TraceEvent{Type: "invocation", ActionURI: "Commune.initialize", Caller: "admin", Seq: 1}, first.Trace[0])
	assert.Equal(t, TraceEvent{Type: "completion", OutputCase: "Success", Seq: 2}, first.Trace[1])
}

func TestRun_UnexpectedCaseFails(t *testing.T) {
	scenario := mustParse(t, `
name: unexpected_case
description: "join without funds is expected to succeed"
flow:`+genesis+`
  - invoke: Commune.join
    as: alice
assertions:
  - type: trace_contains
    action: Commune.join
`)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "flow[1] Commune.join: expected case Success, got TransferFailed")
}

func TestRun_ResultMismatchFails(t *testing.T) {
	scenario := mustParse(t, `
name: result_mismatch
description: "listed price includes the tax"
setup:
  - invoke: Host.fund
    args: { holder: alice, amount: 13 }
flow:`+genesis+`
  - invoke: Commune.join
    as: alice
  - invoke: Commune.createItem
    as: alice
    args: { id: 1, title: "Bicycle", description: "Red", price: 100 }
    expect:
      case: Success
      result: { price: 100 }
assertions:
  - type: balance
    holder: pool
    equals: 13
`)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], `field "price": expected 100, got 103`)
}

func TestRun_FailedAssertions(t *testing.T) {
	scenario := mustParse(t, `
name: failed_assertions
description: "every assertion type reports a mismatch"
flow:`+genesis+`
assertions:
  - type: trace_contains
    action: Commune.join
  - type: trace_order
    actions: [Commune.join, Commune.initialize]
  - type: trace_count
    action: Commune.initialize
    count: 2
  - type: balance
    holder: pool
    equals: 5
  - type: approved
    identity: alice
    equals: true
  - type: record
    record: commune
    expect: { fee: 11 }
  - type: record
    record: item
    id: 9
    expect: { sold: false }
`)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 7)
	assert.Contains(t, result.Errors[0], "trace_contains assertion failed")
	assert.Contains(t, result.Errors[1], "missing Commune.join")
	assert.Contains(t, result.Errors[2], "1 occurrences")
	assert.Contains(t, result.Errors[3], "pool holds 5")
	assert.Contains(t, result.Errors[4], "approved=false")
	assert.Contains(t, result.Errors[5], `field "fee": expected 11, got 10`)
	assert.Contains(t, result.Errors[6], "item record")
}

func TestRun_ExplicitNonce(t *testing.T) {
	scenario := mustParse(t, `
name: explicit_nonce
description: "a non-canonical nonce is rejected"
flow:
  - invoke: Commune.initialize
    as: admin
    args: { join_fee: 10, tax_percent: 3, unit_scale: 1, nonce: 0 }
    expect:
      case: InvalidAddress
assertions:
  - type: trace_count
    action: Commune.initialize
    case: InvalidAddress
    count: 1
`)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, strings.Join(result.Errors, "\n"))
}

func TestRun_ClockSet(t *testing.T) {
	scenario := mustParse(t, `
name: clock_set
description: "proposals stamp the wall clock"
clock: 1000
setup:
  - invoke: Host.fund
    args: { holder: owner, amount: 10 }
flow:`+genesis+`
  - invoke: Commune.join
    as: owner
  - invoke: Clock.set
    args: { now: 5000 }
  - invoke: Commune.addProposal
    as: owner
    args: { id: 1, title: "t", description: "d", amount: 1, end_timestamp: 6000 }
    expect:
      case: Success
      result: { created_at: 5000 }
assertions:
  - type: record
    record: proposal
    id: 1
    expect: { status: open }
`)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, strings.Join(result.Errors, "\n"))
}

func TestRun_SetupFailureIsError(t *testing.T) {
	scenario := mustParse(t, `
name: setup_failure
description: "setup steps must succeed"
setup:
  - invoke: Commune.join
    as: alice
flow:`+genesis+`
assertions:
  - type: trace_count
    action: Commune.join
    count: 1
`)

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup[0] Commune.join: failed with RecordNotFound")
}

func TestRun_MissingArgumentIsError(t *testing.T) {
	scenario := mustParse(t, `
name: missing_argument
description: "arguments are checked before the call"
flow:`+genesis+`
  - invoke: Commune.createMarketSale
    as: bob
    args: { id: 1 }
assertions:
  - type: trace_count
    action: Commune.createMarketSale
    count: 0
`)

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing argument "seller"`)
}
