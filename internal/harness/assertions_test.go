package harness

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTrace() []TraceEvent {
	return []TraceEvent{
		{Type: "invocation", ActionURI: "Commune.initialize", Caller: "admin", Seq: 1},
		{Type: "completion", OutputCase: "Success", Seq: 2},
		{Type: "invocation", ActionURI: "Commune.join", Caller: "alice", Seq: 3},
		{Type: "completion", OutputCase: "Success", Seq: 4},
		{Type: "invocation", ActionURI: "Commune.join", Caller: "bob", Seq: 5},
		{Type: "completion", OutputCase: "TransferFailed", Seq: 6},
	}
}

func TestAssertTraceContains(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceContains(trace, Assertion{Action: "Commune.join"}))
	assert.NoError(t, assertTraceContains(trace, Assertion{Action: "Commune.join", Case: "TransferFailed"}))
	assert.Error(t, assertTraceContains(trace, Assertion{Action: "Commune.initialize", Case: "RecordExists"}))
	assert.Error(t, assertTraceContains(trace, Assertion{Action: "Commune.createItem"}))
}

func TestAssertTraceOrder(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceOrder(trace, Assertion{Actions: []string{"Commune.initialize", "Commune.join"}}))
	assert.NoError(t, assertTraceOrder(trace, Assertion{Actions: []string{"Commune.join", "Commune.join"}}))

	err := assertTraceOrder(trace, Assertion{Actions: []string{"Commune.join", "Commune.initialize"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matched 1 of 2, missing Commune.initialize")
}

func TestAssertTraceCount(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceCount(trace, Assertion{Action: "Commune.join", Count: 2}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Action: "Commune.join", Case: "Success", Count: 1}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Action: "Commune.createItem", Count: 0}))

	err := assertTraceCount(trace, Assertion{Action: "Commune.join", Count: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 occurrences of Commune.join")
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	err := &AssertionError{
		Type:     AssertTraceContains,
		Expected: "Commune.createItem",
		Actual:   "not found",
		Trace:    sampleTrace()[:2],
	}

	msg := err.Error()
	assert.Contains(t, msg, "trace_contains assertion failed")
	assert.Contains(t, msg, "[1] invoke Commune.initialize")
	assert.Contains(t, msg, "[2] complete Success")
}

func TestMatchFields(t *testing.T) {
	actual := map[string]interface{}{
		"price": json.Number("103"),
		"sold":  true,
		"buyer": "",
		"title": "Bicycle",
	}

	assert.Empty(t, matchFields(actual, map[string]interface{}{"price": 103, "sold": true}))
	assert.Empty(t, matchFields(actual, map[string]interface{}{"buyer": nil}))
	assert.Empty(t, matchFields(actual, map[string]interface{}{"title": "Bicycle"}))
	assert.Equal(t, `field "price": expected 100, got 103`, matchFields(actual, map[string]interface{}{"price": 100}))
	assert.Equal(t, `field "owner" not present`, matchFields(actual, map[string]interface{}{"owner": "alice"}))
}

func TestTraceSnapshot_Canonical(t *testing.T) {
	snapshot := TraceSnapshot{
		ScenarioName: "s",
		RequestID:    "r",
		Trace:        sampleTrace()[:2],
	}

	got, err := snapshot.Canonical()
	require.NoError(t, err)
	assert.Equal(t,
		`{"request_id":"r","scenario_name":"s","trace":[`+
			`{"action_uri":"Commune.initialize","caller":"admin","seq":1,"type":"invocation"},`+
			`{"output_case":"Success","seq":2,"type":"completion"}]}`,
		string(got))
}
