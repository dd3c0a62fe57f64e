package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/commune/internal/ir"
)

// TraceSnapshot captures the trace of a scenario execution.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	RequestID    string       `json:"request_id"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical
// JSON serialization. ir.MarshalCanonical only handles IR types and
// primitives.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"type": event.Type,
			"seq":  event.Seq,
		}
		if event.ActionURI != "" {
			eventMap["action_uri"] = event.ActionURI
		}
		if event.Caller != "" {
			eventMap["caller"] = event.Caller
		}
		if event.OutputCase != "" {
			eventMap["output_case"] = event.OutputCase
		}
		traceList[i] = eventMap
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"request_id":    s.RequestID,
		"trace":         traceList,
	}
}

// Canonical returns the canonical JSON of the snapshot.
func (s *TraceSnapshot) Canonical() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check Pass.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	requestID := scenario.RequestID
	if requestID == "" {
		requestID = DefaultRequestID
	}
	if err := assertSnapshot(t, TraceSnapshot{
		ScenarioName: scenario.Name,
		RequestID:    requestID,
		Trace:        result.Trace,
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's trace against a golden file.
func AssertGolden(t *testing.T, scenarioName, requestID string, result *Result) error {
	t.Helper()

	return assertSnapshot(t, TraceSnapshot{
		ScenarioName: scenarioName,
		RequestID:    requestID,
		Trace:        result.Trace,
	})
}

func assertSnapshot(t *testing.T, snapshot TraceSnapshot) error {
	t.Helper()

	traceJSON, err := snapshot.Canonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, snapshot.ScenarioName, traceJSON)

	return nil
}
