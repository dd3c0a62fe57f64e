package ir

// CaseSuccess is the output case of a committed call. Failed calls use
// their error code as the output case.
const CaseSuccess = "Success"

// Invocation records one call into the engine.
type Invocation struct {
	ID            string   `json:"id"` // content-addressed
	RequestID     string   `json:"request_id"`
	ActionURI     string   `json:"action_uri"` // e.g. "Commune.createItem"
	Caller        string   `json:"caller"`     // base58 identity, "" when none
	Args          IRObject `json:"args"`
	Seq           int64    `json:"seq"` // logical clock
	EngineVersion string   `json:"engine_version"`
	IRVersion     string   `json:"ir_version"`
}

// Completion records the outcome of an invocation.
type Completion struct {
	ID           string   `json:"id"` // content-addressed
	InvocationID string   `json:"invocation_id"`
	OutputCase   string   `json:"output_case"`
	Result       IRObject `json:"result"`
	Seq          int64    `json:"seq"`
}

// Succeeded reports whether the call committed.
func (c Completion) Succeeded() bool {
	return c.OutputCase == CaseSuccess
}

// LogEntry pairs an invocation with its completion.
type LogEntry struct {
	Invocation Invocation `json:"invocation"`
	Completion Completion `json:"completion"`
}
