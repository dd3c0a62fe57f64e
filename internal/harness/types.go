package harness

import "github.com/roach88/commune/internal/ir"

// TraceEvent is one half of an audit log entry.
type TraceEvent struct {
	Type       string `json:"type"` // "invocation" or "completion"
	ActionURI  string `json:"action_uri,omitempty"`
	Caller     string `json:"caller,omitempty"` // scenario identity name
	OutputCase string `json:"output_case,omitempty"`
	Seq        int64  `json:"seq"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step matched its expectation and every
	// assertion held.
	Pass bool `json:"pass"`

	// Trace is the audit log of the run, in seq order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds step and assertion failures.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddEntry appends both halves of a log entry. names maps base58 keys back
// to scenario identity names.
func (r *Result) AddEntry(entry ir.LogEntry, names map[string]string) {
	caller := entry.Invocation.Caller
	if name, ok := names[caller]; ok {
		caller = name
	}
	r.Trace = append(r.Trace,
		TraceEvent{
			Type:      "invocation",
			ActionURI: entry.Invocation.ActionURI,
			Caller:    caller,
			Seq:       entry.Invocation.Seq,
		},
		TraceEvent{
			Type:       "completion",
			OutputCase: entry.Completion.OutputCase,
			Seq:        entry.Completion.Seq,
		},
	)
}
