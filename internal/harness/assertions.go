package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/roach88/commune/internal/engine"
	"github.com/roach88/commune/internal/layout"
)

// AssertionError describes a failed assertion with context.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

func (e *AssertionError) Error() string {
	msg := fmt.Sprintf("%s assertion failed:\n  expected: %s\n  actual: %s",
		e.Type, e.Expected, e.Actual)
	if len(e.Trace) > 0 {
		msg += "\n  trace:"
		for _, ev := range e.Trace {
			if ev.Type == "invocation" {
				msg += fmt.Sprintf("\n    [%d] invoke %s", ev.Seq, ev.ActionURI)
			} else {
				msg += fmt.Sprintf("\n    [%d] complete %s", ev.Seq, ev.OutputCase)
			}
		}
	}
	return msg
}

// call is an invocation event joined with its completion.
type call struct {
	action string
	caller string
	result string
	seq    int64
}

func calls(trace []TraceEvent) []call {
	var out []call
	for i := 0; i+1 < len(trace); i += 2 {
		out = append(out, call{
			action: trace[i].ActionURI,
			caller: trace[i].Caller,
			result: trace[i+1].OutputCase,
			seq:    trace[i].Seq,
		})
	}
	return out
}

func (c call) matches(action, outputCase string) bool {
	return c.action == action && (outputCase == "" || c.result == outputCase)
}

func describe(action, outputCase string) string {
	if outputCase == "" {
		return action
	}
	return action + " -> " + outputCase
}

// assertTraceContains checks that the action appears in the trace.
func assertTraceContains(trace []TraceEvent, a Assertion) error {
	for _, c := range calls(trace) {
		if c.matches(a.Action, a.Case) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: describe(a.Action, a.Case),
		Actual:   "not found",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the actions appear in the given relative
// order. Other calls may be interleaved.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, c := range calls(trace) {
		if next < len(a.Actions) && c.action == a.Actions[next] {
			next++
		}
	}
	if next == len(a.Actions) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("%v in order", a.Actions),
		Actual:   fmt.Sprintf("matched %d of %d, missing %s", next, len(a.Actions), a.Actions[next]),
		Trace:    trace,
	}
}

// assertTraceCount checks that the action appears exactly Count times.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, c := range calls(trace) {
		if c.matches(a.Action, a.Case) {
			count++
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%d occurrences of %s", a.Count, describe(a.Action, a.Case)),
		Actual:   fmt.Sprintf("%d occurrences", count),
		Trace:    trace,
	}
}

func (h *Harness) assertBalance(ctx context.Context, a Assertion) error {
	balance, err := h.engine.Balance(ctx, h.identity(a.Holder))
	if err != nil {
		return fmt.Errorf("balance of %s: %w", a.Holder, err)
	}
	got := strconv.FormatUint(balance, 10)
	if want := fmt.Sprint(a.Equals); got != want {
		return &AssertionError{
			Type:     AssertBalance,
			Expected: fmt.Sprintf("%s holds %s", a.Holder, want),
			Actual:   got,
		}
	}
	return nil
}

func (h *Harness) assertApproved(ctx context.Context, a Assertion) error {
	approved, err := h.engine.IsApproved(ctx, h.identity(a.Identity))
	if err != nil {
		return fmt.Errorf("approval of %s: %w", a.Identity, err)
	}
	if want := a.Equals.(bool); approved != want {
		return &AssertionError{
			Type:     AssertApproved,
			Expected: fmt.Sprintf("%s approved=%t", a.Identity, want),
			Actual:   fmt.Sprintf("approved=%t", approved),
		}
	}
	return nil
}

// assertRecord loads a record and matches its fields as a subset.
// Proposals carry an extra "status" field derived at the current time.
func (h *Harness) assertRecord(ctx context.Context, a Assertion) error {
	var (
		rec    interface{}
		status engine.ProposalStatus
		err    error
	)
	switch a.Record {
	case "commune":
		rec, err = h.engine.Commune(ctx)
	case "approver":
		rec, err = h.engine.Approver(ctx, h.identity(a.Identity))
	case "item":
		rec, err = h.engine.Item(ctx, a.ID)
	case "proposal":
		var p layout.Proposal
		p, err = h.engine.Proposal(ctx, a.ID)
		rec = p
		status = engine.StatusAt(p, h.clock.Now())
	case "vote":
		rec, err = h.engine.Vote(ctx, a.ID, h.identity(a.Identity))
	}
	if err != nil {
		return &AssertionError{
			Type:     AssertRecord,
			Expected: fmt.Sprintf("%s record", a.Record),
			Actual:   err.Error(),
		}
	}

	fields, err := h.recordFields(rec)
	if err != nil {
		return err
	}
	if status != "" {
		fields["status"] = string(status)
	}
	if msg := matchFields(fields, a.Expect); msg != "" {
		return &AssertionError{
			Type:     AssertRecord,
			Expected: fmt.Sprintf("%s record matching %v", a.Record, a.Expect),
			Actual:   msg,
		}
	}
	return nil
}

// identityFields hold keys and are compared by identity name.
var identityFields = map[string]bool{
	"seller": true,
	"buyer":  true,
	"owner":  true,
	"voter":  true,
}

// recordFields flattens a record to its JSON fields, with identity fields
// replaced by scenario names. The zero key maps to "".
func (h *Harness) recordFields(rec interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	for k, v := range fields {
		if !identityFields[k] {
			continue
		}
		if name, ok := h.names[fmt.Sprint(v)]; ok {
			fields[k] = name
		}
	}
	return fields, nil
}

// matchFields compares expected values against actual ones by their text
// form, so YAML integers match JSON numbers. Returns "" on a match.
func matchFields(actual, expected map[string]interface{}) string {
	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		got, ok := actual[k]
		if !ok {
			return fmt.Sprintf("field %q not present", k)
		}
		want := expected[k]
		if want == nil {
			want = ""
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			return fmt.Sprintf("field %q: expected %v, got %v", k, want, got)
		}
	}
	return ""
}

// evaluate runs all assertions and returns the failure messages.
func (h *Harness) evaluate(ctx context.Context, result *Result, assertions []Assertion) []string {
	var errors []string

	for i, a := range assertions {
		var err error

		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertBalance:
			err = h.assertBalance(ctx, a)
		case AssertApproved:
			err = h.assertApproved(ctx, a)
		case AssertRecord:
			err = h.assertRecord(ctx, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}

		if err != nil {
			errors = append(errors, fmt.Sprintf("assertion[%d]: %v", i, err))
		}
	}

	return errors
}
