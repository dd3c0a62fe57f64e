package harness

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/commune/internal/address"
	"github.com/roach88/commune/internal/engine"
	"github.com/roach88/commune/internal/ir"
	"github.com/roach88/commune/internal/store"
	"github.com/roach88/commune/internal/testutil"
)

// Deterministic defaults for scenarios that do not set them.
const (
	DefaultRequestID       = "scenario-request"
	DefaultClock     int64 = 1_700_000_000
)

// Harness runs one scenario against a private engine.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	clock  *testutil.ManualTime
	logger *zap.Logger

	pool  address.Key
	keys  map[string]address.Key // identity name -> key
	names map[string]string      // base58 key -> identity name
}

// Option configures a run.
type Option func(*Harness)

// WithLogger routes engine logs to l. Runs are silent by default.
func WithLogger(l *zap.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database with a manual wall
// clock and a fixed request ID, so identical scenarios produce identical
// traces. Step mismatches and failed assertions are reported in the
// result; the returned error is reserved for scenarios that cannot run.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	ctx := context.Background()

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h, err := newHarness(ctx, st, scenario, opts...)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	for i, step := range scenario.Setup {
		outcome, _, err := h.invoke(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("setup[%d] %s: %w", i, step.Invoke, err)
		}
		if outcome != ir.CaseSuccess {
			return nil, fmt.Errorf("setup[%d] %s: failed with %s", i, step.Invoke, outcome)
		}
	}

	for i, step := range scenario.Flow {
		outcome, rec, err := h.invoke(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("flow[%d] %s: %w", i, step.Invoke, err)
		}
		if msg := h.checkExpect(step, outcome, rec); msg != "" {
			result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, step.Invoke, msg))
		}
	}

	entries, err := st.ReadLog(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	for _, entry := range entries {
		result.AddEntry(entry, h.names)
	}

	for _, msg := range h.evaluate(ctx, result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

func newHarness(ctx context.Context, st *store.Store, scenario *Scenario, opts ...Option) (*Harness, error) {
	requestID := scenario.RequestID
	if requestID == "" {
		requestID = DefaultRequestID
	}
	start := scenario.Clock
	if start == 0 {
		start = DefaultClock
	}

	pool, _, err := engine.CommuneAddress()
	if err != nil {
		return nil, fmt.Errorf("derive commune address: %w", err)
	}

	h := &Harness{
		store:  st,
		clock:  testutil.NewManualTime(start),
		logger: zap.NewNop(),
		pool:   pool,
		keys:   map[string]address.Key{PoolHolder: pool},
		names: map[string]string{
			pool.String():          PoolHolder,
			address.Key{}.String(): "",
		},
	}
	for _, opt := range opts {
		opt(h)
	}

	h.engine, err = engine.New(ctx, st,
		engine.WithLogger(h.logger),
		engine.WithTimeSource(h.clock),
		engine.WithRequestIDGenerator(testutil.NewFixedRequestGenerator(requestID)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return h, nil
}

// identity resolves a scenario name to a key and remembers the reverse
// mapping for traces and record comparisons.
func (h *Harness) identity(name string) address.Key {
	if k, ok := h.keys[name]; ok {
		return k
	}
	k := testutil.Identity(name)
	h.keys[name] = k
	h.names[k.String()] = name
	return k
}

// invoke runs one step and returns its output case and the record the
// call returned, if any. Domain errors become the output case; anything
// else is returned as an error.
func (h *Harness) invoke(ctx context.Context, step Step) (string, interface{}, error) {
	op, ok := operations[step.Invoke]
	if !ok {
		return "", nil, fmt.Errorf("unknown operation %q", step.Invoke)
	}

	var caller address.Key
	if step.As != "" {
		caller = h.identity(step.As)
	}
	args := stepArgs{h: h, op: step.Invoke, values: step.Args}

	rec, err := op.run(ctx, h, caller, args)
	if err == nil {
		return ir.CaseSuccess, rec, nil
	}
	if code := engine.CodeOf(err); code != "" {
		return string(code), nil, nil
	}
	return "", nil, err
}

// checkExpect returns a mismatch description, or "" when the step met its
// expectation.
func (h *Harness) checkExpect(step Step, outcome string, rec interface{}) string {
	want := ir.CaseSuccess
	if step.Expect != nil {
		want = step.Expect.Case
	}
	if outcome != want {
		return fmt.Sprintf("expected case %s, got %s", want, outcome)
	}
	if step.Expect == nil || len(step.Expect.Result) == 0 {
		return ""
	}
	if rec == nil {
		return "expected a result record, got none"
	}
	fields, err := h.recordFields(rec)
	if err != nil {
		return err.Error()
	}
	return matchFields(fields, step.Expect.Result)
}
