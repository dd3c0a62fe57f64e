package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance scenario: a sequence of calls against a
// fresh commune and the assertions that must hold afterwards.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// RequestID is stamped on every log entry. Defaults to
	// DefaultRequestID.
	RequestID string `yaml:"request_id,omitempty"`

	// Clock is the wall-clock time (unix seconds) at the start of the run.
	// Defaults to DefaultClock.
	Clock int64 `yaml:"clock,omitempty"`

	// Setup steps run before the flow and must succeed.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow is the main sequence of calls.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step invokes one operation.
type Step struct {
	// Invoke is an action URI such as "Commune.join", or one of the clock
	// controls "Clock.advance" and "Clock.set".
	Invoke string `yaml:"invoke"`

	// As names the caller. Names map to deterministic identities.
	As string `yaml:"as,omitempty"`

	// Args holds the operation arguments. Identity-valued arguments
	// (holder, seller, owner) are names, like As.
	Args map[string]interface{} `yaml:"args,omitempty"`

	// Expect is the expected outcome. Nil means the call must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Case is "Success" or an error code such as "WrongSeller".
	Case string `yaml:"case"`

	// Result is matched as a subset against the record the call returned.
	Result map[string]interface{} `yaml:"result,omitempty"`
}

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Action is the action URI (trace_contains, trace_count).
	Action string `yaml:"action,omitempty"`

	// Case narrows trace_contains and trace_count to one output case.
	Case string `yaml:"case,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// Actions is the expected action order (trace_order).
	Actions []string `yaml:"actions,omitempty"`

	// Holder is an identity name or "pool" (balance).
	Holder string `yaml:"holder,omitempty"`

	// Identity is an identity name (approved, and approver/vote records).
	Identity string `yaml:"identity,omitempty"`

	// Record is the record kind: commune, approver, item, proposal or vote
	// (record).
	Record string `yaml:"record,omitempty"`

	// ID is the item or proposal ID (record).
	ID uint64 `yaml:"id,omitempty"`

	// Equals is the expected scalar (balance, approved).
	Equals interface{} `yaml:"equals,omitempty"`

	// Expect is matched as a subset against the record fields (record).
	Expect map[string]interface{} `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertBalance       = "balance"
	AssertApproved      = "approved"
	AssertRecord        = "record"
)

// PoolHolder names the commune pool in balance assertions and fund steps.
const PoolHolder = "pool"

var knownRecords = map[string]bool{
	"commune":  true,
	"approver": true,
	"item":     true,
	"proposal": true,
	"vote":     true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Setup {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
		if step.Expect != nil {
			return fmt.Errorf("setup[%d]: expect is not allowed in setup", i)
		}
	}

	for i, step := range s.Flow {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
		if step.Expect != nil && step.Expect.Case == "" {
			return fmt.Errorf("flow[%d].expect: case is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(step Step) error {
	if step.Invoke == "" {
		return fmt.Errorf("invoke is required")
	}
	op, ok := operations[step.Invoke]
	if !ok {
		return fmt.Errorf("unknown operation %q", step.Invoke)
	}
	if op.needsCaller && step.As == "" {
		return fmt.Errorf("%s requires a caller (as)", step.Invoke)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertBalance:
		if a.Holder == "" {
			return fmt.Errorf("assertions[%d]: holder is required for balance", index)
		}
		if a.Equals == nil {
			return fmt.Errorf("assertions[%d]: equals is required for balance", index)
		}
	case AssertApproved:
		if a.Identity == "" {
			return fmt.Errorf("assertions[%d]: identity is required for approved", index)
		}
		if _, ok := a.Equals.(bool); !ok {
			return fmt.Errorf("assertions[%d]: equals must be a boolean for approved", index)
		}
	case AssertRecord:
		if !knownRecords[a.Record] {
			return fmt.Errorf("assertions[%d]: unknown record kind %q", index, a.Record)
		}
		if (a.Record == "approver" || a.Record == "vote") && a.Identity == "" {
			return fmt.Errorf("assertions[%d]: identity is required for %s records", index, a.Record)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for record", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
