package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/commune/internal/ir"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	RequestID string
	Action    string // optional - filter to specific action
	Limit     int
}

// TraceEvent is one audit log entry in trace output.
type TraceEvent struct {
	Seq           int64       `json:"seq"`
	ID            string      `json:"id"`
	RequestID     string      `json:"request_id"`
	ActionURI     string      `json:"action_uri"`
	Caller        string      `json:"caller,omitempty"`
	Args          ir.IRObject `json:"args"`
	CompletionSeq int64       `json:"completion_seq"`
	OutputCase    string      `json:"output_case"`
	Result        ir.IRObject `json:"result"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Entries []TraceEvent `json:"entries"`
	Stats   TraceStats   `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	Calls     int `json:"calls"`
	Succeeded int `json:"succeeded"`
	Rejected  int `json:"rejected"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the audit log",
		Long: `Show the audit log: every call with its arguments and outcome, in
sequence order. Rejected calls appear with their error code.

Examples:
  commune trace --limit 20
  commune trace --request 0190a6f2-7c1e-7b3a-9d2e-3f4a5b6c7d8e
  commune trace --action Commune.createItem --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.RequestID, "request", "", "only entries with this request ID")
	cmd.Flags().StringVar(&opts.Action, "action", "", "filter to specific action URI")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "only the newest N entries (0 = all)")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	var entries []ir.LogEntry
	if opts.RequestID != "" {
		entries, err = s.store.ReadRequest(s.ctx, opts.RequestID)
	} else {
		entries, err = s.store.ReadLog(s.ctx, opts.Limit)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read audit log", err)
	}

	result := buildTrace(entries, opts.Action)
	if opts.Format == "json" {
		return outputTraceJSON(cmd, result)
	}
	return outputTraceText(cmd, result, opts.Verbose)
}

// buildTrace converts log entries to trace output, keeping only actionFilter
// when it is set.
func buildTrace(entries []ir.LogEntry, actionFilter string) TraceResult {
	result := TraceResult{Entries: []TraceEvent{}}
	for _, e := range entries {
		if actionFilter != "" && e.Invocation.ActionURI != actionFilter {
			continue
		}
		result.Entries = append(result.Entries, TraceEvent{
			Seq:           e.Invocation.Seq,
			ID:            e.Invocation.ID,
			RequestID:     e.Invocation.RequestID,
			ActionURI:     e.Invocation.ActionURI,
			Caller:        e.Invocation.Caller,
			Args:          e.Invocation.Args,
			CompletionSeq: e.Completion.Seq,
			OutputCase:    e.Completion.OutputCase,
			Result:        e.Completion.Result,
		})
		result.Stats.Calls++
		if e.Completion.Succeeded() {
			result.Stats.Succeeded++
		} else {
			result.Stats.Rejected++
		}
	}
	return result
}

// outputTraceJSON outputs the trace result as JSON.
func outputTraceJSON(cmd *cobra.Command, result TraceResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// outputTraceText outputs the trace result as text.
func outputTraceText(cmd *cobra.Command, result TraceResult, verbose bool) error {
	w := cmd.OutOrStdout()

	if len(result.Entries) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return nil
	}

	for _, e := range result.Entries {
		caller := e.Caller
		if caller == "" {
			caller = "-"
		}
		fmt.Fprintf(w, "[%d] %s by %s -> %s\n", e.Seq, e.ActionURI, caller, e.OutputCase)
		if verbose {
			args, _ := ir.MarshalCanonical(e.Args)
			res, _ := ir.MarshalCanonical(e.Result)
			fmt.Fprintf(w, "      request: %s\n", e.RequestID)
			fmt.Fprintf(w, "      args:    %s\n", args)
			fmt.Fprintf(w, "      result:  %s\n", res)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d calls: %d succeeded, %d rejected\n",
		result.Stats.Calls, result.Stats.Succeeded, result.Stats.Rejected)
	return nil
}
