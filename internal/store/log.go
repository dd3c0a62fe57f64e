package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/commune/internal/ir"
)

// WriteInvocation appends an invocation to the audit log.
// Uses ON CONFLICT(id) DO NOTHING: an ID is a content hash, so a duplicate
// is the same call written twice.
func (t *Tx) WriteInvocation(inv ir.Invocation) error {
	argsJSON, err := marshalObject(inv.Args)
	if err != nil {
		return fmt.Errorf("write invocation: %w", err)
	}

	_, err = t.tx.ExecContext(t.ctx, `
		INSERT INTO invocations
		(id, request_id, action_uri, caller, args, seq, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		inv.ID,
		inv.RequestID,
		inv.ActionURI,
		inv.Caller,
		argsJSON,
		inv.Seq,
		inv.EngineVersion,
		inv.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write invocation: %w", err)
	}
	return nil
}

// WriteCompletion appends the completion of an invocation.
// Each invocation has at most one completion (UNIQUE invocation_id).
//
// Note: The invocation referenced by InvocationID must exist (foreign key constraint).
func (t *Tx) WriteCompletion(comp ir.Completion) error {
	resultJSON, err := marshalObject(comp.Result)
	if err != nil {
		return fmt.Errorf("write completion: %w", err)
	}

	_, err = t.tx.ExecContext(t.ctx, `
		INSERT INTO completions
		(id, invocation_id, output_case, result, seq)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		comp.ID,
		comp.InvocationID,
		comp.OutputCase,
		resultJSON,
		comp.Seq,
	)
	if err != nil {
		return fmt.Errorf("write completion: %w", err)
	}
	return nil
}

// MaxSeq returns the highest logical clock value in the log, 0 when empty.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(
			COALESCE((SELECT MAX(seq) FROM invocations), 0),
			COALESCE((SELECT MAX(seq) FROM completions), 0)
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("max seq: %w", err)
	}
	return seq, nil
}

const logQuery = `
	SELECT i.id, i.request_id, i.action_uri, i.caller, i.args, i.seq, i.engine_version, i.ir_version,
	       c.id, c.output_case, c.result, c.seq
	FROM invocations i
	JOIN completions c ON c.invocation_id = i.id
`

// ReadLog returns the newest limit entries in ascending seq order.
// limit <= 0 returns the whole log.
func (s *Store) ReadLog(ctx context.Context, limit int) ([]ir.LogEntry, error) {
	if limit <= 0 {
		return s.queryLog(ctx, logQuery+` ORDER BY i.seq ASC, i.id COLLATE BINARY ASC`)
	}
	// Everything newer than the (limit+1)-th newest invocation.
	return s.queryLog(ctx, logQuery+`
		WHERE i.seq > COALESCE((
			SELECT seq FROM invocations ORDER BY seq DESC LIMIT 1 OFFSET ?
		), -1)
		ORDER BY i.seq ASC, i.id COLLATE BINARY ASC
	`, limit)
}

// ReadRequest returns the entries recorded under one request ID.
func (s *Store) ReadRequest(ctx context.Context, requestID string) ([]ir.LogEntry, error) {
	return s.queryLog(ctx, logQuery+`
		WHERE i.request_id = ?
		ORDER BY i.seq ASC, i.id COLLATE BINARY ASC
	`, requestID)
}

func (s *Store) queryLog(ctx context.Context, query string, args ...any) ([]ir.LogEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query log: %w", err)
	}
	defer rows.Close()

	entries := []ir.LogEntry{}
	for rows.Next() {
		entry, err := scanLogEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate log: %w", err)
	}
	return entries, nil
}

func scanLogEntry(rows *sql.Rows) (ir.LogEntry, error) {
	var (
		inv                  ir.Invocation
		comp                 ir.Completion
		argsJSON, resultJSON string
	)
	err := rows.Scan(
		&inv.ID, &inv.RequestID, &inv.ActionURI, &inv.Caller, &argsJSON, &inv.Seq,
		&inv.EngineVersion, &inv.IRVersion,
		&comp.ID, &comp.OutputCase, &resultJSON, &comp.Seq,
	)
	if err != nil {
		return ir.LogEntry{}, fmt.Errorf("scan log entry: %w", err)
	}

	if inv.Args, err = unmarshalObject(argsJSON); err != nil {
		return ir.LogEntry{}, err
	}
	if comp.Result, err = unmarshalObject(resultJSON); err != nil {
		return ir.LogEntry{}, err
	}
	comp.InvocationID = inv.ID
	return ir.LogEntry{Invocation: inv, Completion: comp}, nil
}
