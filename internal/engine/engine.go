package engine

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/roach88/commune/internal/address"
	"github.com/roach88/commune/internal/ir"
	"github.com/roach88/commune/internal/store"
)

// Engine runs the commune state machine over a store.
//
// Each operation is one store transaction: it commits every record
// mutation and transfer it makes, or none of them. Operations are
// serialised by the engine so audit-log seq order matches commit order.
//
// Thread-safety: all exported methods are safe for concurrent use.
type Engine struct {
	mu     sync.Mutex // single writer
	store  *store.Store
	clock  *Clock
	now    TimeSource
	reqGen RequestIDGenerator
	log    *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Default: zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithTimeSource sets the wall clock used for proposal windows.
// Default: SystemTime.
func WithTimeSource(ts TimeSource) Option {
	return func(e *Engine) {
		e.now = ts
	}
}

// WithRequestIDGenerator sets the generator used for calls whose context
// carries no request ID. Default: UUIDv7Generator.
func WithRequestIDGenerator(g RequestIDGenerator) Option {
	return func(e *Engine) {
		e.reqGen = g
	}
}

// New creates an Engine over s. The logical clock resumes after the
// highest seq already in the audit log.
func New(ctx context.Context, s *store.Store, opts ...Option) (*Engine, error) {
	maxSeq, err := s.MaxSeq(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	e := &Engine{
		store:  s,
		clock:  NewClockAt(maxSeq),
		now:    SystemTime{},
		reqGen: UUIDv7Generator{},
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Store returns the store the engine writes to.
func (e *Engine) Store() *store.Store {
	return e.store
}

// call describes one audit-logged operation.
type call struct {
	action string // e.g. "Commune.createItem"
	caller address.Key
	args   ir.IRObject
}

// execute runs fn in one transaction and appends the call to the audit log.
//
// On success the invocation and its Success completion commit with fn's
// writes. On a domain failure everything fn did is rolled back, and the
// invocation is logged in a separate transaction with the error code as
// its output case. Infrastructure failures are returned without a log entry.
func (e *Engine) execute(ctx context.Context, c call, fn func(t *txn) (ir.IRObject, error)) (ir.IRObject, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	requestID, ok := RequestIDFrom(ctx)
	if !ok {
		requestID = e.reqGen.Generate()
	}
	now := e.now.Now()

	inv, err := e.invocation(requestID, c)
	if err != nil {
		return nil, err
	}

	log := e.log.With(
		zap.String("action", c.action),
		zap.String("request_id", requestID),
		zap.Int64("seq", inv.Seq),
	)
	log.Debug("invoke", zap.String("caller", inv.Caller))

	var (
		result  ir.IRObject
		compSeq int64
	)
	err = e.store.Update(ctx, func(tx *store.Tx) error {
		if err := tx.WriteInvocation(inv); err != nil {
			return err
		}
		res, err := fn(&txn{tx: tx, now: now})
		compSeq = e.clock.Next()
		if err != nil {
			return err
		}
		if res == nil {
			res = ir.IRObject{}
		}
		comp, err := completion(inv, ir.CaseSuccess, res, compSeq)
		if err != nil {
			return err
		}
		result = res
		return tx.WriteCompletion(comp)
	})
	if err == nil {
		log.Info("committed")
		return result, nil
	}

	code := CodeOf(err)
	if code == "" {
		log.Error("call failed", zap.Error(err))
		return nil, err
	}
	if compSeq == 0 {
		compSeq = e.clock.Next()
	}

	log.Warn("call rejected", zap.String("code", string(code)), zap.Error(err))
	if lerr := e.logFailure(ctx, inv, code, err, compSeq); lerr != nil {
		log.Error("audit log write failed", zap.Error(lerr))
	}
	return nil, err
}

func (e *Engine) invocation(requestID string, c call) (ir.Invocation, error) {
	caller := ""
	if !c.caller.IsZero() {
		caller = c.caller.String()
	}
	args := c.args
	if args == nil {
		args = ir.IRObject{}
	}

	seq := e.clock.Next()
	id, err := ir.InvocationID(requestID, c.action, caller, args, seq)
	if err != nil {
		return ir.Invocation{}, fmt.Errorf("%s: %w", c.action, err)
	}
	return ir.Invocation{
		ID:            id,
		RequestID:     requestID,
		ActionURI:     c.action,
		Caller:        caller,
		Args:          args,
		Seq:           seq,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}, nil
}

func completion(inv ir.Invocation, outputCase string, result ir.IRObject, seq int64) (ir.Completion, error) {
	id, err := ir.CompletionID(inv.ID, outputCase, result, seq)
	if err != nil {
		return ir.Completion{}, fmt.Errorf("%s: %w", inv.ActionURI, err)
	}
	return ir.Completion{
		ID:           id,
		InvocationID: inv.ID,
		OutputCase:   outputCase,
		Result:       result,
		Seq:          seq,
	}, nil
}

// logFailure records a rejected call after its transaction rolled back.
func (e *Engine) logFailure(ctx context.Context, inv ir.Invocation, code ErrorCode, cause error, seq int64) error {
	comp, err := completion(inv, string(code), ir.IRObject{
		"error": ir.IRString(cause.Error()),
	}, seq)
	if err != nil {
		return err
	}
	return e.store.Update(ctx, func(tx *store.Tx) error {
		if err := tx.WriteInvocation(inv); err != nil {
			return err
		}
		return tx.WriteCompletion(comp)
	})
}
