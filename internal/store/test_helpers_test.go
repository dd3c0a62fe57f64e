package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/commune/internal/address"
	"github.com/roach88/commune/internal/ir"
)

// createTestStore creates a new file-backed store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testKey returns a key whose bytes are all b.
func testKey(b byte) address.Key {
	var k address.Key
	for i := range k {
		k[i] = b
	}
	return k
}

func testRecord(addr address.Key, space int) Record {
	return Record{
		Address: addr,
		Kind:    "Approver",
		Bump:    254,
		Space:   space,
		Data:    []byte{1, 2, 3},
	}
}

func balanceOf(t *testing.T, s *Store, addr address.Key) uint64 {
	t.Helper()
	var balance uint64
	err := s.View(context.Background(), func(tx *Tx) error {
		var err error
		balance, err = tx.Balance(addr)
		return err
	})
	if err != nil {
		t.Fatalf("Balance() failed: %v", err)
	}
	return balance
}

// createTestInvocation creates a test invocation with minimal required fields.
func createTestInvocation(id, requestID, actionURI string, seq int64) ir.Invocation {
	return ir.Invocation{
		ID:            id,
		RequestID:     requestID,
		ActionURI:     actionURI,
		Caller:        "",
		Args:          ir.IRObject{},
		Seq:           seq,
		EngineVersion: "0.1.0",
		IRVersion:     "1",
	}
}

// createTestCompletion creates a test completion with minimal required fields.
func createTestCompletion(id, invocationID, outputCase string, seq int64) ir.Completion {
	return ir.Completion{
		ID:           id,
		InvocationID: invocationID,
		OutputCase:   outputCase,
		Result:       ir.IRObject{},
		Seq:          seq,
	}
}

// writeTestEntry writes an invocation and its completion in one transaction.
func writeTestEntry(t *testing.T, s *Store, inv ir.Invocation, comp ir.Completion) {
	t.Helper()
	err := s.Update(context.Background(), func(tx *Tx) error {
		if err := tx.WriteInvocation(inv); err != nil {
			return err
		}
		return tx.WriteCompletion(comp)
	})
	if err != nil {
		t.Fatalf("write log entry: %v", err)
	}
}
