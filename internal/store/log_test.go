package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/roach88/commune/internal/ir"
)

func TestMaxSeq_Empty(t *testing.T) {
	s := createTestStore(t)

	seq, err := s.MaxSeq(context.Background())
	if err != nil {
		t.Fatalf("MaxSeq() failed: %v", err)
	}
	if seq != 0 {
		t.Errorf("MaxSeq() = %d, want 0", seq)
	}
}

func TestMaxSeq_ReturnsCompletionSeq(t *testing.T) {
	s := createTestStore(t)

	writeTestEntry(t, s,
		createTestInvocation("inv-1", "req-1", "Commune.join", 1),
		createTestCompletion("comp-1", "inv-1", ir.CaseSuccess, 2),
	)

	seq, err := s.MaxSeq(context.Background())
	if err != nil {
		t.Fatalf("MaxSeq() failed: %v", err)
	}
	if seq != 2 {
		t.Errorf("MaxSeq() = %d, want 2", seq)
	}
}

func TestWriteInvocation_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	inv := createTestInvocation("inv-1", "req-1", "Commune.join", 1)

	for i := 0; i < 2; i++ {
		if err := s.Update(ctx, func(tx *Tx) error { return tx.WriteInvocation(inv) }); err != nil {
			t.Fatalf("WriteInvocation() iteration %d failed: %v", i, err)
		}
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM invocations").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("invocations = %d, want 1", count)
	}
}

func TestReadLog_RoundTrip(t *testing.T) {
	s := createTestStore(t)

	inv := createTestInvocation("inv-1", "req-1", "Commune.createItem", 1)
	inv.Caller = "seller"
	inv.Args = ir.IRObject{
		"id":    ir.IRInt(1),
		"title": ir.IRString("Bike"),
		"price": ir.IRInt(9007199254740993),
	}
	comp := createTestCompletion("comp-1", "inv-1", ir.CaseSuccess, 2)
	comp.Result = ir.IRObject{"price": ir.IRInt(103)}
	writeTestEntry(t, s, inv, comp)

	entries, err := s.ReadLog(context.Background(), 0)
	if err != nil {
		t.Fatalf("ReadLog() failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("ReadLog() returned %d entries, want 1", len(entries))
	}

	got := entries[0]
	if got.Invocation.Caller != "seller" || got.Invocation.ActionURI != "Commune.createItem" {
		t.Errorf("invocation = %+v", got.Invocation)
	}
	if got.Invocation.Args["price"] != ir.IRInt(9007199254740993) {
		t.Errorf("price arg = %v, want exact 9007199254740993", got.Invocation.Args["price"])
	}
	if got.Completion.InvocationID != "inv-1" || !got.Completion.Succeeded() {
		t.Errorf("completion = %+v", got.Completion)
	}
	if got.Completion.Result["price"] != ir.IRInt(103) {
		t.Errorf("result price = %v, want 103", got.Completion.Result["price"])
	}
}

func TestReadLog_Limit(t *testing.T) {
	s := createTestStore(t)

	for i := 1; i <= 5; i++ {
		invID := fmt.Sprintf("inv-%d", i)
		writeTestEntry(t, s,
			createTestInvocation(invID, fmt.Sprintf("req-%d", i), "Commune.join", int64(2*i-1)),
			createTestCompletion(fmt.Sprintf("comp-%d", i), invID, ir.CaseSuccess, int64(2*i)),
		)
	}

	entries, err := s.ReadLog(context.Background(), 2)
	if err != nil {
		t.Fatalf("ReadLog() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ReadLog(2) returned %d entries, want 2", len(entries))
	}
	if entries[0].Invocation.ID != "inv-4" || entries[1].Invocation.ID != "inv-5" {
		t.Errorf("ReadLog(2) = [%s %s], want [inv-4 inv-5]",
			entries[0].Invocation.ID, entries[1].Invocation.ID)
	}

	all, err := s.ReadLog(context.Background(), 10)
	if err != nil {
		t.Fatalf("ReadLog() failed: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("ReadLog(10) returned %d entries, want 5", len(all))
	}
}

func TestReadRequest(t *testing.T) {
	s := createTestStore(t)

	writeTestEntry(t, s,
		createTestInvocation("inv-1", "req-a", "Commune.join", 1),
		createTestCompletion("comp-1", "inv-1", ir.CaseSuccess, 2),
	)
	writeTestEntry(t, s,
		createTestInvocation("inv-2", "req-b", "Commune.join", 3),
		createTestCompletion("comp-2", "inv-2", "TransferFailed", 4),
	)
	writeTestEntry(t, s,
		createTestInvocation("inv-3", "req-a", "Commune.createItem", 5),
		createTestCompletion("comp-3", "inv-3", ir.CaseSuccess, 6),
	)

	entries, err := s.ReadRequest(context.Background(), "req-a")
	if err != nil {
		t.Fatalf("ReadRequest() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ReadRequest() returned %d entries, want 2", len(entries))
	}
	if entries[0].Invocation.ID != "inv-1" || entries[1].Invocation.ID != "inv-3" {
		t.Errorf("ReadRequest() order = [%s %s], want [inv-1 inv-3]",
			entries[0].Invocation.ID, entries[1].Invocation.ID)
	}

	none, err := s.ReadRequest(context.Background(), "req-missing")
	if err != nil {
		t.Fatalf("ReadRequest() failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("ReadRequest() for unknown request returned %d entries", len(none))
	}
}
