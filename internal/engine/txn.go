package engine

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/roach88/commune/internal/address"
	"github.com/roach88/commune/internal/layout"
	"github.com/roach88/commune/internal/store"
)

// txn is the view of one engine call: the open store transaction and the
// wall-clock time read at the start of the call.
type txn struct {
	tx  *store.Tx
	now int64
}

// slot is a validated, unoccupied address about to receive a record.
type slot struct {
	addr address.Key
	bump uint8
	kind layout.Kind
}

// reserve derives the canonical address of seeds, checks the caller's
// nonce against the canonical bump, and checks the address is free.
func (t *txn) reserve(kind layout.Kind, nonce uint8, seeds [][]byte) (slot, error) {
	addr, bump, err := address.FindAddress(seeds...)
	if err != nil {
		return slot{}, fromStore(err, fmt.Sprintf("derive %s address", kind))
	}
	if nonce != bump {
		return slot{}, &Error{
			Code:    CodeInvalidAddress,
			Message: fmt.Sprintf("%s nonce %d does not match canonical bump %d", kind, nonce, bump),
			Details: map[string]string{"address": addr.String()},
		}
	}

	exists, err := t.tx.RecordExists(addr)
	if err != nil {
		return slot{}, err
	}
	if exists {
		return slot{}, &Error{
			Code:    CodeRecordExists,
			Message: fmt.Sprintf("%s already exists at %s", kind, addr),
			Err:     store.ErrRecordExists,
		}
	}
	return slot{addr: addr, bump: bump, kind: kind}, nil
}

// create writes rec into a reserved slot, sized to the kind's maximum.
func (t *txn) create(s slot, rec layout.Record) error {
	data, err := layout.Marshal(rec)
	if err != nil {
		return fromStore(err, fmt.Sprintf("encode %s", s.kind))
	}
	err = t.tx.CreateRecord(store.Record{
		Address: s.addr,
		Kind:    string(s.kind),
		Bump:    s.bump,
		Space:   layout.MaxSize(s.kind),
		Data:    data,
	})
	return fromStore(err, fmt.Sprintf("create %s", s.kind))
}

// load reads the record derived from seeds into rec and returns its
// address. The stored bump must reproduce the address.
func (t *txn) load(seeds [][]byte, rec layout.Record) (address.Key, error) {
	kind := rec.Kind()
	addr, _, err := address.FindAddress(seeds...)
	if err != nil {
		return address.Zero, fromStore(err, fmt.Sprintf("derive %s address", kind))
	}

	raw, err := t.tx.LoadRecord(addr)
	if err != nil {
		return address.Zero, fromStore(err, fmt.Sprintf("load %s", kind))
	}
	if raw.Kind != string(kind) {
		return address.Zero, newError(CodeInvalidAddress, "%s holds a %s, not a %s", addr, raw.Kind, kind)
	}
	if err := address.Verify(addr, raw.Bump, seeds...); err != nil {
		return address.Zero, fromStore(err, fmt.Sprintf("load %s", kind))
	}
	if err := layout.Unmarshal(raw.Data, rec); err != nil {
		return address.Zero, fromStore(err, fmt.Sprintf("decode %s", kind))
	}
	return addr, nil
}

// save rewrites an existing record in place.
func (t *txn) save(addr address.Key, rec layout.Record) error {
	data, err := layout.Marshal(rec)
	if err != nil {
		return fromStore(err, fmt.Sprintf("encode %s", rec.Kind()))
	}
	return fromStore(t.tx.SaveRecord(addr, data), fmt.Sprintf("save %s", rec.Kind()))
}

// transfer moves amount between holdings; any failure is TransferFailed.
func (t *txn) transfer(from, to address.Key, amount uint64) error {
	if err := t.tx.Transfer(from, to, amount); err != nil {
		if errors.Is(err, store.ErrInsufficientFunds) ||
			errors.Is(err, store.ErrInvalidTransferTarget) ||
			errors.Is(err, store.ErrBalanceOverflow) {
			return &Error{
				Code:    CodeTransferFailed,
				Message: fmt.Sprintf("transfer of %d failed", amount),
				Err:     err,
			}
		}
		return err
	}
	return nil
}

// commune loads the singleton and returns it with its address, which is
// also the pool holding.
func (t *txn) commune() (*layout.Commune, address.Key, error) {
	c := &layout.Commune{}
	addr, err := t.load(address.CommuneSeeds(), c)
	if errors.Is(err, ErrRecordNotFound) {
		return nil, address.Zero, &Error{Code: CodeRecordNotFound, Message: "commune is not initialized", Err: err}
	}
	if err != nil {
		return nil, address.Zero, err
	}
	return c, addr, nil
}

// isApproved looks up member's approval. A missing record is false.
func (t *txn) isApproved(member address.Key) (bool, error) {
	a := &layout.Approver{}
	_, err := t.load(address.ApproverSeeds(member), a)
	if errors.Is(err, ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return a.Approval, nil
}

// requireMember gates an operation on member's approval.
func (t *txn) requireMember(member address.Key) error {
	ok, err := t.isApproved(member)
	if err != nil {
		return err
	}
	if !ok {
		return newError(CodeNotAMember, "%s is not a commune member", member)
	}
	return nil
}

// checkText enforces the character limits on free text. Text must be
// valid UTF-8 and is stored exactly as given.
func checkText(title, description string) error {
	fields := []struct {
		name  string
		value string
		max   int
		code  ErrorCode
	}{
		{"title", title, layout.MaxTitleChars, CodeTitleTooLong},
		{"description", description, layout.MaxDescriptionChars, CodeDescriptionTooLong},
	}
	for _, f := range fields {
		if !utf8.ValidString(f.value) {
			return newError(CodeInvalidParameter, "%s is not valid UTF-8", f.name)
		}
		if n := layout.CharCount(f.value); n > f.max {
			return newError(f.code, "%s is %d characters, max %d", f.name, n, f.max)
		}
	}
	return nil
}
