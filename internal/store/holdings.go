package store

import (
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/roach88/commune/internal/address"
)

var (
	// ErrInsufficientFunds means the source holding cannot cover a transfer.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidTransferTarget means a transfer names the zero key or the
	// same holding on both sides.
	ErrInvalidTransferTarget = errors.New("invalid transfer target")

	// ErrBalanceOverflow means a credit would push a balance past MaxInt64.
	ErrBalanceOverflow = errors.New("balance overflow")
)

// MaxBalance is the largest balance a holding can carry.
const MaxBalance = math.MaxInt64

// Balance returns the balance of addr. A holding that never received
// anything has balance 0.
func (t *Tx) Balance(addr address.Key) (uint64, error) {
	var balance int64
	err := t.tx.QueryRowContext(t.ctx, `
		SELECT balance FROM holdings WHERE address = ?
	`, addr[:]).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("balance %s: %w", addr, err)
	}
	return uint64(balance), nil
}

// Credit adds amount to addr. Used by the host to fund holdings.
func (t *Tx) Credit(addr address.Key, amount uint64) error {
	if addr.IsZero() {
		return fmt.Errorf("credit: %w", ErrInvalidTransferTarget)
	}
	return t.credit(addr, amount)
}

// Transfer moves amount from one holding to another. It fails without
// touching either balance when the source is short or a side is invalid.
func (t *Tx) Transfer(from, to address.Key, amount uint64) error {
	if from.IsZero() || to.IsZero() || from == to {
		return fmt.Errorf("transfer %s -> %s: %w", from, to, ErrInvalidTransferTarget)
	}

	balance, err := t.Balance(from)
	if err != nil {
		return fmt.Errorf("transfer %s -> %s: %w", from, to, err)
	}
	if balance < amount {
		return fmt.Errorf("transfer %s -> %s: %w: have %d, need %d", from, to, ErrInsufficientFunds, balance, amount)
	}
	if amount == 0 {
		return nil
	}

	if _, err := t.tx.ExecContext(t.ctx, `
		UPDATE holdings SET balance = balance - ? WHERE address = ?
	`, int64(amount), from[:]); err != nil {
		return fmt.Errorf("transfer %s -> %s: debit: %w", from, to, err)
	}

	if err := t.credit(to, amount); err != nil {
		return fmt.Errorf("transfer %s -> %s: %w", from, to, err)
	}
	return nil
}

func (t *Tx) credit(addr address.Key, amount uint64) error {
	balance, err := t.Balance(addr)
	if err != nil {
		return err
	}
	if amount > MaxBalance || balance > MaxBalance-amount {
		return fmt.Errorf("credit %s: %w", addr, ErrBalanceOverflow)
	}

	_, err = t.tx.ExecContext(t.ctx, `
		INSERT INTO holdings (address, balance) VALUES (?, ?)
		ON CONFLICT(address) DO UPDATE SET balance = excluded.balance
	`, addr[:], int64(balance+amount))
	if err != nil {
		return fmt.Errorf("credit %s: %w", addr, err)
	}
	return nil
}
