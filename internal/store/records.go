package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/commune/internal/address"
)

var (
	// ErrRecordExists means the address already holds a record.
	ErrRecordExists = errors.New("record already exists")

	// ErrRecordNotFound means nothing is stored at the address.
	ErrRecordNotFound = errors.New("record not found")

	// ErrRecordTooLarge means data does not fit the slot allocated at creation.
	ErrRecordTooLarge = errors.New("record data exceeds allocated space")
)

// Record is one slot of the record table.
type Record struct {
	Address address.Key
	Kind    string
	Bump    uint8
	Space   int
	Data    []byte
}

// CreateRecord allocates a slot of rec.Space bytes at rec.Address.
// Fails with ErrRecordExists when the address is occupied.
func (t *Tx) CreateRecord(rec Record) error {
	if len(rec.Data) > rec.Space {
		return fmt.Errorf("create record %s: %w: %d > %d", rec.Address, ErrRecordTooLarge, len(rec.Data), rec.Space)
	}

	result, err := t.tx.ExecContext(t.ctx, `
		INSERT INTO records (address, kind, bump, space, data)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(address) DO NOTHING
	`,
		rec.Address[:],
		rec.Kind,
		rec.Bump,
		rec.Space,
		rec.Data,
	)
	if err != nil {
		return fmt.Errorf("create record %s: %w", rec.Address, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("create record %s: rows affected: %w", rec.Address, err)
	}
	if n == 0 {
		return fmt.Errorf("create record %s: %w", rec.Address, ErrRecordExists)
	}
	return nil
}

// LoadRecord reads the slot at addr.
func (t *Tx) LoadRecord(addr address.Key) (Record, error) {
	rec := Record{Address: addr}
	var bump int64
	err := t.tx.QueryRowContext(t.ctx, `
		SELECT kind, bump, space, data FROM records WHERE address = ?
	`, addr[:]).Scan(&rec.Kind, &bump, &rec.Space, &rec.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("load record %s: %w", addr, ErrRecordNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("load record %s: %w", addr, err)
	}
	rec.Bump = uint8(bump)
	return rec, nil
}

// RecordExists reports whether addr holds a record.
func (t *Tx) RecordExists(addr address.Key) (bool, error) {
	var count int
	err := t.tx.QueryRowContext(t.ctx, `
		SELECT COUNT(*) FROM records WHERE address = ?
	`, addr[:]).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check record %s: %w", addr, err)
	}
	return count > 0, nil
}

// SaveRecord rewrites the data of an existing slot. The slot's space and
// bump never change.
func (t *Tx) SaveRecord(addr address.Key, data []byte) error {
	var space int
	err := t.tx.QueryRowContext(t.ctx, `
		SELECT space FROM records WHERE address = ?
	`, addr[:]).Scan(&space)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("save record %s: %w", addr, ErrRecordNotFound)
	}
	if err != nil {
		return fmt.Errorf("save record %s: %w", addr, err)
	}
	if len(data) > space {
		return fmt.Errorf("save record %s: %w: %d > %d", addr, ErrRecordTooLarge, len(data), space)
	}

	if _, err := t.tx.ExecContext(t.ctx, `
		UPDATE records SET data = ? WHERE address = ?
	`, data, addr[:]); err != nil {
		return fmt.Errorf("save record %s: %w", addr, err)
	}
	return nil
}
