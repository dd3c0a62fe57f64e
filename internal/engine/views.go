package engine

import (
	"context"

	"github.com/roach88/commune/internal/address"
	"github.com/roach88/commune/internal/layout"
	"github.com/roach88/commune/internal/store"
)

// Read views. They run in a read-only transaction and are not logged.

func (e *Engine) view(ctx context.Context, fn func(t *txn) error) error {
	now := e.now.Now()
	return e.store.View(ctx, func(tx *store.Tx) error {
		return fn(&txn{tx: tx, now: now})
	})
}

// CommuneAddress returns the canonical address of the commune, which is
// also the address of the pool holding.
func CommuneAddress() (address.Key, uint8, error) {
	return address.FindAddress(address.CommuneSeeds()...)
}

// Commune returns the commune singleton.
func (e *Engine) Commune(ctx context.Context) (layout.Commune, error) {
	var c layout.Commune
	err := e.view(ctx, func(t *txn) error {
		rec, _, err := t.commune()
		if err != nil {
			return err
		}
		c = *rec
		return nil
	})
	return c, err
}

// Approver returns member's approver record.
func (e *Engine) Approver(ctx context.Context, member address.Key) (layout.Approver, error) {
	var a layout.Approver
	err := e.view(ctx, func(t *txn) error {
		_, err := t.load(address.ApproverSeeds(member), &a)
		return err
	})
	return a, err
}

// Item returns item id.
func (e *Engine) Item(ctx context.Context, id uint64) (layout.Item, error) {
	var it layout.Item
	err := e.view(ctx, func(t *txn) error {
		_, err := t.load(address.ItemSeeds(id), &it)
		return err
	})
	return it, err
}

// Proposal returns proposal id.
func (e *Engine) Proposal(ctx context.Context, id uint64) (layout.Proposal, error) {
	var p layout.Proposal
	err := e.view(ctx, func(t *txn) error {
		_, err := t.load(address.ProposalSeeds(id), &p)
		return err
	})
	return p, err
}

// ProposalStatus returns the derived state of proposal id at the engine's
// current time.
func (e *Engine) ProposalStatus(ctx context.Context, id uint64) (ProposalStatus, error) {
	var status ProposalStatus
	err := e.view(ctx, func(t *txn) error {
		var p layout.Proposal
		if _, err := t.load(address.ProposalSeeds(id), &p); err != nil {
			return err
		}
		status = StatusAt(p, t.now)
		return nil
	})
	return status, err
}

// Vote returns voter's vote on a proposal.
func (e *Engine) Vote(ctx context.Context, proposalID uint64, voter address.Key) (layout.Vote, error) {
	var v layout.Vote
	err := e.view(ctx, func(t *txn) error {
		_, err := t.load(address.VoteSeeds(proposalID, voter), &v)
		return err
	})
	return v, err
}

// Balance returns the balance of a holding.
func (e *Engine) Balance(ctx context.Context, holder address.Key) (uint64, error) {
	var balance uint64
	err := e.store.View(ctx, func(tx *store.Tx) error {
		var err error
		balance, err = tx.Balance(holder)
		return err
	})
	return balance, err
}

// PoolBalance returns the balance of the commune pool.
func (e *Engine) PoolBalance(ctx context.Context) (uint64, error) {
	pool, _, err := CommuneAddress()
	if err != nil {
		return 0, fromStore(err, "derive commune address")
	}
	return e.Balance(ctx, pool)
}
