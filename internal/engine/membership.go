package engine

import (
	"context"

	"github.com/roach88/commune/internal/address"
	"github.com/roach88/commune/internal/ir"
	"github.com/roach88/commune/internal/layout"
)

// Join pays the join fee from member's holding into the commune pool and
// records member as approved.
//
// Fails with RecordExists when member already joined and TransferFailed
// when the holding cannot cover the fee.
func (e *Engine) Join(ctx context.Context, member address.Key, nonce uint8) error {
	c := call{
		action: "Commune.join",
		caller: member,
		args:   ir.IRObject{"nonce": nonceArg(nonce)},
	}
	_, err := e.execute(ctx, c, func(t *txn) (ir.IRObject, error) {
		s, err := t.reserve(layout.KindApprover, nonce, address.ApproverSeeds(member))
		if err != nil {
			return nil, err
		}
		commune, pool, err := t.commune()
		if err != nil {
			return nil, err
		}

		if err := t.transfer(member, pool, commune.Fee); err != nil {
			return nil, err
		}
		if err := t.create(s, &layout.Approver{Approval: true, Bump: s.bump}); err != nil {
			return nil, err
		}
		return ir.IRObject{
			"approver": keyArg(s.addr),
			"fee":      amountArg(commune.Fee),
		}, nil
	})
	return err
}

// IsApproved reports whether identity has joined. An identity without an
// approver record is not approved; that is not an error.
func (e *Engine) IsApproved(ctx context.Context, identity address.Key) (bool, error) {
	var approved bool
	err := e.view(ctx, func(t *txn) error {
		var err error
		approved, err = t.isApproved(identity)
		return err
	})
	return approved, err
}
