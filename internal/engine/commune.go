package engine

import (
	"context"

	"github.com/roach88/commune/internal/address"
	"github.com/roach88/commune/internal/ir"
	"github.com/roach88/commune/internal/layout"
)

// Params are the genesis parameters of a commune. They are fixed once the
// commune exists.
type Params struct {
	// JoinFee is charged on join, in base units.
	JoinFee uint64 `json:"join_fee" yaml:"join_fee"`

	// TaxPercent is the listing levy, 0..100.
	TaxPercent uint64 `json:"tax_percent" yaml:"tax_percent"`

	// UnitScale is the number of base units per unit of a listing price.
	UnitScale uint64 `json:"unit_scale" yaml:"unit_scale"`
}

// Default genesis parameters: a 0.01-unit join fee and a 3% levy at
// 10^9 base units per unit.
const (
	DefaultUnitScale  uint64 = 1_000_000_000
	DefaultJoinFee           = DefaultUnitScale / 100
	DefaultTaxPercent uint64 = 3
)

// DefaultParams returns the default genesis parameters.
func DefaultParams() Params {
	return Params{
		JoinFee:    DefaultJoinFee,
		TaxPercent: DefaultTaxPercent,
		UnitScale:  DefaultUnitScale,
	}
}

// Validate checks the parameter ranges.
func (p Params) Validate() error {
	if p.TaxPercent > 100 {
		return newError(CodeInvalidParameter, "tax percent %d exceeds 100", p.TaxPercent)
	}
	if p.UnitScale == 0 {
		return newError(CodeInvalidParameter, "unit scale must be positive")
	}
	return nil
}

// Initialize creates the commune singleton. It fails with RecordExists
// when the commune already exists.
func (e *Engine) Initialize(ctx context.Context, payer address.Key, nonce uint8, p Params) error {
	c := call{
		action: "Commune.initialize",
		caller: payer,
		args: ir.IRObject{
			"nonce":       nonceArg(nonce),
			"join_fee":    amountArg(p.JoinFee),
			"tax_percent": amountArg(p.TaxPercent),
			"unit_scale":  amountArg(p.UnitScale),
		},
	}
	_, err := e.execute(ctx, c, func(t *txn) (ir.IRObject, error) {
		s, err := t.reserve(layout.KindCommune, nonce, address.CommuneSeeds())
		if err != nil {
			return nil, err
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}

		if err := t.create(s, &layout.Commune{
			Fee:       p.JoinFee,
			Bump:      s.bump,
			Tax:       p.TaxPercent,
			UnitScale: p.UnitScale,
		}); err != nil {
			return nil, err
		}
		return ir.IRObject{"commune": keyArg(s.addr)}, nil
	})
	return err
}

// Fund credits a holding from outside the commune. It stands in for the
// host's native funding and is not gated on membership.
func (e *Engine) Fund(ctx context.Context, holder address.Key, amount uint64) error {
	c := call{
		action: "Host.fund",
		args: ir.IRObject{
			"holder": keyArg(holder),
			"amount": amountArg(amount),
		},
	}
	_, err := e.execute(ctx, c, func(t *txn) (ir.IRObject, error) {
		if err := t.tx.Credit(holder, amount); err != nil {
			return nil, fromStore(err, "fund")
		}
		balance, err := t.tx.Balance(holder)
		if err != nil {
			return nil, err
		}
		return ir.IRObject{"balance": amountArg(balance)}, nil
	})
	return err
}
