package harness

import (
	"context"
	"fmt"
	"math"

	"github.com/roach88/commune/internal/address"
	"github.com/roach88/commune/internal/engine"
)

type operation struct {
	needsCaller bool
	run         func(ctx context.Context, h *Harness, caller address.Key, args stepArgs) (interface{}, error)
}

var operations = map[string]operation{
	"Commune.initialize":       {needsCaller: true, run: runInitialize},
	"Commune.join":             {needsCaller: true, run: runJoin},
	"Commune.createItem":       {needsCaller: true, run: runCreateItem},
	"Commune.createMarketSale": {needsCaller: true, run: runCreateMarketSale},
	"Commune.addProposal":      {needsCaller: true, run: runAddProposal},
	"Commune.voteForProposal":  {needsCaller: true, run: runVoteForProposal},
	"Commune.approveProposal":  {needsCaller: true, run: runApproveProposal},
	"Host.fund":                {run: runFund},
	"Clock.advance":            {run: runClockAdvance},
	"Clock.set":                {run: runClockSet},
}

func runInitialize(ctx context.Context, h *Harness, caller address.Key, args stepArgs) (interface{}, error) {
	p := engine.DefaultParams()
	var err error
	if p.JoinFee, err = args.u64Or("join_fee", p.JoinFee); err != nil {
		return nil, err
	}
	if p.TaxPercent, err = args.u64Or("tax_percent", p.TaxPercent); err != nil {
		return nil, err
	}
	if p.UnitScale, err = args.u64Or("unit_scale", p.UnitScale); err != nil {
		return nil, err
	}
	nonce, err := args.nonce(address.CommuneSeeds())
	if err != nil {
		return nil, err
	}
	return nil, h.engine.Initialize(ctx, caller, nonce, p)
}

func runJoin(ctx context.Context, h *Harness, caller address.Key, args stepArgs) (interface{}, error) {
	nonce, err := args.nonce(address.ApproverSeeds(caller))
	if err != nil {
		return nil, err
	}
	return nil, h.engine.Join(ctx, caller, nonce)
}

func runCreateItem(ctx context.Context, h *Harness, caller address.Key, args stepArgs) (interface{}, error) {
	var req engine.CreateItemRequest
	var err error
	if req.ID, err = args.u64("id"); err != nil {
		return nil, err
	}
	if req.Price, err = args.u64("price"); err != nil {
		return nil, err
	}
	req.Title = args.str("title")
	req.Description = args.str("description")
	if req.Nonce, err = args.nonce(address.ItemSeeds(req.ID)); err != nil {
		return nil, err
	}
	item, err := h.engine.CreateItem(ctx, caller, req)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func runCreateMarketSale(ctx context.Context, h *Harness, caller address.Key, args stepArgs) (interface{}, error) {
	id, err := args.u64("id")
	if err != nil {
		return nil, err
	}
	seller, err := args.identity("seller")
	if err != nil {
		return nil, err
	}
	item, err := h.engine.CreateMarketSale(ctx, caller, id, seller)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func runAddProposal(ctx context.Context, h *Harness, caller address.Key, args stepArgs) (interface{}, error) {
	var req engine.AddProposalRequest
	var err error
	if req.ID, err = args.u64("id"); err != nil {
		return nil, err
	}
	if req.Amount, err = args.u64("amount"); err != nil {
		return nil, err
	}
	if req.EndTimestamp, err = args.i64("end_timestamp"); err != nil {
		return nil, err
	}
	req.Title = args.str("title")
	req.Description = args.str("description")
	if req.Nonce, err = args.nonce(address.ProposalSeeds(req.ID)); err != nil {
		return nil, err
	}
	p, err := h.engine.AddProposal(ctx, caller, req)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func runVoteForProposal(ctx context.Context, h *Harness, caller address.Key, args stepArgs) (interface{}, error) {
	id, err := args.u64("proposal_id")
	if err != nil {
		return nil, err
	}
	vote, err := args.boolean("vote")
	if err != nil {
		return nil, err
	}
	nonce, err := args.nonce(address.VoteSeeds(id, caller))
	if err != nil {
		return nil, err
	}
	p, err := h.engine.VoteForProposal(ctx, caller, id, vote, nonce)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func runApproveProposal(ctx context.Context, h *Harness, caller address.Key, args stepArgs) (interface{}, error) {
	id, err := args.u64("proposal_id")
	if err != nil {
		return nil, err
	}
	owner, err := args.identity("owner")
	if err != nil {
		return nil, err
	}
	p, err := h.engine.ApproveProposal(ctx, caller, id, owner)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func runFund(ctx context.Context, h *Harness, _ address.Key, args stepArgs) (interface{}, error) {
	holder, err := args.identity("holder")
	if err != nil {
		return nil, err
	}
	amount, err := args.u64("amount")
	if err != nil {
		return nil, err
	}
	return nil, h.engine.Fund(ctx, holder, amount)
}

func runClockAdvance(_ context.Context, h *Harness, _ address.Key, args stepArgs) (interface{}, error) {
	d, err := args.i64("seconds")
	if err != nil {
		return nil, err
	}
	h.clock.Advance(d)
	return nil, nil
}

func runClockSet(_ context.Context, h *Harness, _ address.Key, args stepArgs) (interface{}, error) {
	t, err := args.i64("now")
	if err != nil {
		return nil, err
	}
	h.clock.Set(t)
	return nil, nil
}

// stepArgs reads typed values out of a step's YAML arguments.
type stepArgs struct {
	h      *Harness
	op     string
	values map[string]interface{}
}

func (a stepArgs) missing(key string) error {
	return fmt.Errorf("%s: missing argument %q", a.op, key)
}

func (a stepArgs) str(key string) string {
	v, ok := a.values[key]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func (a stepArgs) boolean(key string) (bool, error) {
	v, ok := a.values[key]
	if !ok {
		return false, a.missing(key)
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s: argument %q must be a boolean, got %T", a.op, key, v)
	}
	return b, nil
}

func (a stepArgs) u64(key string) (uint64, error) {
	v, ok := a.values[key]
	if !ok {
		return 0, a.missing(key)
	}
	return toUint(a.op, key, v)
}

func (a stepArgs) u64Or(key string, def uint64) (uint64, error) {
	v, ok := a.values[key]
	if !ok {
		return def, nil
	}
	return toUint(a.op, key, v)
}

func (a stepArgs) i64(key string) (int64, error) {
	v, ok := a.values[key]
	if !ok {
		return 0, a.missing(key)
	}
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("%s: argument %q out of range", a.op, key)
		}
		return int64(n), nil
	default:
		return 0, fmt.Errorf("%s: argument %q must be an integer, got %T", a.op, key, v)
	}
}

// identity resolves a name-valued argument.
func (a stepArgs) identity(key string) (address.Key, error) {
	v, ok := a.values[key]
	if !ok {
		return address.Key{}, a.missing(key)
	}
	name, ok := v.(string)
	if !ok || name == "" {
		return address.Key{}, fmt.Errorf("%s: argument %q must be an identity name", a.op, key)
	}
	return a.h.identity(name), nil
}

// nonce returns the explicit nonce argument, or the canonical bump of
// seeds when none is given.
func (a stepArgs) nonce(seeds [][]byte) (uint8, error) {
	if _, ok := a.values["nonce"]; ok {
		n, err := a.u64("nonce")
		if err != nil {
			return 0, err
		}
		if n > math.MaxUint8 {
			return 0, fmt.Errorf("%s: nonce %d out of range", a.op, n)
		}
		return uint8(n), nil
	}
	_, bump, err := address.FindAddress(seeds...)
	if err != nil {
		return 0, fmt.Errorf("%s: derive address: %w", a.op, err)
	}
	return bump, nil
}

func toUint(op, key string, v interface{}) (uint64, error) {
	switch n := v.(type) {
	case int:
		if n < 0 {
			return 0, fmt.Errorf("%s: argument %q must be non-negative", op, key)
		}
		return uint64(n), nil
	case int64:
		if n < 0 {
			return 0, fmt.Errorf("%s: argument %q must be non-negative", op, key)
		}
		return uint64(n), nil
	case uint64:
		return n, nil
	default:
		return 0, fmt.Errorf("%s: argument %q must be an integer, got %T", op, key, v)
	}
}
