package engine

import (
	"context"

	"github.com/roach88/commune/internal/address"
	"github.com/roach88/commune/internal/ir"
	"github.com/roach88/commune/internal/layout"
)

// CreateItemRequest lists an item for sale.
type CreateItemRequest struct {
	ID          uint64
	Title       string
	Description string
	Price       uint64 // in price units; scaled by the commune's unit scale
	Nonce       uint8
}

// CreateItem lists an item. The levy, floor(price*unit_scale*tax%/100), is
// paid from the seller's holding into the pool, and the item is listed at
// price*unit_scale plus the levy.
func (e *Engine) CreateItem(ctx context.Context, seller address.Key, req CreateItemRequest) (layout.Item, error) {
	c := call{
		action: "Commune.createItem",
		caller: seller,
		args: ir.IRObject{
			"id":          amountArg(req.ID),
			"title":       ir.IRString(req.Title),
			"description": ir.IRString(req.Description),
			"price":       amountArg(req.Price),
			"nonce":       nonceArg(req.Nonce),
		},
	}

	var item layout.Item
	_, err := e.execute(ctx, c, func(t *txn) (ir.IRObject, error) {
		s, err := t.reserve(layout.KindItem, req.Nonce, address.ItemSeeds(req.ID))
		if err != nil {
			return nil, err
		}
		commune, pool, err := t.commune()
		if err != nil {
			return nil, err
		}

		if err := t.requireMember(seller); err != nil {
			return nil, err
		}
		if err := checkText(req.Title, req.Description); err != nil {
			return nil, err
		}
		l, err := priceListing(req.Price, commune.UnitScale, commune.Tax)
		if err != nil {
			return nil, err
		}

		if err := t.transfer(seller, pool, l.tax); err != nil {
			return nil, err
		}

		item = layout.Item{
			ID:          req.ID,
			Seller:      seller,
			Title:       req.Title,
			Description: req.Description,
			Price:       l.listed,
			Tax:         l.tax,
			Bump:        s.bump,
		}
		if err := t.create(s, &item); err != nil {
			return nil, err
		}

		if commune.ItemCount, err = addCount(commune.ItemCount, "item count"); err != nil {
			return nil, err
		}
		if err := t.save(pool, commune); err != nil {
			return nil, err
		}
		return ir.IRObject{
			"item":  keyArg(s.addr),
			"price": amountArg(l.listed),
			"tax":   amountArg(l.tax),
		}, nil
	})
	if err != nil {
		return layout.Item{}, err
	}
	return item, nil
}

// CreateMarketSale buys item id. The full listed price moves from the
// buyer's holding to the seller's; the item is then marked sold.
//
// claimedSeller must be the item's seller, so the payment cannot be
// redirected to another holding.
func (e *Engine) CreateMarketSale(ctx context.Context, buyer address.Key, id uint64, claimedSeller address.Key) (layout.Item, error) {
	c := call{
		action: "Commune.createMarketSale",
		caller: buyer,
		args: ir.IRObject{
			"id":     amountArg(id),
			"seller": keyArg(claimedSeller),
		},
	}

	var item layout.Item
	_, err := e.execute(ctx, c, func(t *txn) (ir.IRObject, error) {
		addr, err := t.load(address.ItemSeeds(id), &item)
		if err != nil {
			return nil, err
		}
		commune, pool, err := t.commune()
		if err != nil {
			return nil, err
		}

		if err := t.requireMember(buyer); err != nil {
			return nil, err
		}
		if item.Sold {
			return nil, newError(CodeItemAlreadySold, "item %d was sold to %s", id, item.Buyer)
		}
		if claimedSeller != item.Seller {
			return nil, newError(CodeWrongSeller, "item %d is sold by %s, not %s", id, item.Seller, claimedSeller)
		}

		if err := t.transfer(buyer, item.Seller, item.Price); err != nil {
			return nil, err
		}

		item.Buyer = buyer
		item.Sold = true
		if err := t.save(addr, &item); err != nil {
			return nil, err
		}
		if commune.ItemCount, err = subCount(commune.ItemCount, "item count"); err != nil {
			return nil, err
		}
		if err := t.save(pool, commune); err != nil {
			return nil, err
		}
		return ir.IRObject{
			"item":  keyArg(addr),
			"price": amountArg(item.Price),
		}, nil
	})
	if err != nil {
		return layout.Item{}, err
	}
	return item, nil
}
