package engine

import (
	"math/bits"
)

// listing holds the amounts of one item listing, all in base units.
type listing struct {
	base   uint64 // price * unit scale
	tax    uint64 // floor(base * tax percent / 100)
	listed uint64 // base + tax
}

// priceListing computes the listed price and levy of an item.
//
// The tax product uses a 128-bit intermediate, so only a result that does
// not fit 64 bits overflows; the truncation is integer floor division.
func priceListing(price, unitScale, taxPercent uint64) (listing, error) {
	hi, base := bits.Mul64(price, unitScale)
	if hi != 0 {
		return listing{}, newError(CodeArithmeticOverflow, "price %d at unit scale %d overflows", price, unitScale)
	}

	hi, lo := bits.Mul64(base, taxPercent)
	if hi >= 100 {
		return listing{}, newError(CodeArithmeticOverflow, "tax on %d at %d%% overflows", base, taxPercent)
	}
	tax, _ := bits.Div64(hi, lo, 100)

	listed, carry := bits.Add64(base, tax, 0)
	if carry != 0 {
		return listing{}, newError(CodeArithmeticOverflow, "listed price %d + %d overflows", base, tax)
	}
	return listing{base: base, tax: tax, listed: listed}, nil
}

// addCount and subCount keep the commune counters inside uint64.
func addCount(n uint64, name string) (uint64, error) {
	if n == ^uint64(0) {
		return 0, newError(CodeArithmeticOverflow, "%s overflows", name)
	}
	return n + 1, nil
}

func subCount(n uint64, name string) (uint64, error) {
	if n == 0 {
		return 0, newError(CodeArithmeticOverflow, "%s would go negative", name)
	}
	return n - 1, nil
}
