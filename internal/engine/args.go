package engine

import (
	"math"
	"strconv"

	"github.com/roach88/commune/internal/address"
	"github.com/roach88/commune/internal/ir"
)

// Helpers for audit-log argument objects.

func keyArg(k address.Key) ir.IRValue {
	return ir.IRString(k.String())
}

// amountArg keeps amounts above MaxInt64 exact by writing them as decimal
// strings; IR integers are int64.
func amountArg(v uint64) ir.IRValue {
	if v > math.MaxInt64 {
		return ir.IRString(strconv.FormatUint(v, 10))
	}
	return ir.IRInt(int64(v))
}

func nonceArg(n uint8) ir.IRValue {
	return ir.IRInt(int64(n))
}
