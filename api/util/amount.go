package util

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// DisplayAmount formats an amount in the smallest rail unit as a whole coin
// string with the given number of decimals. It is used for display only.
func DisplayAmount(amount uint64, decimals int32) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -decimals).
		StringFixed(decimals)
}
