package services

import (
	"github.com/shopspring/decimal"

	"github.com/rlx-labs/coinledger/internal/config"
)

// transferFee computes the fee charged to the source of a transfer: the
// currency's fixed fee plus the percentage component, rounded half away
// from zero. Decimal arithmetic keeps the .5 boundary exact; a float
// division would drift on large amounts.
func transferFee(amount int64, cur config.Currency) int64 {
	fee := cur.TransferFee
	if cur.FeePercentage > 0 {
		pct := decimal.NewFromFloat(cur.FeePercentage)
		part := decimal.NewFromInt(amount).
			Mul(pct).
			Div(decimal.NewFromInt(100)).
			Round(0)
		fee += part.IntPart()
	}
	return fee
}
