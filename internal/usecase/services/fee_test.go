package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rlx-labs/coinledger/internal/config"
)

func TestTransferFee(t *testing.T) {
	cases := []struct {
		name     string
		amount   int64
		fixed    int64
		pct      float64
		expected int64
	}{
		{"no fee", 100, 0, 0, 0},
		{"fixed only", 100, 5, 0, 5},
		{"half rounds up", 20, 0, 2.5, 1},
		{"exact", 40, 0, 2.5, 1},
		{"above half rounds up", 60, 0, 2.5, 2},
		{"below half rounds down", 10, 0, 2.5, 0},
		{"fixed plus percentage", 1000, 2, 1.5, 17},
		{"large amount stays exact", 4_000_000_000_000, 0, 2.5, 100_000_000_000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cur := config.Currency{TransferFee: tc.fixed, FeePercentage: tc.pct}
			assert.Equal(t, tc.expected, transferFee(tc.amount, cur))
		})
	}
}
