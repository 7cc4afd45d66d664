package domain

import "errors"

// Sentinel errors for every business-rule violation the ledger can report.
// Callers discriminate with errors.Is; operations wrap these with holder,
// currency and amount context.
var (
	ErrNotFound            = errors.New("record not found")
	ErrAlreadyExists       = errors.New("record already exists")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrTransferDisabled    = errors.New("transfers disabled for currency")
	ErrStorage             = errors.New("storage failure")
)
