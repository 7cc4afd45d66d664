package domain

import "fmt"

// TransactionKind tags a journal record with the operation that produced it.
type TransactionKind string

const (
	KindSet      TransactionKind = "set"
	KindAdd      TransactionKind = "add"
	KindReduce   TransactionKind = "reduce"
	KindTransfer TransactionKind = "transfer"
	KindInitial  TransactionKind = "initial"
)

// ParseTransactionKind maps the persisted string form back to a kind.
func ParseTransactionKind(s string) (TransactionKind, error) {
	switch TransactionKind(s) {
	case KindSet, KindAdd, KindReduce, KindTransfer, KindInitial:
		return TransactionKind(s), nil
	}
	return "", fmt.Errorf("%w: unknown transaction kind %q", ErrInvalidArgument, s)
}

// MoneyFlow is the accounting polarity of a journal record.
type MoneyFlow int

const (
	FlowNeutral MoneyFlow = iota
	FlowCredit
	FlowDebit
)

// OperatorKind attributes a mutation to the actor that requested it.
type OperatorKind string

const (
	OperatorAdmin      OperatorKind = "admin"
	OperatorShop       OperatorKind = "shop"
	OperatorRealEstate OperatorKind = "real-estate"
	OperatorSystem     OperatorKind = "system"
	OperatorPlayer     OperatorKind = "player"
	OperatorOther      OperatorKind = "other"
)

// TransactionRecord is an immutable, append-only journal row. Amount is the
// signed delta applied to the holder's balance; Balance is the resulting
// balance immediately after the delta. RelatedHolderID and TransferGroupID
// are empty except on transfer records, where the group id is shared by
// exactly the debit and credit rows of one transfer.
type TransactionRecord struct {
	ID              int64
	HolderID        string
	CurrencyID      string
	Amount          int64
	Balance         int64
	Kind            TransactionKind
	Description     string
	Timestamp       int64
	RelatedHolderID string
	TransferGroupID string
}
