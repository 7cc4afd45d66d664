package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rlx-labs/coinledger/internal/adapter/repository/repo_interfaces"
	"github.com/rlx-labs/coinledger/internal/config"
	"github.com/rlx-labs/coinledger/internal/domain"
	"github.com/rlx-labs/coinledger/internal/logger"
	"github.com/rlx-labs/coinledger/internal/metrics"
)

// UnitOfWork runs a closure as one atomic database transaction: commit when
// the closure returns nil, rollback otherwise.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

// LedgerService enforces every business invariant of the ledger: amount and
// currency validation, balance sufficiency, limits, fee arithmetic and
// overflow protection. Every mutation pairs its balance write with journal
// rows inside one unit of work.
//
// Mutating operations are serialized behind a mutex: the engine is designed
// for a single logical writer, and the mutex is what makes that hold in a
// multi-goroutine host. Reads bypass it.
type LedgerService struct {
	uow      UnitOfWork
	accounts repo_interfaces.AccountRepository
	journal  repo_interfaces.TransactionRepository
	catalog  *config.Catalog

	mu sync.Mutex
}

func NewLedgerService(
	uow UnitOfWork,
	accounts repo_interfaces.AccountRepository,
	journal repo_interfaces.TransactionRepository,
	catalog *config.Catalog,
) *LedgerService {
	return &LedgerService{
		uow:      uow,
		accounts: accounts,
		journal:  journal,
		catalog:  catalog,
	}
}

// InitializeAccount creates the account row plus, for every enabled
// currency, a balance row at the configured initial balance and an initial
// journal record — all or nothing. The existence precondition is checked
// outside the transaction.
func (s *LedgerService) InitializeAccount(ctx context.Context, holderID, displayName string) (err error) {
	defer func() { metrics.RecordOperation("initialize_account", err) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	if holderID == "" {
		return fmt.Errorf("%w: holder id cannot be empty", domain.ErrInvalidArgument)
	}

	exists, err := s.accounts.Exists(ctx, holderID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: account %s", domain.ErrAlreadyExists, holderID)
	}

	now := time.Now().Unix()
	err = s.uow.RunInTx(ctx, func(tx *sqlx.Tx) error {
		accounts := s.accounts.WithTx(tx)
		journal := s.journal.WithTx(tx)

		if err := accounts.Create(ctx, domain.Account{
			HolderID:    holderID,
			DisplayName: displayName,
			FirstSeenAt: now,
			CreatedAt:   now,
			UpdatedAt:   now,
		}); err != nil {
			return err
		}

		for _, cur := range s.catalog.Enabled() {
			if err := accounts.InitializeBalance(ctx, holderID, cur.ID, cur.InitialBalance); err != nil {
				return err
			}
			record := domain.TransactionRecord{
				HolderID:    holderID,
				CurrencyID:  cur.ID,
				Amount:      cur.InitialBalance,
				Balance:     cur.InitialBalance,
				Kind:        domain.KindInitial,
				Description: domain.Describe(domain.KindInitial, cur.InitialBalance, domain.FlowNeutral, ""),
				Timestamp:   now,
			}
			if err := journal.Append(ctx, record); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("account initialization failed", err, logger.Fields{"holderId": holderID})
		return err
	}

	logger.Info("account initialized", logger.Fields{"holderId": holderID, "displayName": displayName})
	return nil
}

// SyncDisplayName updates the presentational name, stamping updated_at.
// Returns true iff a row changed.
func (s *LedgerService) SyncDisplayName(ctx context.Context, holderID, displayName string) (bool, error) {
	if holderID == "" || displayName == "" {
		return false, fmt.Errorf("%w: holder id and display name are required", domain.ErrInvalidArgument)
	}
	return s.accounts.UpdateDisplayName(ctx, holderID, displayName)
}

func (s *LedgerService) AccountExists(ctx context.Context, holderID string) (bool, error) {
	return s.accounts.Exists(ctx, holderID)
}

func (s *LedgerService) GetAccount(ctx context.Context, holderID string) (domain.Account, error) {
	return s.accounts.GetByID(ctx, holderID)
}

func (s *LedgerService) GetAccountByName(ctx context.Context, displayName string) (domain.Account, error) {
	return s.accounts.GetByName(ctx, displayName)
}

func (s *LedgerService) AccountCount(ctx context.Context) (int64, error) {
	return s.accounts.Count(ctx)
}

// GetBalance reports the holder's balance for the selected currency. A
// missing balance row is not an error; the second return is false.
func (s *LedgerService) GetBalance(ctx context.Context, holderID string, currency domain.CurrencyRef) (int64, bool, error) {
	cur, err := s.catalog.Resolve(currency)
	if err != nil {
		return 0, false, err
	}
	balance, err := s.accounts.GetBalance(ctx, holderID, cur.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return balance, true, nil
}

func (s *LedgerService) ListBalances(ctx context.Context, holderID string) ([]domain.Balance, error) {
	return s.accounts.ListBalances(ctx, holderID)
}

func (s *LedgerService) HasSufficientBalance(ctx context.Context, holderID string, currency domain.CurrencyRef, amount int64) (bool, error) {
	if amount < 0 {
		return false, fmt.Errorf("%w: amount cannot be negative", domain.ErrInvalidArgument)
	}
	balance, ok, err := s.GetBalance(ctx, holderID, currency)
	if err != nil {
		return false, err
	}
	return ok && balance >= amount, nil
}

func (s *LedgerService) TotalWealth(ctx context.Context, currency domain.CurrencyRef) (int64, error) {
	cur, err := s.catalog.Resolve(currency)
	if err != nil {
		return 0, err
	}
	return s.accounts.TotalWealth(ctx, cur.ID)
}

func (s *LedgerService) Leaderboard(ctx context.Context, currency domain.CurrencyRef, limit int) ([]domain.LeaderboardEntry, error) {
	cur, err := s.catalog.Resolve(currency)
	if err != nil {
		return nil, err
	}
	return s.accounts.Leaderboard(ctx, cur.ID, limit)
}

// SetBalance writes an absolute balance. The journal delta of a set record
// equals the new balance.
func (s *LedgerService) SetBalance(ctx context.Context, holderID string, currency domain.CurrencyRef, amount int64, description string) error {
	return s.setBalance(ctx, holderID, currency, amount, description)
}

// SetBalanceBy is SetBalance with the mutation attributed to an operator in
// the generated description.
func (s *LedgerService) SetBalanceBy(ctx context.Context, holderID string, currency domain.CurrencyRef, amount int64, operator domain.OperatorKind, operatorName string) error {
	description := domain.DescribeWithOperator(domain.KindSet, amount, domain.FlowNeutral, operator, operatorName, "")
	return s.setBalance(ctx, holderID, currency, amount, description)
}

func (s *LedgerService) setBalance(ctx context.Context, holderID string, currency domain.CurrencyRef, amount int64, description string) (err error) {
	defer func() { metrics.RecordOperation("set_balance", err) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount < 0 {
		return fmt.Errorf("%w: amount cannot be negative", domain.ErrInvalidArgument)
	}
	cur, err := s.catalog.Resolve(currency)
	if err != nil {
		return err
	}

	exists, err := s.accounts.Exists(ctx, holderID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: account %s", domain.ErrNotFound, holderID)
	}
	if amount > cur.MaxBalance {
		return fmt.Errorf("%w: amount %d exceeds max balance %d for %s", domain.ErrInvalidArgument, amount, cur.MaxBalance, cur.ID)
	}

	err = s.uow.RunInTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.accounts.WithTx(tx).SetBalance(ctx, holderID, cur.ID, amount); err != nil {
			return err
		}
		return s.appendRecord(ctx, tx, holderID, cur.ID, amount, amount, domain.KindSet, description, "", "")
	})
	if err != nil {
		logger.Error("set balance failed", err, logger.Fields{"holderId": holderID, "currencyId": cur.ID, "amount": amount})
		return err
	}

	logger.Info("balance set", logger.Fields{"holderId": holderID, "currencyId": cur.ID, "amount": amount})
	return nil
}

// AddMoney credits the holder. A missing balance row is lazily initialized
// at the currency's configured initial balance before the credit is applied.
func (s *LedgerService) AddMoney(ctx context.Context, holderID string, currency domain.CurrencyRef, amount int64, description string) error {
	return s.addMoney(ctx, holderID, currency, amount, description)
}

func (s *LedgerService) AddMoneyBy(ctx context.Context, holderID string, currency domain.CurrencyRef, amount int64, operator domain.OperatorKind, operatorName string) error {
	description := domain.DescribeWithOperator(domain.KindAdd, amount, domain.FlowCredit, operator, operatorName, "")
	return s.addMoney(ctx, holderID, currency, amount, description)
}

func (s *LedgerService) addMoney(ctx context.Context, holderID string, currency domain.CurrencyRef, amount int64, description string) (err error) {
	defer func() { metrics.RecordOperation("add_money", err) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount < 0 {
		return fmt.Errorf("%w: amount cannot be negative", domain.ErrInvalidArgument)
	}
	cur, err := s.catalog.Resolve(currency)
	if err != nil {
		return err
	}

	exists, err := s.accounts.Exists(ctx, holderID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: account %s", domain.ErrNotFound, holderID)
	}

	oldBalance, err := s.lazyBalance(ctx, holderID, cur)
	if err != nil {
		return err
	}

	if oldBalance > math.MaxInt64-amount {
		return fmt.Errorf("%w: credit of %d overflows balance %d", domain.ErrInvalidArgument, amount, oldBalance)
	}
	newBalance := oldBalance + amount
	if newBalance > cur.MaxBalance {
		return fmt.Errorf("%w: balance %d would exceed max balance %d for %s", domain.ErrInvalidArgument, newBalance, cur.MaxBalance, cur.ID)
	}

	err = s.uow.RunInTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.accounts.WithTx(tx).SetBalance(ctx, holderID, cur.ID, newBalance); err != nil {
			return err
		}
		return s.appendRecord(ctx, tx, holderID, cur.ID, amount, newBalance, domain.KindAdd, description, "", "")
	})
	if err != nil {
		logger.Error("add money failed", err, logger.Fields{"holderId": holderID, "currencyId": cur.ID, "amount": amount})
		return err
	}

	logger.Info("money added", logger.Fields{"holderId": holderID, "currencyId": cur.ID, "amount": amount, "balance": newBalance})
	return nil
}

// ReduceMoney debits the holder. Unlike AddMoney, a missing balance row is
// reported as not found rather than lazily created.
func (s *LedgerService) ReduceMoney(ctx context.Context, holderID string, currency domain.CurrencyRef, amount int64, description string) error {
	return s.reduceMoney(ctx, holderID, currency, amount, description)
}

func (s *LedgerService) ReduceMoneyBy(ctx context.Context, holderID string, currency domain.CurrencyRef, amount int64, operator domain.OperatorKind, operatorName string) error {
	description := domain.DescribeWithOperator(domain.KindReduce, amount, domain.FlowDebit, operator, operatorName, "")
	return s.reduceMoney(ctx, holderID, currency, amount, description)
}

func (s *LedgerService) reduceMoney(ctx context.Context, holderID string, currency domain.CurrencyRef, amount int64, description string) (err error) {
	defer func() { metrics.RecordOperation("reduce_money", err) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount < 0 {
		return fmt.Errorf("%w: amount cannot be negative", domain.ErrInvalidArgument)
	}
	cur, err := s.catalog.Resolve(currency)
	if err != nil {
		return err
	}

	oldBalance, err := s.accounts.GetBalance(ctx, holderID, cur.ID)
	if err != nil {
		return err
	}
	if oldBalance < amount {
		return fmt.Errorf("%w: have %d, need %d", domain.ErrInsufficientBalance, oldBalance, amount)
	}
	newBalance := oldBalance - amount

	err = s.uow.RunInTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.accounts.WithTx(tx).SetBalance(ctx, holderID, cur.ID, newBalance); err != nil {
			return err
		}
		return s.appendRecord(ctx, tx, holderID, cur.ID, -amount, newBalance, domain.KindReduce, description, "", "")
	})
	if err != nil {
		logger.Error("reduce money failed", err, logger.Fields{"holderId": holderID, "currencyId": cur.ID, "amount": amount})
		return err
	}

	logger.Info("money reduced", logger.Fields{"holderId": holderID, "currencyId": cur.ID, "amount": amount, "balance": newBalance})
	return nil
}

// Transfer moves amount from one holder to another, charging the source the
// configured fixed fee plus the rounded percentage fee. The debit and the
// credit commit together with two journal records sharing a transfer group
// id, or not at all.
func (s *LedgerService) Transfer(ctx context.Context, fromHolderID, toHolderID string, currency domain.CurrencyRef, amount int64, description string) (err error) {
	defer func() { metrics.RecordOperation("transfer", err) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount < 0 {
		return fmt.Errorf("%w: amount cannot be negative", domain.ErrInvalidArgument)
	}
	cur, err := s.catalog.Resolve(currency)
	if err != nil {
		return err
	}
	if fromHolderID == toHolderID {
		return fmt.Errorf("%w: cannot transfer to self", domain.ErrInvalidArgument)
	}
	if !cur.AllowTransfer {
		return fmt.Errorf("%w: %s", domain.ErrTransferDisabled, cur.ID)
	}
	if amount < cur.MinTransferAmount {
		return fmt.Errorf("%w: amount %d below minimum transfer %d for %s", domain.ErrInvalidArgument, amount, cur.MinTransferAmount, cur.ID)
	}

	fromBalance, err := s.accounts.GetBalance(ctx, fromHolderID, cur.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: source balance for %s/%s", domain.ErrNotFound, fromHolderID, cur.ID)
		}
		return err
	}

	toExists, err := s.accounts.Exists(ctx, toHolderID)
	if err != nil {
		return err
	}
	if !toExists {
		return fmt.Errorf("%w: destination account %s", domain.ErrNotFound, toHolderID)
	}

	toOldBalance, err := s.lazyBalance(ctx, toHolderID, cur)
	if err != nil {
		return err
	}

	if fromBalance < amount {
		return fmt.Errorf("%w: have %d, need %d", domain.ErrInsufficientBalance, fromBalance, amount)
	}

	fee := transferFee(amount, cur)

	// Overflow guards run before the arithmetic they protect.
	if fee > 0 && amount > math.MaxInt64-fee {
		return fmt.Errorf("%w: amount plus fee exceeds representable range", domain.ErrInvalidArgument)
	}
	totalDebit := amount + fee

	if fromBalance < totalDebit {
		return fmt.Errorf("%w: have %d, need %d including fee %d", domain.ErrInsufficientBalance, fromBalance, totalDebit, fee)
	}
	fromNewBalance := fromBalance - totalDebit

	if toOldBalance > math.MaxInt64-amount {
		return fmt.Errorf("%w: credit exceeds representable range", domain.ErrInvalidArgument)
	}
	toNewBalance := toOldBalance + amount

	if toNewBalance > cur.MaxBalance {
		return fmt.Errorf("%w: destination balance %d would exceed max balance %d for %s", domain.ErrInvalidArgument, toNewBalance, cur.MaxBalance, cur.ID)
	}

	groupID := uuid.NewString()
	now := time.Now().Unix()

	err = s.uow.RunInTx(ctx, func(tx *sqlx.Tx) error {
		accounts := s.accounts.WithTx(tx)
		if err := accounts.SetBalance(ctx, fromHolderID, cur.ID, fromNewBalance); err != nil {
			return err
		}
		if err := accounts.SetBalance(ctx, toHolderID, cur.ID, toNewBalance); err != nil {
			return err
		}

		journal := s.journal.WithTx(tx)
		debit := domain.TransactionRecord{
			HolderID:        fromHolderID,
			CurrencyID:      cur.ID,
			Amount:          -totalDebit,
			Balance:         fromNewBalance,
			Kind:            domain.KindTransfer,
			Description:     description,
			Timestamp:       now,
			RelatedHolderID: toHolderID,
			TransferGroupID: groupID,
		}
		if debit.Description == "" {
			debit.Description = s.describeTransfer(ctx, accounts, totalDebit, domain.FlowDebit, toHolderID)
		}
		if err := journal.Append(ctx, debit); err != nil {
			return err
		}

		credit := domain.TransactionRecord{
			HolderID:        toHolderID,
			CurrencyID:      cur.ID,
			Amount:          amount,
			Balance:         toNewBalance,
			Kind:            domain.KindTransfer,
			Description:     description,
			Timestamp:       now,
			RelatedHolderID: fromHolderID,
			TransferGroupID: groupID,
		}
		if credit.Description == "" {
			credit.Description = s.describeTransfer(ctx, accounts, amount, domain.FlowCredit, fromHolderID)
		}
		return journal.Append(ctx, credit)
	})
	if err != nil {
		logger.Error("transfer failed", err, logger.Fields{
			"fromHolderId": fromHolderID,
			"toHolderId":   toHolderID,
			"currencyId":   cur.ID,
			"amount":       amount,
			"fee":          fee,
		})
		return err
	}

	logger.Info("transfer complete", logger.Fields{
		"fromHolderId":    fromHolderID,
		"toHolderId":      toHolderID,
		"currencyId":      cur.ID,
		"amount":          amount,
		"fee":             fee,
		"transferGroupId": groupID,
	})
	return nil
}

func (s *LedgerService) Transactions(ctx context.Context, holderID, currencyID string, page, pageSize int) ([]domain.TransactionRecord, error) {
	if currencyID != "" {
		if _, ok := s.catalog.Get(currencyID); !ok {
			return nil, fmt.Errorf("%w: unknown currency %q", domain.ErrInvalidArgument, currencyID)
		}
	}
	return s.journal.ListForHolder(ctx, holderID, currencyID, page, pageSize)
}

func (s *LedgerService) TransactionsByKind(ctx context.Context, holderID string, kind domain.TransactionKind, page, pageSize int) ([]domain.TransactionRecord, error) {
	return s.journal.ListForHolderByKind(ctx, holderID, kind, page, pageSize)
}

func (s *LedgerService) TransactionsByTimeRange(ctx context.Context, holderID string, start, end int64, page, pageSize int) ([]domain.TransactionRecord, error) {
	return s.journal.ListForHolderByTimeRange(ctx, holderID, start, end, page, pageSize)
}

func (s *LedgerService) TransactionCount(ctx context.Context, holderID string) (int64, error) {
	return s.journal.CountForHolder(ctx, holderID)
}

func (s *LedgerService) RecentTransactions(ctx context.Context, limit int) ([]domain.TransactionRecord, error) {
	return s.journal.Recent(ctx, limit)
}

func (s *LedgerService) TotalTransactionCount(ctx context.Context) (int64, error) {
	return s.journal.CountAll(ctx)
}

func (s *LedgerService) TransactionCountByKind(ctx context.Context, kind domain.TransactionKind) (int64, error) {
	return s.journal.CountByKind(ctx, kind)
}

func (s *LedgerService) PurgeTransactions(ctx context.Context, retentionDays int) (removed int64, err error) {
	defer func() { metrics.RecordOperation("purge_transactions", err) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err = s.journal.PurgeOlderThan(ctx, retentionDays)
	if err != nil {
		return 0, err
	}
	logger.Info("transactions purged", logger.Fields{"retentionDays": retentionDays, "removed": removed})
	return removed, nil
}

// lazyBalance reads the holder's balance, creating the row at the
// currency's configured initial balance when the account predates the
// currency. The backfill commits immediately, outside any surrounding unit
// of work, matching first-contact initialization.
func (s *LedgerService) lazyBalance(ctx context.Context, holderID string, cur config.Currency) (int64, error) {
	balance, err := s.accounts.GetBalance(ctx, holderID, cur.ID)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return 0, err
	}
	if err := s.accounts.InitializeBalance(ctx, holderID, cur.ID, cur.InitialBalance); err != nil {
		return 0, err
	}
	return cur.InitialBalance, nil
}

// appendRecord writes one journal row, generating the default description
// when the caller supplied none.
func (s *LedgerService) appendRecord(
	ctx context.Context,
	tx *sqlx.Tx,
	holderID, currencyID string,
	delta, balance int64,
	kind domain.TransactionKind,
	description string,
	relatedHolderID, transferGroupID string,
) error {
	if description == "" {
		relatedName := ""
		if relatedHolderID != "" {
			if related, err := s.accounts.WithTx(tx).GetByID(ctx, relatedHolderID); err == nil {
				relatedName = related.DisplayName
			}
		}
		description = domain.Describe(kind, abs64(delta), flowOf(kind, delta), relatedName)
	}

	return s.journal.WithTx(tx).Append(ctx, domain.TransactionRecord{
		HolderID:        holderID,
		CurrencyID:      currencyID,
		Amount:          delta,
		Balance:         balance,
		Kind:            kind,
		Description:     description,
		Timestamp:       time.Now().Unix(),
		RelatedHolderID: relatedHolderID,
		TransferGroupID: transferGroupID,
	})
}

func (s *LedgerService) describeTransfer(ctx context.Context, accounts repo_interfaces.AccountRepository, amountAbs int64, flow domain.MoneyFlow, counterpartyID string) string {
	counterpartyName := ""
	if counterparty, err := accounts.GetByID(ctx, counterpartyID); err == nil {
		counterpartyName = counterparty.DisplayName
	}
	return domain.Describe(domain.KindTransfer, amountAbs, flow, counterpartyName)
}

func flowOf(kind domain.TransactionKind, delta int64) domain.MoneyFlow {
	switch kind {
	case domain.KindSet, domain.KindInitial:
		return domain.FlowNeutral
	case domain.KindReduce:
		return domain.FlowDebit
	case domain.KindAdd, domain.KindTransfer:
		if delta >= 0 {
			return domain.FlowCredit
		}
		return domain.FlowDebit
	}
	return domain.FlowNeutral
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
