package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pocketledger/Pocket-Ledger-Backend/internal/apperrors"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/model"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/repository"
)

// LedgerService is the posting engine: it validates and creates ledger
// transactions against account and category state. Single postings and linked
// transfer pairs both go through here, whether they originate from a user
// request or from the due-rule processor.
type LedgerService struct {
	transactionRepo *repository.TransactionRepository
	accountRepo     *repository.AccountRepository
	categoryRepo    *repository.CategoryRepository
}

// NewLedgerService creates a new LedgerService with the provided repository dependencies.
func NewLedgerService(
	transactionRepo *repository.TransactionRepository,
	accountRepo *repository.AccountRepository,
	categoryRepo *repository.CategoryRepository,
) *LedgerService {
	return &LedgerService{
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
		categoryRepo:    categoryRepo,
	}
}

// NormalPosting describes a single posting to be created.
type NormalPosting struct {
	UserID      string
	AccountID   string
	CategoryID  string
	Type        string
	Amount      decimal.Decimal
	Currency    string // optional; defaults to the account's currency
	Description string
	OccurredAt  time.Time
}

// TransferPosting describes a transfer pair to be created.
type TransferPosting struct {
	UserID        string
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Description   string
	OccurredAt    time.Time
}

// ResolveActiveAccount looks up a non-deleted account scoped to the owner.
func (s *LedgerService) ResolveActiveAccount(ctx context.Context, userID, accountID string) (model.Account, error) {
	return s.accountRepo.GetActive(ctx, userID, accountID)
}

// ResolveActiveCategory looks up a non-deleted category scoped to the owner.
func (s *LedgerService) ResolveActiveCategory(ctx context.Context, userID, categoryID string) (model.Category, error) {
	return s.categoryRepo.GetActive(ctx, userID, categoryID)
}

// validateTransactionType checks that a posting's type matches its category's type.
func validateTransactionType(categoryType, transactionType string) error {
	if categoryType != transactionType {
		return fmt.Errorf("%w: category is %s, transaction is %s",
			apperrors.ErrInvalidCategoryType, categoryType, transactionType)
	}
	return nil
}

// validateCurrency checks that a requested currency matches the account's currency.
func validateCurrency(accountCurrency, requestedCurrency string) error {
	if accountCurrency != requestedCurrency {
		return fmt.Errorf("%w: account is %s, requested %s",
			apperrors.ErrCurrencyMismatch, accountCurrency, requestedCurrency)
	}
	return nil
}

// CreateTransaction validates and books one normal posting.
func (s *LedgerService) CreateTransaction(ctx context.Context, p NormalPosting) (*model.Transaction, error) {
	if !p.Amount.IsPositive() {
		return nil, apperrors.ErrNonPositiveAmount
	}

	account, err := s.ResolveActiveAccount(ctx, p.UserID, p.AccountID)
	if err != nil {
		return nil, err
	}
	category, err := s.ResolveActiveCategory(ctx, p.UserID, p.CategoryID)
	if err != nil {
		return nil, err
	}

	if err := validateTransactionType(category.Type, p.Type); err != nil {
		return nil, err
	}

	currency := p.Currency
	if currency == "" {
		currency = account.Currency
	}
	if err := validateCurrency(account.Currency, currency); err != nil {
		return nil, err
	}

	categoryID := category.ID
	transaction := &model.Transaction{
		ID:          uuid.New().String(),
		UserID:      p.UserID,
		AccountID:   account.ID,
		CategoryID:  &categoryID,
		Type:        p.Type,
		Kind:        model.TransactionKindNormal,
		Amount:      p.Amount,
		Currency:    currency,
		Description: p.Description,
		OccurredAt:  p.OccurredAt.UTC(),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.transactionRepo.Insert(ctx, transaction); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	return transaction, nil
}

// CreateTransferPair validates and books a transfer as two linked postings:
// an expense leg out of the source account and an income leg into the
// destination, sharing a transfer group id and cross-referencing each other.
//
// The two inserts are independent writes. A crash between them leaves a
// one-sided transfer; the gap is accepted rather than hidden.
func (s *LedgerService) CreateTransferPair(ctx context.Context, p TransferPosting) ([]model.Transaction, error) {
	if !p.Amount.IsPositive() {
		return nil, apperrors.ErrNonPositiveAmount
	}
	if p.FromAccountID == p.ToAccountID {
		return nil, apperrors.ErrTransferAccountConflict
	}

	from, err := s.ResolveActiveAccount(ctx, p.UserID, p.FromAccountID)
	if err != nil {
		return nil, err
	}
	to, err := s.ResolveActiveAccount(ctx, p.UserID, p.ToAccountID)
	if err != nil {
		return nil, err
	}

	if err := validateCurrency(from.Currency, to.Currency); err != nil {
		return nil, err
	}

	groupID := uuid.New().String()
	now := time.Now().UTC()
	occurredAt := p.OccurredAt.UTC()

	outDirection := model.TransferDirectionOut
	inDirection := model.TransferDirectionIn
	toID := to.ID
	fromID := from.ID

	outLeg := model.Transaction{
		ID:                uuid.New().String(),
		UserID:            p.UserID,
		AccountID:         from.ID,
		Type:              model.TransactionTypeExpense,
		Kind:              model.TransactionKindTransfer,
		Amount:            p.Amount,
		Currency:          from.Currency,
		Description:       p.Description,
		OccurredAt:        occurredAt,
		TransferGroupID:   &groupID,
		TransferDirection: &outDirection,
		RelatedAccountID:  &toID,
		CreatedAt:         now,
	}
	inLeg := model.Transaction{
		ID:                uuid.New().String(),
		UserID:            p.UserID,
		AccountID:         to.ID,
		Type:              model.TransactionTypeIncome,
		Kind:              model.TransactionKindTransfer,
		Amount:            p.Amount,
		Currency:          to.Currency,
		Description:       p.Description,
		OccurredAt:        occurredAt,
		TransferGroupID:   &groupID,
		TransferDirection: &inDirection,
		RelatedAccountID:  &fromID,
		CreatedAt:         now,
	}

	if err := s.transactionRepo.Insert(ctx, &outLeg); err != nil {
		return nil, fmt.Errorf("failed to create transfer out leg: %w", err)
	}
	if err := s.transactionRepo.Insert(ctx, &inLeg); err != nil {
		return nil, fmt.Errorf("failed to create transfer in leg: %w", err)
	}

	return []model.Transaction{outLeg, inLeg}, nil
}

// GetTransaction retrieves a single transaction by ID, scoped to the owner.
func (s *LedgerService) GetTransaction(ctx context.Context, userID, transactionID string) (model.Transaction, error) {
	return s.transactionRepo.Get(ctx, userID, transactionID)
}

// ListTransactions retrieves the owner's transactions, optionally filtered by account.
func (s *LedgerService) ListTransactions(ctx context.Context, userID, accountID string) ([]model.Transaction, error) {
	return s.transactionRepo.List(ctx, userID, accountID)
}

// DeleteTransaction soft-deletes a transaction.
func (s *LedgerService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	return s.transactionRepo.SoftDelete(ctx, userID, transactionID, time.Now().UTC())
}
