package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pocketledger/Pocket-Ledger-Backend/internal/api/request"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/model"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/repository"
)

// AccountService handles account-related business logic operations.
type AccountService struct {
	accountRepo *repository.AccountRepository
}

// NewAccountService creates a new AccountService with the provided repository dependency.
func NewAccountService(accountRepo *repository.AccountRepository) *AccountService {
	return &AccountService{accountRepo: accountRepo}
}

// CreateAccount creates a new account for the owner.
func (s *AccountService) CreateAccount(ctx context.Context, userID string, req request.CreateAccountRequest) (*model.Account, error) {
	account := &model.Account{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      strings.TrimSpace(req.Name),
		Currency:  strings.ToUpper(req.Currency),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.accountRepo.Insert(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}

// GetAccount retrieves a single active account, scoped to the owner.
func (s *AccountService) GetAccount(ctx context.Context, userID, accountID string) (model.Account, error) {
	return s.accountRepo.GetActive(ctx, userID, accountID)
}

// ListAccounts retrieves the owner's active accounts.
func (s *AccountService) ListAccounts(ctx context.Context, userID string) ([]model.Account, error) {
	return s.accountRepo.List(ctx, userID)
}

// DeleteAccount soft-deletes an account. Historical transactions keep
// referencing it; only new postings are blocked.
func (s *AccountService) DeleteAccount(ctx context.Context, userID, accountID string) error {
	return s.accountRepo.SoftDelete(ctx, userID, accountID, time.Now().UTC())
}
