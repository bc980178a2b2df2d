package testutil

import (
	"database/sql"
	"testing"

	"github.com/pocketledger/Pocket-Ledger-Backend/internal/repository"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/service"
)

func NewTestAccountService(t *testing.T, db *sql.DB) *service.AccountService {
	t.Helper()

	return service.NewAccountService(repository.NewAccountRepository(db))
}

func NewTestCategoryService(t *testing.T, db *sql.DB) *service.CategoryService {
	t.Helper()

	return service.NewCategoryService(repository.NewCategoryRepository(db))
}

func NewTestLedgerService(t *testing.T, db *sql.DB) *service.LedgerService {
	t.Helper()

	return service.NewLedgerService(
		repository.NewTransactionRepository(db),
		repository.NewAccountRepository(db),
		repository.NewCategoryRepository(db),
	)
}

func NewTestRecurringService(t *testing.T, db *sql.DB) *service.RecurringService {
	t.Helper()

	return service.NewRecurringService(
		repository.NewRecurringRuleRepository(db),
		repository.NewRunLogRepository(db),
		NewTestLedgerService(t, db),
	)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}
