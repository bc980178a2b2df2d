package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pocketledger/Pocket-Ledger-Backend/internal/apperrors"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/model"
)

// AccountRepository provides data access methods for the account table.
// All lookups are owner-scoped and soft-delete aware.
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new AccountRepository with the provided database connection.
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Insert stores a new account.
func (r *AccountRepository) Insert(ctx context.Context, account *model.Account) error {
	query := `
		INSERT INTO account (id, user_id, name, currency, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		account.ID, account.UserID, account.Name, account.Currency, FormatTime(account.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// GetActive retrieves a non-deleted account by ID, scoped to the owner.
// Returns apperrors.ErrAccountNotFound if the account does not exist, belongs
// to another owner, or has been soft-deleted.
func (r *AccountRepository) GetActive(ctx context.Context, userID, accountID string) (model.Account, error) {
	query := `
		SELECT id, user_id, name, currency, created_at
		FROM account
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL
	`

	var a model.Account
	var createdAtStr string
	err := r.db.QueryRowContext(ctx, query, accountID, userID).Scan(
		&a.ID, &a.UserID, &a.Name, &a.Currency, &createdAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, apperrors.ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to query account table: %w", err)
	}

	a.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Account{}, err
	}

	return a, nil
}

// List retrieves all non-deleted accounts for the owner, oldest first.
func (r *AccountRepository) List(ctx context.Context, userID string) ([]model.Account, error) {
	query := `
		SELECT id, user_id, name, currency, created_at
		FROM account
		WHERE user_id = ? AND deleted_at IS NULL
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query account table: %w", err)
	}
	defer rows.Close()

	accounts := []model.Account{}
	for rows.Next() {
		var a model.Account
		var createdAtStr string
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Currency, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan account table results: %w", err)
		}
		a.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account table: %w", err)
	}

	return accounts, nil
}

// SoftDelete marks an account as deleted without removing the row.
// Returns apperrors.ErrAccountNotFound if no active account matched.
func (r *AccountRepository) SoftDelete(ctx context.Context, userID, accountID string, deletedAt time.Time) error {
	query := `
		UPDATE account SET deleted_at = ?
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, FormatTime(deletedAt), accountID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}
