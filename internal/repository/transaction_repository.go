package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pocketledger/Pocket-Ledger-Backend/internal/apperrors"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/model"
)

// TransactionRepository provides data access methods for the ledger_transaction table.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `
	id, user_id, account_id, category_id, type, kind, amount, currency,
	description, occurred_at, transfer_group_id, transfer_direction,
	related_account_id, created_at, deleted_at
`

// Insert stores a new ledger transaction. Amounts are stored as their exact
// decimal string representation.
func (r *TransactionRepository) Insert(ctx context.Context, t *model.Transaction) error {
	query := `
		INSERT INTO ledger_transaction (
			id, user_id, account_id, category_id, type, kind, amount, currency,
			description, occurred_at, transfer_group_id, transfer_direction,
			related_account_id, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.UserID,
		t.AccountID,
		nullString(t.CategoryID),
		t.Type,
		t.Kind,
		t.Amount.String(),
		t.Currency,
		t.Description,
		FormatTime(t.OccurredAt),
		nullString(t.TransferGroupID),
		nullString(t.TransferDirection),
		nullString(t.RelatedAccountID),
		FormatTime(t.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert ledger transaction: %w", err)
	}
	return nil
}

// Get retrieves a non-deleted transaction by ID, scoped to the owner.
// Returns apperrors.ErrTransactionNotFound if no matching row exists.
func (r *TransactionRepository) Get(ctx context.Context, userID, transactionID string) (model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM ledger_transaction
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL
	`

	row := r.db.QueryRowContext(ctx, query, transactionID, userID)
	t, err := scanTransaction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return model.Transaction{}, err
	}
	return t, nil
}

// List retrieves all non-deleted transactions for the owner, most recent
// occurrence first. When accountID is non-empty, only transactions booked
// against that account are returned.
func (r *TransactionRepository) List(ctx context.Context, userID, accountID string) ([]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM ledger_transaction
		WHERE user_id = ? AND deleted_at IS NULL
	`
	args := []any{userID}

	if accountID != "" {
		query += ` AND account_id = ?`
		args = append(args, accountID)
	}
	query += ` ORDER BY occurred_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger_transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger_transaction table: %w", err)
	}

	return transactions, nil
}

// ListByTransferGroup retrieves both legs of a transfer, oldest first.
func (r *TransactionRepository) ListByTransferGroup(ctx context.Context, userID, groupID string) ([]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM ledger_transaction
		WHERE user_id = ? AND transfer_group_id = ? AND deleted_at IS NULL
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger_transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger_transaction table: %w", err)
	}

	return transactions, nil
}

// SoftDelete marks a transaction as deleted without removing the row.
// Returns apperrors.ErrTransactionNotFound if no active transaction matched.
func (r *TransactionRepository) SoftDelete(ctx context.Context, userID, transactionID string, deletedAt time.Time) error {
	query := `
		UPDATE ledger_transaction SET deleted_at = ?
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, FormatTime(deletedAt), transactionID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete ledger transaction: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

// scanTransaction maps one ledger_transaction row onto a model.Transaction.
func scanTransaction(scan func(...any) error) (model.Transaction, error) {
	var t model.Transaction
	var categoryID, transferGroupID, transferDirection, relatedAccountID sql.NullString
	var description sql.NullString
	var amountStr, occurredAtStr, createdAtStr string
	var deletedAtStr sql.NullString

	err := scan(
		&t.ID,
		&t.UserID,
		&t.AccountID,
		&categoryID,
		&t.Type,
		&t.Kind,
		&amountStr,
		&t.Currency,
		&description,
		&occurredAtStr,
		&transferGroupID,
		&transferDirection,
		&relatedAccountID,
		&createdAtStr,
		&deletedAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, err
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan ledger_transaction table results: %w", err)
	}

	t.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to parse amount: %w", err)
	}

	t.OccurredAt, err = ParseTime(occurredAtStr)
	if err != nil {
		return model.Transaction{}, err
	}
	t.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Transaction{}, err
	}
	t.DeletedAt, err = timePtr(deletedAtStr)
	if err != nil {
		return model.Transaction{}, err
	}

	t.CategoryID = stringPtr(categoryID)
	t.TransferGroupID = stringPtr(transferGroupID)
	t.TransferDirection = stringPtr(transferDirection)
	t.RelatedAccountID = stringPtr(relatedAccountID)
	if description.Valid {
		t.Description = description.String
	}

	return t, nil
}
