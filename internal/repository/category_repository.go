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

// CategoryRepository provides data access methods for the category table.
// All lookups are owner-scoped and soft-delete aware.
type CategoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new CategoryRepository with the provided database connection.
func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Insert stores a new category.
func (r *CategoryRepository) Insert(ctx context.Context, category *model.Category) error {
	query := `
		INSERT INTO category (id, user_id, name, type, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		category.ID, category.UserID, category.Name, category.Type, FormatTime(category.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

// GetActive retrieves a non-deleted category by ID, scoped to the owner.
// Returns apperrors.ErrCategoryNotFound if the category does not exist,
// belongs to another owner, or has been soft-deleted.
func (r *CategoryRepository) GetActive(ctx context.Context, userID, categoryID string) (model.Category, error) {
	query := `
		SELECT id, user_id, name, type, created_at
		FROM category
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL
	`

	var c model.Category
	var createdAtStr string
	err := r.db.QueryRowContext(ctx, query, categoryID, userID).Scan(
		&c.ID, &c.UserID, &c.Name, &c.Type, &createdAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, apperrors.ErrCategoryNotFound
	}
	if err != nil {
		return model.Category{}, fmt.Errorf("failed to query category table: %w", err)
	}

	c.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Category{}, err
	}

	return c, nil
}

// List retrieves all non-deleted categories for the owner, oldest first.
func (r *CategoryRepository) List(ctx context.Context, userID string) ([]model.Category, error) {
	query := `
		SELECT id, user_id, name, type, created_at
		FROM category
		WHERE user_id = ? AND deleted_at IS NULL
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query category table: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		var createdAtStr string
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan category table results: %w", err)
		}
		c.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category table: %w", err)
	}

	return categories, nil
}

// SoftDelete marks a category as deleted without removing the row.
// Returns apperrors.ErrCategoryNotFound if no active category matched.
func (r *CategoryRepository) SoftDelete(ctx context.Context, userID, categoryID string, deletedAt time.Time) error {
	query := `
		UPDATE category SET deleted_at = ?
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, FormatTime(deletedAt), categoryID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}
