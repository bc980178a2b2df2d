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

// RecurringRuleRepository provides data access methods for the recurring_rule table.
type RecurringRuleRepository struct {
	db *sql.DB
}

// NewRecurringRuleRepository creates a new RecurringRuleRepository with the provided database connection.
func NewRecurringRuleRepository(db *sql.DB) *RecurringRuleRepository {
	return &RecurringRuleRepository{db: db}
}

const ruleColumns = `
	id, user_id, kind, account_id, category_id, type, from_account_id,
	to_account_id, amount, description, cadence, day_of_week, day_of_month,
	start_at, end_at, next_run_at, last_run_at, is_paused, created_at,
	updated_at, deleted_at
`

// Insert stores a new recurring rule.
func (r *RecurringRuleRepository) Insert(ctx context.Context, rule *model.RecurringRule) error {
	query := `
		INSERT INTO recurring_rule (
			id, user_id, kind, account_id, category_id, type, from_account_id,
			to_account_id, amount, description, cadence, day_of_week,
			day_of_month, start_at, end_at, next_run_at, last_run_at,
			is_paused, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		rule.ID,
		rule.UserID,
		rule.Kind,
		nullString(rule.AccountID),
		nullString(rule.CategoryID),
		nullString(rule.Type),
		nullString(rule.FromAccountID),
		nullString(rule.ToAccountID),
		rule.Amount.String(),
		rule.Description,
		rule.Cadence,
		nullInt(rule.DayOfWeek),
		nullInt(rule.DayOfMonth),
		FormatTime(rule.StartAt),
		nullTime(rule.EndAt),
		FormatTime(rule.NextRunAt),
		nullTime(rule.LastRunAt),
		rule.IsPaused,
		FormatTime(rule.CreatedAt),
		FormatTime(rule.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert recurring rule: %w", err)
	}
	return nil
}

// Get retrieves a non-deleted rule by ID, scoped to the owner.
// Returns apperrors.ErrRuleNotFound if no matching row exists.
func (r *RecurringRuleRepository) Get(ctx context.Context, userID, ruleID string) (model.RecurringRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM recurring_rule
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL
	`

	row := r.db.QueryRowContext(ctx, query, ruleID, userID)
	rule, err := scanRule(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RecurringRule{}, apperrors.ErrRuleNotFound
	}
	if err != nil {
		return model.RecurringRule{}, err
	}
	return rule, nil
}

// List retrieves all non-deleted rules for the owner. When monthStart is
// non-zero, only rules whose next occurrence falls inside
// [monthStart, monthStart+1 month) are returned.
func (r *RecurringRuleRepository) List(ctx context.Context, userID string, monthStart time.Time) ([]model.RecurringRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM recurring_rule
		WHERE user_id = ? AND deleted_at IS NULL
	`
	args := []any{userID}

	if !monthStart.IsZero() {
		query += ` AND next_run_at >= ? AND next_run_at < ?`
		args = append(args, FormatTime(monthStart), FormatTime(monthStart.AddDate(0, 1, 0)))
	}
	query += ` ORDER BY next_run_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring_rule table: %w", err)
	}
	defer rows.Close()

	rules := []model.RecurringRule{}
	for rows.Next() {
		rule, err := scanRule(rows.Scan)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recurring_rule table: %w", err)
	}

	return rules, nil
}

// ListDue retrieves every active rule whose next occurrence is due at or
// before now, across all owners. Paused and soft-deleted rules are excluded.
func (r *RecurringRuleRepository) ListDue(ctx context.Context, now time.Time) ([]model.RecurringRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM recurring_rule
		WHERE deleted_at IS NULL AND is_paused = FALSE AND next_run_at <= ?
		ORDER BY next_run_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, FormatTime(now))
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring_rule table: %w", err)
	}
	defer rows.Close()

	rules := []model.RecurringRule{}
	for rows.Next() {
		rule, err := scanRule(rows.Scan)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recurring_rule table: %w", err)
	}

	return rules, nil
}

// Update persists all mutable fields of a rule. Last writer wins; the run log,
// not the rule row, is the correctness boundary for posted occurrences.
func (r *RecurringRuleRepository) Update(ctx context.Context, rule *model.RecurringRule) error {
	query := `
		UPDATE recurring_rule SET
			amount = ?, description = ?, cadence = ?, day_of_week = ?,
			day_of_month = ?, end_at = ?, next_run_at = ?, last_run_at = ?,
			is_paused = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query,
		rule.Amount.String(),
		rule.Description,
		rule.Cadence,
		nullInt(rule.DayOfWeek),
		nullInt(rule.DayOfMonth),
		nullTime(rule.EndAt),
		FormatTime(rule.NextRunAt),
		nullTime(rule.LastRunAt),
		rule.IsPaused,
		FormatTime(rule.UpdatedAt),
		rule.ID,
		rule.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update recurring rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrRuleNotFound
	}
	return nil
}

// UpdateSchedule persists only the scheduling cursor (next_run_at, last_run_at,
// is_paused). Used by the due-rule processor after a pass.
func (r *RecurringRuleRepository) UpdateSchedule(ctx context.Context, rule *model.RecurringRule) error {
	query := `
		UPDATE recurring_rule SET
			next_run_at = ?, last_run_at = ?, is_paused = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, query,
		FormatTime(rule.NextRunAt),
		nullTime(rule.LastRunAt),
		rule.IsPaused,
		FormatTime(rule.UpdatedAt),
		rule.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update rule schedule: %w", err)
	}
	return nil
}

// SoftDelete marks a rule as deleted. The rule's run log history is retained
// for audit. Returns apperrors.ErrRuleNotFound if no active rule matched.
func (r *RecurringRuleRepository) SoftDelete(ctx context.Context, userID, ruleID string, deletedAt time.Time) error {
	query := `
		UPDATE recurring_rule SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, FormatTime(deletedAt), FormatTime(deletedAt), ruleID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete recurring rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrRuleNotFound
	}
	return nil
}

// scanRule maps one recurring_rule row onto a model.RecurringRule.
//
//nolint:gocyclo // straight-line column mapping
func scanRule(scan func(...any) error) (model.RecurringRule, error) {
	var rule model.RecurringRule
	var accountID, categoryID, ruleType, fromAccountID, toAccountID sql.NullString
	var description sql.NullString
	var dayOfWeek, dayOfMonth sql.NullInt64
	var amountStr, startAtStr, nextRunAtStr, createdAtStr, updatedAtStr string
	var endAtStr, lastRunAtStr, deletedAtStr sql.NullString

	err := scan(
		&rule.ID,
		&rule.UserID,
		&rule.Kind,
		&accountID,
		&categoryID,
		&ruleType,
		&fromAccountID,
		&toAccountID,
		&amountStr,
		&description,
		&rule.Cadence,
		&dayOfWeek,
		&dayOfMonth,
		&startAtStr,
		&endAtStr,
		&nextRunAtStr,
		&lastRunAtStr,
		&rule.IsPaused,
		&createdAtStr,
		&updatedAtStr,
		&deletedAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RecurringRule{}, err
	}
	if err != nil {
		return model.RecurringRule{}, fmt.Errorf("failed to scan recurring_rule table results: %w", err)
	}

	rule.Amount, err = decimal.NewFromString(amountStr)
	if err != nil {
		return model.RecurringRule{}, fmt.Errorf("failed to parse amount: %w", err)
	}

	rule.StartAt, err = ParseTime(startAtStr)
	if err != nil {
		return model.RecurringRule{}, err
	}
	rule.NextRunAt, err = ParseTime(nextRunAtStr)
	if err != nil {
		return model.RecurringRule{}, err
	}
	rule.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.RecurringRule{}, err
	}
	rule.UpdatedAt, err = ParseTime(updatedAtStr)
	if err != nil {
		return model.RecurringRule{}, err
	}
	rule.EndAt, err = timePtr(endAtStr)
	if err != nil {
		return model.RecurringRule{}, err
	}
	rule.LastRunAt, err = timePtr(lastRunAtStr)
	if err != nil {
		return model.RecurringRule{}, err
	}
	rule.DeletedAt, err = timePtr(deletedAtStr)
	if err != nil {
		return model.RecurringRule{}, err
	}

	rule.AccountID = stringPtr(accountID)
	rule.CategoryID = stringPtr(categoryID)
	rule.Type = stringPtr(ruleType)
	rule.FromAccountID = stringPtr(fromAccountID)
	rule.ToAccountID = stringPtr(toAccountID)
	rule.DayOfWeek = intPtr(dayOfWeek)
	rule.DayOfMonth = intPtr(dayOfMonth)
	if description.Valid {
		rule.Description = description.String
	}

	return rule, nil
}
