package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pocketledger/Pocket-Ledger-Backend/internal/model"
)

// MakeID generates a unique identifier for test entities.
func MakeID() string {
	return uuid.New().String()
}

// DefaultOwnerID is the owner used by all builders unless overridden. Using a
// fixed id keeps owner scoping assertions readable.
const DefaultOwnerID = "11111111-1111-1111-1111-111111111111"

// formatTime mirrors the storage format the repositories use.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// AccountBuilder provides a fluent interface for creating test accounts.
//
// Example usage:
//
//	// Simple creation with defaults
//	account := testutil.NewAccount().Build(t, db)
//
//	// Customized account
//	account := testutil.NewAccount().
//	    WithName("Savings").
//	    WithCurrency("USD").
//	    Build(t, db)
type AccountBuilder struct {
	ID       string
	UserID   string
	Name     string
	Currency string
	Deleted  bool
}

// NewAccount creates an AccountBuilder with sensible defaults.
func NewAccount() *AccountBuilder {
	return &AccountBuilder{
		ID:       MakeID(),
		UserID:   DefaultOwnerID,
		Name:     "Test Account",
		Currency: "EUR",
	}
}

// WithID sets a custom ID.
func (b *AccountBuilder) WithID(id string) *AccountBuilder {
	b.ID = id
	return b
}

// WithOwner sets a custom owner.
func (b *AccountBuilder) WithOwner(userID string) *AccountBuilder {
	b.UserID = userID
	return b
}

// WithName sets a custom name.
func (b *AccountBuilder) WithName(name string) *AccountBuilder {
	b.Name = name
	return b
}

// WithCurrency sets a custom currency.
func (b *AccountBuilder) WithCurrency(currency string) *AccountBuilder {
	b.Currency = currency
	return b
}

// SoftDeleted marks the account as soft-deleted.
func (b *AccountBuilder) SoftDeleted() *AccountBuilder {
	b.Deleted = true
	return b
}

// Build creates the account in the database and returns it.
func (b *AccountBuilder) Build(t *testing.T, db *sql.DB) model.Account {
	t.Helper()

	now := time.Now().UTC()
	var deletedAt sql.NullString
	if b.Deleted {
		deletedAt = sql.NullString{String: formatTime(now), Valid: true}
	}

	query := `
		INSERT INTO account (id, user_id, name, currency, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query, b.ID, b.UserID, b.Name, b.Currency, formatTime(now), deletedAt)
	if err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}

	account := model.Account{
		ID:        b.ID,
		UserID:    b.UserID,
		Name:      b.Name,
		Currency:  b.Currency,
		CreatedAt: now,
	}
	if b.Deleted {
		account.DeletedAt = &now
	}
	return account
}

// CategoryBuilder provides a fluent interface for creating test categories.
type CategoryBuilder struct {
	ID      string
	UserID  string
	Name    string
	Type    string
	Deleted bool
}

// NewCategory creates a CategoryBuilder with sensible defaults (an expense category).
func NewCategory() *CategoryBuilder {
	return &CategoryBuilder{
		ID:     MakeID(),
		UserID: DefaultOwnerID,
		Name:   "Test Category",
		Type:   model.TransactionTypeExpense,
	}
}

// WithID sets a custom ID.
func (b *CategoryBuilder) WithID(id string) *CategoryBuilder {
	b.ID = id
	return b
}

// WithOwner sets a custom owner.
func (b *CategoryBuilder) WithOwner(userID string) *CategoryBuilder {
	b.UserID = userID
	return b
}

// WithName sets a custom name.
func (b *CategoryBuilder) WithName(name string) *CategoryBuilder {
	b.Name = name
	return b
}

// WithType sets the category type.
func (b *CategoryBuilder) WithType(categoryType string) *CategoryBuilder {
	b.Type = categoryType
	return b
}

// Income marks the category as an income category.
func (b *CategoryBuilder) Income() *CategoryBuilder {
	b.Type = model.TransactionTypeIncome
	return b
}

// SoftDeleted marks the category as soft-deleted.
func (b *CategoryBuilder) SoftDeleted() *CategoryBuilder {
	b.Deleted = true
	return b
}

// Build creates the category in the database and returns it.
func (b *CategoryBuilder) Build(t *testing.T, db *sql.DB) model.Category {
	t.Helper()

	now := time.Now().UTC()
	var deletedAt sql.NullString
	if b.Deleted {
		deletedAt = sql.NullString{String: formatTime(now), Valid: true}
	}

	query := `
		INSERT INTO category (id, user_id, name, type, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query, b.ID, b.UserID, b.Name, b.Type, formatTime(now), deletedAt)
	if err != nil {
		t.Fatalf("Failed to create test category: %v", err)
	}

	category := model.Category{
		ID:        b.ID,
		UserID:    b.UserID,
		Name:      b.Name,
		Type:      b.Type,
		CreatedAt: now,
	}
	if b.Deleted {
		category.DeletedAt = &now
	}
	return category
}

// RecurringRuleBuilder provides a fluent interface for creating test recurring
// rules directly in the database, bypassing the service layer. Defaults to a
// monthly normal expense rule due on the 1st.
//
// Example usage:
//
//	rule := testutil.NewRecurringRule(account.ID, category.ID).
//	    Monthly(15).
//	    WithNextRunAt(someTime).
//	    Build(t, db)
type RecurringRuleBuilder struct {
	ID            string
	UserID        string
	Kind          string
	AccountID     *string
	CategoryID    *string
	Type          *string
	FromAccountID *string
	ToAccountID   *string
	Amount        decimal.Decimal
	Description   string
	Cadence       string
	DayOfWeek     *int
	DayOfMonth    *int
	StartAt       time.Time
	EndAt         *time.Time
	NextRunAt     time.Time
	LastRunAt     *time.Time
	IsPaused      bool
	Deleted       bool
}

// NewRecurringRule creates a builder for a normal expense rule against the
// given account and category, monthly on the 1st, starting 2024-01-01.
func NewRecurringRule(accountID, categoryID string) *RecurringRuleBuilder {
	ruleType := model.TransactionTypeExpense
	dayOfMonth := 1
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &RecurringRuleBuilder{
		ID:          MakeID(),
		UserID:      DefaultOwnerID,
		Kind:        model.RuleKindNormal,
		AccountID:   &accountID,
		CategoryID:  &categoryID,
		Type:        &ruleType,
		Amount:      decimal.NewFromInt(100),
		Description: "Test rule",
		Cadence:     model.CadenceMonthly,
		DayOfMonth:  &dayOfMonth,
		StartAt:     start,
		NextRunAt:   start,
	}
}

// NewTransferRule creates a builder for a transfer rule between two accounts,
// monthly on the 1st, starting 2024-01-01.
func NewTransferRule(fromAccountID, toAccountID string) *RecurringRuleBuilder {
	dayOfMonth := 1
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &RecurringRuleBuilder{
		ID:            MakeID(),
		UserID:        DefaultOwnerID,
		Kind:          model.RuleKindTransfer,
		FromAccountID: &fromAccountID,
		ToAccountID:   &toAccountID,
		Amount:        decimal.NewFromInt(100),
		Description:   "Test transfer rule",
		Cadence:       model.CadenceMonthly,
		DayOfMonth:    &dayOfMonth,
		StartAt:       start,
		NextRunAt:     start,
	}
}

// WithOwner sets a custom owner.
func (b *RecurringRuleBuilder) WithOwner(userID string) *RecurringRuleBuilder {
	b.UserID = userID
	return b
}

// WithAmount sets the amount.
func (b *RecurringRuleBuilder) WithAmount(amount decimal.Decimal) *RecurringRuleBuilder {
	b.Amount = amount
	return b
}

// WithType sets the transaction type of a normal rule.
func (b *RecurringRuleBuilder) WithType(ruleType string) *RecurringRuleBuilder {
	b.Type = &ruleType
	return b
}

// Weekly switches the rule to weekly cadence on the given day (0=Sunday).
func (b *RecurringRuleBuilder) Weekly(dayOfWeek int) *RecurringRuleBuilder {
	b.Cadence = model.CadenceWeekly
	b.DayOfWeek = &dayOfWeek
	b.DayOfMonth = nil
	return b
}

// Monthly switches the rule to monthly cadence on the given day (1-28).
func (b *RecurringRuleBuilder) Monthly(dayOfMonth int) *RecurringRuleBuilder {
	b.Cadence = model.CadenceMonthly
	b.DayOfMonth = &dayOfMonth
	b.DayOfWeek = nil
	return b
}

// WithStartAt sets the schedule start and aligns the cursor with it.
func (b *RecurringRuleBuilder) WithStartAt(startAt time.Time) *RecurringRuleBuilder {
	b.StartAt = startAt
	b.NextRunAt = startAt
	return b
}

// WithEndAt sets the exclusive end bound.
func (b *RecurringRuleBuilder) WithEndAt(endAt time.Time) *RecurringRuleBuilder {
	b.EndAt = &endAt
	return b
}

// WithNextRunAt sets the scheduling cursor.
func (b *RecurringRuleBuilder) WithNextRunAt(nextRunAt time.Time) *RecurringRuleBuilder {
	b.NextRunAt = nextRunAt
	return b
}

// Paused marks the rule as paused.
func (b *RecurringRuleBuilder) Paused() *RecurringRuleBuilder {
	b.IsPaused = true
	return b
}

// SoftDeleted marks the rule as soft-deleted.
func (b *RecurringRuleBuilder) SoftDeleted() *RecurringRuleBuilder {
	b.Deleted = true
	return b
}

// Build creates the rule in the database and returns it.
func (b *RecurringRuleBuilder) Build(t *testing.T, db *sql.DB) model.RecurringRule {
	t.Helper()

	now := time.Now().UTC()

	var endAt, lastRunAt, deletedAt sql.NullString
	if b.EndAt != nil {
		endAt = sql.NullString{String: formatTime(*b.EndAt), Valid: true}
	}
	if b.LastRunAt != nil {
		lastRunAt = sql.NullString{String: formatTime(*b.LastRunAt), Valid: true}
	}
	if b.Deleted {
		deletedAt = sql.NullString{String: formatTime(now), Valid: true}
	}

	query := `
		INSERT INTO recurring_rule (
			id, user_id, kind,
			account_id, category_id, type,
			from_account_id, to_account_id,
			amount, description,
			cadence, day_of_week, day_of_month,
			start_at, end_at, next_run_at, last_run_at, is_paused,
			created_at, updated_at, deleted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.Exec(query,
		b.ID, b.UserID, b.Kind,
		b.AccountID, b.CategoryID, b.Type,
		b.FromAccountID, b.ToAccountID,
		b.Amount.String(), b.Description,
		b.Cadence, b.DayOfWeek, b.DayOfMonth,
		formatTime(b.StartAt), endAt, formatTime(b.NextRunAt), lastRunAt, b.IsPaused,
		formatTime(now), formatTime(now), deletedAt,
	)
	if err != nil {
		t.Fatalf("Failed to create test recurring rule: %v", err)
	}

	rule := model.RecurringRule{
		ID:            b.ID,
		UserID:        b.UserID,
		Kind:          b.Kind,
		AccountID:     b.AccountID,
		CategoryID:    b.CategoryID,
		Type:          b.Type,
		FromAccountID: b.FromAccountID,
		ToAccountID:   b.ToAccountID,
		Amount:        b.Amount,
		Description:   b.Description,
		Cadence:       b.Cadence,
		DayOfWeek:     b.DayOfWeek,
		DayOfMonth:    b.DayOfMonth,
		StartAt:       b.StartAt,
		EndAt:         b.EndAt,
		NextRunAt:     b.NextRunAt,
		LastRunAt:     b.LastRunAt,
		IsPaused:      b.IsPaused,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if b.Deleted {
		rule.DeletedAt = &now
	}
	return rule
}
