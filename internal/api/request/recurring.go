package request

import "github.com/shopspring/decimal"

// CreateRecurringRuleRequest is the payload for declaring a recurring rule.
// Exactly the fields matching Kind must be set: accountId/categoryId/type for
// a normal rule, fromAccountId/toAccountId for a transfer rule. DayOfWeek is
// required for weekly cadence, DayOfMonth (1-28) for monthly.
type CreateRecurringRuleRequest struct {
	Kind string `json:"kind"`

	AccountID  *string `json:"accountId,omitempty"`
	CategoryID *string `json:"categoryId,omitempty"`
	Type       *string `json:"type,omitempty"`

	FromAccountID *string `json:"fromAccountId,omitempty"`
	ToAccountID   *string `json:"toAccountId,omitempty"`

	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`

	Cadence    string `json:"cadence"`
	DayOfWeek  *int   `json:"dayOfWeek,omitempty"`
	DayOfMonth *int   `json:"dayOfMonth,omitempty"`

	StartAt string  `json:"startAt"`
	EndAt   *string `json:"endAt,omitempty"`
}

// UpdateRecurringRuleRequest is the payload for patching a rule. All fields
// are optional. Changing cadence or day fields, or un-pausing a rule whose
// cursor is stale, reschedules the rule from the present.
type UpdateRecurringRuleRequest struct {
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Description *string          `json:"description,omitempty"`

	Cadence    *string `json:"cadence,omitempty"`
	DayOfWeek  *int    `json:"dayOfWeek,omitempty"`
	DayOfMonth *int    `json:"dayOfMonth,omitempty"`

	// EndAt accepts a timestamp, or an empty string to clear the end bound.
	EndAt    *string `json:"endAt,omitempty"`
	IsPaused *bool   `json:"isPaused,omitempty"`
}
