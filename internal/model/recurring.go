package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recurring rule kind values.
const (
	RuleKindNormal   = "normal"
	RuleKindTransfer = "transfer"
)

// Cadence values.
const (
	CadenceWeekly  = "weekly"
	CadenceMonthly = "monthly"
)

// RecurringRule is a user-declared recurring obligation: "charge Rent monthly
// on the 3rd". The due-rule processor turns it into ledger transactions over
// time, one per occurrence.
//
// Exactly the fields matching Kind are populated: AccountID/CategoryID/Type
// for a normal rule, FromAccountID/ToAccountID for a transfer rule.
//
// NextRunAt is the scheduling cursor: the next unposted occurrence, always on
// or after StartAt. LastRunAt is the most recently posted occurrence. The run
// log, not the cursor, is the source of truth for which occurrences have been
// posted; the cursor is a resumption hint.
type RecurringRule struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Kind   string `json:"kind"` // normal or transfer

	// Normal rule fields.
	AccountID  *string `json:"accountId,omitempty"`
	CategoryID *string `json:"categoryId,omitempty"`
	Type       *string `json:"type,omitempty"` // income or expense

	// Transfer rule fields.
	FromAccountID *string `json:"fromAccountId,omitempty"`
	ToAccountID   *string `json:"toAccountId,omitempty"`

	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`

	Cadence    string `json:"cadence"`              // weekly or monthly
	DayOfWeek  *int   `json:"dayOfWeek,omitempty"`  // 0-6, required iff weekly
	DayOfMonth *int   `json:"dayOfMonth,omitempty"` // 1-28, required iff monthly

	StartAt time.Time  `json:"startAt"`
	EndAt   *time.Time `json:"endAt,omitempty"` // exclusive upper bound

	NextRunAt time.Time  `json:"nextRunAt"`
	LastRunAt *time.Time `json:"lastRunAt,omitempty"`
	IsPaused  bool       `json:"isPaused"`

	CreatedAt time.Time  `json:"createdAt,omitempty"`
	UpdatedAt time.Time  `json:"updatedAt,omitempty"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// RunLogEntry is the append-only idempotency record for one logical occurrence
// of a recurring rule. The (RuleID, ScheduledAt) pair is unique: inserting an
// entry claims the occurrence, and a uniqueness conflict means another
// invocation already owns it.
//
// ScheduledAt is the logical occurrence time, not the wall-clock time the
// processor happened to run.
type RunLogEntry struct {
	ID          string    `json:"id"`
	RuleID      string    `json:"ruleId"`
	UserID      string    `json:"userId"`
	ScheduledAt time.Time `json:"scheduledAt"`

	// TransactionIDs holds the ledger transaction ids generated for this
	// occurrence, attached after successful posting. One id for a normal rule,
	// two for a transfer.
	TransactionIDs []string `json:"transactionIds,omitempty"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// ProcessDueResult aggregates one due-processing pass across all rules.
type ProcessDueResult struct {
	ProcessedRules        int `json:"processedRules"`
	ProcessedRuns         int `json:"processedRuns"`
	GeneratedTransactions int `json:"generatedTransactions"`
}
