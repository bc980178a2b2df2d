package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction type values.
const (
	TransactionTypeIncome  = "income"
	TransactionTypeExpense = "expense"
)

// Transaction kind values.
const (
	TransactionKindNormal   = "normal"
	TransactionKindTransfer = "transfer"
)

// Transfer direction values.
const (
	TransferDirectionIn  = "in"
	TransferDirectionOut = "out"
)

// Transaction represents a single ledger posting. A normal transaction books an
// amount against one account and category. A transfer is stored as two linked
// transactions sharing a TransferGroupID, with opposite directions and mutual
// RelatedAccountID cross-references.
//
// Transactions are immutable once created, except for soft-deletion.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	AccountID   string          `json:"accountId"`
	CategoryID  *string         `json:"categoryId,omitempty"`
	Type        string          `json:"type"` // income or expense
	Kind        string          `json:"kind"` // normal or transfer
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description,omitempty"`
	OccurredAt  time.Time       `json:"occurredAt"`

	// Transfer linkage. Populated only when Kind == TransactionKindTransfer.
	TransferGroupID   *string `json:"transferGroupId,omitempty"`
	TransferDirection *string `json:"transferDirection,omitempty"` // in or out
	RelatedAccountID  *string `json:"relatedAccountId,omitempty"`

	CreatedAt time.Time  `json:"createdAt,omitempty"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}
