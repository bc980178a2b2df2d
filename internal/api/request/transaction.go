package request

import "github.com/shopspring/decimal"

// CreateTransactionRequest is the payload for booking a single normal posting.
// Currency is optional; when empty the account's currency is used.
type CreateTransactionRequest struct {
	AccountID   string          `json:"accountId"`
	CategoryID  string          `json:"categoryId"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency,omitempty"`
	Description string          `json:"description,omitempty"`
	OccurredAt  string          `json:"occurredAt"`
}

// CreateTransferRequest is the payload for booking a transfer between two
// accounts. Both accounts must share a currency.
type CreateTransferRequest struct {
	FromAccountID string          `json:"fromAccountId"`
	ToAccountID   string          `json:"toAccountId"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
	OccurredAt    string          `json:"occurredAt"`
}
