package validation

import (
	"fmt"
	"strings"

	"github.com/pocketledger/Pocket-Ledger-Backend/internal/api/request"
)

// ValidateCreateTransaction validates a normal posting creation request.
//
// Required fields:
//   - accountId: must be a valid UUID
//   - categoryId: must be a valid UUID
//   - type: income or expense
//   - amount: strictly positive
//   - occurredAt: RFC3339 or YYYY-MM-DD
func ValidateCreateTransaction(req request.CreateTransactionRequest) error {
	errors := make(map[string]string)

	if err := ValidateUUID(req.AccountID); err != nil {
		errors["accountId"] = err.Error()
	}
	if err := ValidateUUID(req.CategoryID); err != nil {
		errors["categoryId"] = err.Error()
	}

	if strings.TrimSpace(req.Type) == "" {
		errors["type"] = "type is required"
	} else if !ValidTransactionType[req.Type] {
		errors["type"] = fmt.Sprintf("invalid type: %s", req.Type)
	}

	if !req.Amount.IsPositive() {
		errors["amount"] = "amount must be positive"
	}

	if strings.TrimSpace(req.OccurredAt) == "" {
		errors["occurredAt"] = "occurredAt is required"
	} else if _, err := ParseTime(req.OccurredAt); err != nil {
		errors["occurredAt"] = err.Error()
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateCreateTransfer validates a transfer creation request. The two
// accounts must be distinct valid UUIDs; the currency match is checked
// against the stored accounts by the ledger service.
func ValidateCreateTransfer(req request.CreateTransferRequest) error {
	errors := make(map[string]string)

	if err := ValidateUUID(req.FromAccountID); err != nil {
		errors["fromAccountId"] = err.Error()
	}
	if err := ValidateUUID(req.ToAccountID); err != nil {
		errors["toAccountId"] = err.Error()
	}

	if !req.Amount.IsPositive() {
		errors["amount"] = "amount must be positive"
	}

	if strings.TrimSpace(req.OccurredAt) == "" {
		errors["occurredAt"] = "occurredAt is required"
	} else if _, err := ParseTime(req.OccurredAt); err != nil {
		errors["occurredAt"] = err.Error()
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
