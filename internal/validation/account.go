package validation

import (
	"strings"

	"github.com/pocketledger/Pocket-Ledger-Backend/internal/api/request"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/model"
)

// ValidCurrency contains the supported account currencies.
var ValidCurrency = map[string]bool{
	"EUR": true, "USD": true, "GBP": true, "CHF": true, "JPY": true,
}

// ValidTransactionType contains the allowed transaction type values.
var ValidTransactionType = map[string]bool{
	model.TransactionTypeIncome:  true,
	model.TransactionTypeExpense: true,
}

// ValidateCreateAccount validates an account creation request.
func ValidateCreateAccount(req request.CreateAccountRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	}

	if strings.TrimSpace(req.Currency) == "" {
		errors["currency"] = "currency is required"
	} else if !ValidCurrency[req.Currency] {
		errors["currency"] = "unsupported currency: " + req.Currency
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateCreateCategory validates a category creation request.
func ValidateCreateCategory(req request.CreateCategoryRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	}

	if strings.TrimSpace(req.Type) == "" {
		errors["type"] = "type is required"
	} else if !ValidTransactionType[req.Type] {
		errors["type"] = "invalid type: " + req.Type
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
