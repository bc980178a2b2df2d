package validation

import (
	"fmt"
	"strings"

	"github.com/pocketledger/Pocket-Ledger-Backend/internal/api/request"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/model"
)

// ValidCadence contains the allowed cadence values.
var ValidCadence = map[string]bool{
	model.CadenceWeekly:  true,
	model.CadenceMonthly: true,
}

// ValidRuleKind contains the allowed rule kind values.
var ValidRuleKind = map[string]bool{
	model.RuleKindNormal:   true,
	model.RuleKindTransfer: true,
}

// ValidateCreateRecurringRule validates a recurring rule creation request.
//
// Kind-dependent fields: a normal rule requires accountId, categoryId and
// type, and must not carry transfer fields; a transfer rule requires
// fromAccountId and toAccountId, and must not carry normal fields.
//
// Cadence-dependent fields: weekly requires dayOfWeek 0-6; monthly requires
// dayOfMonth 1-28. Days 29-31 are rejected to avoid month-length ambiguity.
//
//nolint:gocyclo // one branch per field rule
func ValidateCreateRecurringRule(req request.CreateRecurringRuleRequest) error {
	errors := make(map[string]string)

	switch {
	case strings.TrimSpace(req.Kind) == "":
		errors["kind"] = "kind is required"
	case !ValidRuleKind[req.Kind]:
		errors["kind"] = fmt.Sprintf("invalid kind: %s", req.Kind)
	case req.Kind == model.RuleKindNormal:
		if req.AccountID == nil {
			errors["accountId"] = "accountId is required for a normal rule"
		} else if err := ValidateUUID(*req.AccountID); err != nil {
			errors["accountId"] = err.Error()
		}
		if req.CategoryID == nil {
			errors["categoryId"] = "categoryId is required for a normal rule"
		} else if err := ValidateUUID(*req.CategoryID); err != nil {
			errors["categoryId"] = err.Error()
		}
		if req.Type == nil {
			errors["type"] = "type is required for a normal rule"
		} else if !ValidTransactionType[*req.Type] {
			errors["type"] = fmt.Sprintf("invalid type: %s", *req.Type)
		}
		if req.FromAccountID != nil || req.ToAccountID != nil {
			errors["kind"] = "a normal rule must not carry transfer accounts"
		}
	case req.Kind == model.RuleKindTransfer:
		if req.FromAccountID == nil {
			errors["fromAccountId"] = "fromAccountId is required for a transfer rule"
		} else if err := ValidateUUID(*req.FromAccountID); err != nil {
			errors["fromAccountId"] = err.Error()
		}
		if req.ToAccountID == nil {
			errors["toAccountId"] = "toAccountId is required for a transfer rule"
		} else if err := ValidateUUID(*req.ToAccountID); err != nil {
			errors["toAccountId"] = err.Error()
		}
		if req.AccountID != nil || req.CategoryID != nil || req.Type != nil {
			errors["kind"] = "a transfer rule must not carry account, category or type"
		}
	}

	if !req.Amount.IsPositive() {
		errors["amount"] = "amount must be positive"
	}

	validateScheduleFields(errors, req.Cadence, req.DayOfWeek, req.DayOfMonth)

	var startAt, endAt string
	if strings.TrimSpace(req.StartAt) == "" {
		errors["startAt"] = "startAt is required"
	} else if _, err := ParseTime(req.StartAt); err != nil {
		errors["startAt"] = err.Error()
	} else {
		startAt = req.StartAt
	}

	if req.EndAt != nil {
		if _, err := ParseTime(*req.EndAt); err != nil {
			errors["endAt"] = err.Error()
		} else {
			endAt = *req.EndAt
		}
	}

	if startAt != "" && endAt != "" {
		start, _ := ParseTime(startAt)
		end, _ := ParseTime(endAt)
		if !end.After(start) {
			errors["endAt"] = "endAt must be after startAt"
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateUpdateRecurringRule validates a rule patch request. All fields are
// optional; provided schedule fields must form a coherent cadence, which the
// service checks against the merged rule state.
func ValidateUpdateRecurringRule(req request.UpdateRecurringRuleRequest) error {
	errors := make(map[string]string)

	if req.Amount != nil && !req.Amount.IsPositive() {
		errors["amount"] = "amount must be positive"
	}

	if req.Cadence != nil && !ValidCadence[*req.Cadence] {
		errors["cadence"] = fmt.Sprintf("invalid cadence: %s", *req.Cadence)
	}

	if req.DayOfWeek != nil && (*req.DayOfWeek < 0 || *req.DayOfWeek > 6) {
		errors["dayOfWeek"] = "dayOfWeek must be between 0 and 6"
	}

	if req.DayOfMonth != nil && (*req.DayOfMonth < 1 || *req.DayOfMonth > 28) {
		errors["dayOfMonth"] = "dayOfMonth must be between 1 and 28"
	}

	if req.EndAt != nil && *req.EndAt != "" {
		if _, err := ParseTime(*req.EndAt); err != nil {
			errors["endAt"] = err.Error()
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// validateScheduleFields checks that exactly the day field matching the
// cadence is present and in range.
func validateScheduleFields(errors map[string]string, cadence string, dayOfWeek, dayOfMonth *int) {
	switch {
	case strings.TrimSpace(cadence) == "":
		errors["cadence"] = "cadence is required"
	case !ValidCadence[cadence]:
		errors["cadence"] = fmt.Sprintf("invalid cadence: %s", cadence)
	case cadence == model.CadenceWeekly:
		if dayOfWeek == nil {
			errors["dayOfWeek"] = "dayOfWeek is required for weekly cadence"
		} else if *dayOfWeek < 0 || *dayOfWeek > 6 {
			errors["dayOfWeek"] = "dayOfWeek must be between 0 and 6"
		}
		if dayOfMonth != nil {
			errors["dayOfMonth"] = "dayOfMonth is not allowed for weekly cadence"
		}
	case cadence == model.CadenceMonthly:
		if dayOfMonth == nil {
			errors["dayOfMonth"] = "dayOfMonth is required for monthly cadence"
		} else if *dayOfMonth < 1 || *dayOfMonth > 28 {
			errors["dayOfMonth"] = "dayOfMonth must be between 1 and 28"
		}
		if dayOfWeek != nil {
			errors["dayOfWeek"] = "dayOfWeek is not allowed for monthly cadence"
		}
	}
}
