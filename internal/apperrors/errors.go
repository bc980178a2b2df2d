package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrAccountNotFound indicates that an account with the given ID does not
	// exist for the owner, or has been soft-deleted.
	ErrAccountNotFound = errors.New("account not found")

	// ErrCategoryNotFound indicates that a category with the given ID does not
	// exist for the owner, or has been soft-deleted.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrTransactionNotFound indicates that a ledger transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrRuleNotFound indicates that a recurring rule with the given ID does not exist.
	ErrRuleNotFound = errors.New("recurring rule not found")

	// ErrRunLogEntryNotFound indicates that a run log entry with the given ID does not exist.
	ErrRunLogEntryNotFound = errors.New("run log entry not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInvalidCategoryType indicates that a transaction's type does not match
	// the type of the category it is booked against.
	ErrInvalidCategoryType = errors.New("transaction type does not match category type")

	// ErrCurrencyMismatch indicates that a requested currency does not match the
	// account's currency, or that the two sides of a transfer use different currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")

	// ErrTransferAccountConflict indicates that a transfer references the same
	// account on both sides.
	ErrTransferAccountConflict = errors.New("transfer source and destination accounts must differ")

	// ErrInvalidRuleConfiguration indicates that a recurring rule is missing the
	// fields its kind requires (account/category/type for normal, from/to for transfer).
	ErrInvalidRuleConfiguration = errors.New("invalid recurring rule configuration")

	// ErrNonPositiveAmount indicates that an amount is zero or negative.
	ErrNonPositiveAmount = errors.New("amount must be positive")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")
)

// Concurrency signals. These are expected coordination outcomes, not faults.
var (
	// ErrOccurrenceAlreadyLogged indicates that a run log entry for the same
	// (rule, scheduledAt) pair already exists: another invocation claimed this
	// occurrence first. The due-rule processor handles this locally and never
	// surfaces it to callers.
	ErrOccurrenceAlreadyLogged = errors.New("occurrence already logged")
)

// Authorization errors.
var (
	// ErrForbidden indicates that the caller did not present a valid shared
	// secret for an internal endpoint.
	ErrForbidden = errors.New("forbidden")

	// ErrMissingOwner indicates that no owner identity was established for the request.
	ErrMissingOwner = errors.New("owner identity missing")
)

// Operation failure errors represent system-level failures when retrieving or
// processing data. These indicate that an operation failed, but not due to
// missing entities or validation issues.
var (
	ErrFailedToRetrieveAccounts     = errors.New("failed to retrieve accounts")
	ErrFailedToRetrieveCategories   = errors.New("failed to retrieve categories")
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrieveRules        = errors.New("failed to retrieve recurring rules")
	ErrFailedToProcessDueRules      = errors.New("failed to process due recurring rules")
)
