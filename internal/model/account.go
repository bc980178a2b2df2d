package model

import "time"

// Account represents a user's money account (checking, savings, cash, ...).
// Every ledger transaction and recurring rule is booked against one or more accounts.
type Account struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Name      string     `json:"name"`
	Currency  string     `json:"currency"`
	CreatedAt time.Time  `json:"createdAt,omitempty"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// IsActive reports whether the account has not been soft-deleted.
func (a Account) IsActive() bool {
	return a.DeletedAt == nil
}
