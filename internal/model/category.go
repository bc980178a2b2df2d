package model

import "time"

// Category represents a user-defined transaction category.
// A category is either an income or an expense category; transactions booked
// against it must carry the matching type.
type Category struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Name      string     `json:"name"`
	Type      string     `json:"type"` // income or expense
	CreatedAt time.Time  `json:"createdAt,omitempty"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// IsActive reports whether the category has not been soft-deleted.
func (c Category) IsActive() bool {
	return c.DeletedAt == nil
}
