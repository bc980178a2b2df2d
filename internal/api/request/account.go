package request

// CreateAccountRequest is the payload for creating a money account.
type CreateAccountRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

// CreateCategoryRequest is the payload for creating a transaction category.
type CreateCategoryRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}
