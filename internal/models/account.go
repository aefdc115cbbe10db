package models

// Account represents a named ledger owned by one customer
type Account struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`
}

// AccountPayload is the request body for creating or replacing an account
type AccountPayload struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"omitempty,max=255"`
}
