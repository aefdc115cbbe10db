package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountTransaction represents a single monetary movement attributed to one account
type AccountTransaction struct {
	ID          int64           `json:"id" db:"id"`
	AccountID   int64           `json:"account_id" db:"account_id"`
	Type        string          `json:"type" db:"type"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Description string          `json:"description,omitempty" db:"description"`
	OccurredAt  *time.Time      `json:"occurred_at" db:"occurred_at"`
	Category    string          `json:"category,omitempty" db:"category"`
}

// TransactionPayload is the request body for creating or replacing a transaction.
// Update uses the same shape as Create: every field is replaced wholesale.
type TransactionPayload struct {
	AccountID   int64           `json:"account_id" validate:"required,gt=0"`
	Type        string          `json:"type" validate:"required,max=20"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Description string          `json:"description" validate:"omitempty,max=255"`
	OccurredAt  *time.Time      `json:"occurred_at"`
	Category    string          `json:"category" validate:"omitempty,max=50"`
}
