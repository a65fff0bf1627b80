package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Plan represents a purchasable subscription plan shown on the explore page.
type Plan struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Duration    string          `json:"duration" db:"duration"`
	Features    string          `json:"features" db:"features"`
}
