package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Content represents a creator-owned view-earning record. The optional
// campaign tag is informational only; content earnings are not gated by any
// campaign budget.
type Content struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	CreatorID   uuid.UUID       `json:"creator_id" db:"creator_id"`
	CampaignID  *uuid.UUID      `json:"campaign_id,omitempty" db:"campaign_id"`
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	Views       int64           `json:"views" db:"views"`
	Earnings    decimal.Decimal `json:"earnings" db:"earnings"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}
