package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ApplicationStatus represents the status of an application
type ApplicationStatus string

const (
	ApplicationStatusPending   ApplicationStatus = "pending"
	ApplicationStatusApproved  ApplicationStatus = "approved"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
	ApplicationStatusCompleted ApplicationStatus = "completed"
)

// Application represents a creator's proposal against a campaign.
// Views and Earnings are live values, mutable only while the application is
// approved; Earnings always equals the fixed-rate payout for Views.
// EstimatedEarnings is re-derived from EstimatedViews on every persist until
// the application leaves the pending state.
type Application struct {
	ID                uuid.UUID         `json:"id" db:"id"`
	CampaignID        uuid.UUID         `json:"campaign_id" db:"campaign_id"`
	CreatorID         uuid.UUID         `json:"creator_id" db:"creator_id"`
	Proposal          string            `json:"proposal" db:"proposal"`
	EstimatedViews    int64             `json:"estimated_views" db:"estimated_views"`
	EstimatedEarnings decimal.Decimal   `json:"estimated_earnings" db:"estimated_earnings"`
	Views             int64             `json:"views" db:"views"`
	Earnings          decimal.Decimal   `json:"earnings" db:"earnings"`
	Status            ApplicationStatus `json:"status" db:"status"`
	AppliedAt         time.Time         `json:"applied_at" db:"applied_at"`
	UpdatedAt         time.Time         `json:"updated_at" db:"updated_at"`
}
