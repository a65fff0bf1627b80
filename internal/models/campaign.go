package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CampaignStatus represents the status of a campaign
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusCompleted CampaignStatus = "completed"
)

// Campaign represents an advertiser-funded promotional campaign.
// Budget is a running remaining balance: it is decremented each time an
// approved application's earnings increase, and never restored on decrease.
type Campaign struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	AdvertiserID uuid.UUID       `json:"advertiser_id" db:"advertiser_id"`
	Title        string          `json:"title" db:"title"`
	Description  string          `json:"description" db:"description"`
	Requirements string          `json:"requirements" db:"requirements"`
	Budget       decimal.Decimal `json:"budget" db:"budget"`
	Status       CampaignStatus  `json:"status" db:"status"`
	IsPublic     bool            `json:"is_public" db:"is_public"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}
