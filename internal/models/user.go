package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserType represents the type of user
type UserType string

const (
	UserTypeAdvertiser UserType = "advertiser"
	UserTypeCreator    UserType = "creator"
	UserTypeGuest      UserType = "guest"
)

// UserProfile represents a platform user and their cached aggregate totals.
// TotalViews and TotalEarnings are derived sums over the profile's contents
// and approved applications; they are recomputed after every views mutation
// and never written independently.
type UserProfile struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Email         *string         `json:"email,omitempty" db:"email"`
	PasswordHash  *string         `json:"-" db:"password_hash"`
	UserType      UserType        `json:"user_type" db:"user_type"`
	Bio           *string         `json:"bio,omitempty" db:"bio"`
	TiktokHandle  *string         `json:"tiktok_handle,omitempty" db:"tiktok_handle"`
	TotalViews    int64           `json:"total_views" db:"total_views"`
	TotalEarnings decimal.Decimal `json:"total_earnings" db:"total_earnings"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}
