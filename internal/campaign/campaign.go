package campaign

import (
	"context"
	"errors"
	"fmt"

	"github.com/aimerfeng/PromoLink/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Service errors
var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrInvalidBudget    = errors.New("campaign budget must be positive")
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so ledger operations
// can run standalone or inside a caller-owned transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Service handles campaign operations and the campaign budget ledger
type Service struct {
	db *pgxpool.Pool
}

// NewService creates a new campaign service
func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// CreateRequest represents a campaign creation request
type CreateRequest struct {
	Title        string          `json:"title" binding:"required,max=200"`
	Description  string          `json:"description" binding:"required"`
	Requirements string          `json:"requirements" binding:"required"`
	Budget       decimal.Decimal `json:"budget" binding:"required"`
	IsPublic     *bool           `json:"is_public"`
}

// Create creates a new campaign for an advertiser. Campaigns start in draft.
func (s *Service) Create(ctx context.Context, advertiserID uuid.UUID, req *CreateRequest) (*models.Campaign, error) {
	if req.Budget.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidBudget
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	campaignID := uuid.New()
	_, err := s.db.Exec(ctx, `
		INSERT INTO campaigns (id, advertiser_id, title, description, requirements, budget, status, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, campaignID, advertiserID, req.Title, req.Description, req.Requirements, req.Budget, models.CampaignStatusDraft, isPublic)
	if err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}

	return s.GetByID(ctx, campaignID)
}

// UpdateStatus moves a campaign owned by the advertiser to a new status
func (s *Service) UpdateStatus(ctx context.Context, advertiserID, campaignID uuid.UUID, status models.CampaignStatus) error {
	result, err := s.db.Exec(ctx, `
		UPDATE campaigns SET status = $1, updated_at = NOW()
		WHERE id = $2 AND advertiser_id = $3
	`, status, campaignID, advertiserID)
	if err != nil {
		return fmt.Errorf("failed to update campaign status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrCampaignNotFound
	}
	return nil
}

// GetByID retrieves a campaign by ID
func (s *Service) GetByID(ctx context.Context, campaignID uuid.UUID) (*models.Campaign, error) {
	return scanCampaign(s.db.QueryRow(ctx, `
		SELECT id, advertiser_id, title, description, requirements, budget, status, is_public, created_at, updated_at
		FROM campaigns WHERE id = $1
	`, campaignID))
}

// GetPublic retrieves a public campaign by ID
func (s *Service) GetPublic(ctx context.Context, campaignID uuid.UUID) (*models.Campaign, error) {
	return scanCampaign(s.db.QueryRow(ctx, `
		SELECT id, advertiser_id, title, description, requirements, budget, status, is_public, created_at, updated_at
		FROM campaigns WHERE id = $1 AND is_public = TRUE
	`, campaignID))
}

// ListPublic retrieves all public, active campaigns, newest first
func (s *Service) ListPublic(ctx context.Context) ([]models.Campaign, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, advertiser_id, title, description, requirements, budget, status, is_public, created_at, updated_at
		FROM campaigns
		WHERE is_public = TRUE AND status = $1
		ORDER BY created_at DESC
	`, models.CampaignStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query campaigns: %w", err)
	}
	defer rows.Close()

	return collectCampaigns(rows)
}

// ListByAdvertiser retrieves all campaigns owned by an advertiser, newest first
func (s *Service) ListByAdvertiser(ctx context.Context, advertiserID uuid.UUID) ([]models.Campaign, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, advertiser_id, title, description, requirements, budget, status, is_public, created_at, updated_at
		FROM campaigns
		WHERE advertiser_id = $1
		ORDER BY created_at DESC
	`, advertiserID)
	if err != nil {
		return nil, fmt.Errorf("failed to query campaigns: %w", err)
	}
	defer rows.Close()

	return collectCampaigns(rows)
}

// CountApplications returns the number of applications against a campaign
func (s *Service) CountApplications(ctx context.Context, campaignID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM applications WHERE campaign_id = $1
	`, campaignID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}
	return count, nil
}

// ============================================
// Budget Ledger
// ============================================

// CanPayIncrease reports whether a budget with the given remaining balance can
// absorb an earnings change from old to new. Decreases and no-ops are always
// allowed; increases are allowed only if the remaining balance covers the delta.
func CanPayIncrease(remaining, oldEarnings, newEarnings decimal.Decimal) bool {
	if newEarnings.LessThanOrEqual(oldEarnings) {
		return true
	}
	return remaining.GreaterThanOrEqual(newEarnings.Sub(oldEarnings))
}

// RemainingBudget computes the campaign's remaining budget as
// budget - sum(earnings of approved applications). The value is derived fresh
// on every call and is only meaningful while all budget mutations flow through
// DebitIncrease, since budget itself is a running remaining balance.
func (s *Service) RemainingBudget(ctx context.Context, q DBTX, campaignID uuid.UUID) (decimal.Decimal, error) {
	var remaining decimal.Decimal
	err := q.QueryRow(ctx, `
		SELECT c.budget - COALESCE(SUM(a.earnings), 0)
		FROM campaigns c
		LEFT JOIN applications a ON a.campaign_id = c.id AND a.status = $2
		WHERE c.id = $1
		GROUP BY c.budget
	`, campaignID, models.ApplicationStatusApproved).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, ErrCampaignNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to compute remaining budget: %w", err)
	}
	return remaining, nil
}

// CanPay checks whether the campaign can absorb an earnings change from old to
// new against its current remaining budget.
func (s *Service) CanPay(ctx context.Context, q DBTX, campaignID uuid.UUID, oldEarnings, newEarnings decimal.Decimal) (bool, error) {
	if newEarnings.LessThanOrEqual(oldEarnings) {
		return true, nil
	}
	remaining, err := s.RemainingBudget(ctx, q, campaignID)
	if err != nil {
		return false, err
	}
	return CanPayIncrease(remaining, oldEarnings, newEarnings), nil
}

// DebitIncrease subtracts the earnings increase from the campaign budget.
// This is the only operation that decreases budget. It is a no-op returning
// false when earnings did not increase or the remaining budget cannot cover
// the delta; earnings decreases never credit the budget back.
//
// Callers revising an application's earnings must debit before persisting the
// new earnings value, so the remaining-budget check still sees the old sum.
func (s *Service) DebitIncrease(ctx context.Context, q DBTX, campaignID uuid.UUID, oldEarnings, newEarnings decimal.Decimal) (bool, error) {
	if newEarnings.LessThanOrEqual(oldEarnings) {
		return false, nil
	}
	increase := newEarnings.Sub(oldEarnings)

	remaining, err := s.RemainingBudget(ctx, q, campaignID)
	if err != nil {
		return false, err
	}
	if !CanPayIncrease(remaining, oldEarnings, newEarnings) {
		return false, nil
	}

	_, err = q.Exec(ctx, `
		UPDATE campaigns SET budget = budget - $1, updated_at = NOW()
		WHERE id = $2
	`, increase, campaignID)
	if err != nil {
		return false, fmt.Errorf("failed to debit campaign budget: %w", err)
	}
	return true, nil
}

func scanCampaign(row pgx.Row) (*models.Campaign, error) {
	var c models.Campaign
	err := row.Scan(
		&c.ID, &c.AdvertiserID, &c.Title, &c.Description, &c.Requirements,
		&c.Budget, &c.Status, &c.IsPublic, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return &c, nil
}

func collectCampaigns(rows pgx.Rows) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	for rows.Next() {
		var c models.Campaign
		err := rows.Scan(
			&c.ID, &c.AdvertiserID, &c.Title, &c.Description, &c.Requirements,
			&c.Budget, &c.Status, &c.IsPublic, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating campaigns: %w", err)
	}
	return campaigns, nil
}
