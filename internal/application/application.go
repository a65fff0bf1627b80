package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/aimerfeng/PromoLink/internal/campaign"
	"github.com/aimerfeng/PromoLink/internal/models"
	"github.com/aimerfeng/PromoLink/internal/payout"
	"github.com/aimerfeng/PromoLink/internal/profile"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Service errors
var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrCampaignNotFound    = errors.New("campaign not found")
	ErrAlreadyApplied      = errors.New("already applied for this campaign")
	ErrNegativeViews       = errors.New("views must be non-negative")
	ErrNotApproved         = errors.New("can only update views for approved applications")
	ErrNotPending          = errors.New("application has already been decided")
	ErrBudgetExceeded      = errors.New("campaign budget insufficient to pay the earnings increase")
)

// Service handles application lifecycle and earnings updates
type Service struct {
	db        *pgxpool.Pool
	campaigns *campaign.Service
	profiles  *profile.Service
}

// NewService creates a new application service
func NewService(db *pgxpool.Pool, campaigns *campaign.Service, profiles *profile.Service) *Service {
	return &Service{
		db:        db,
		campaigns: campaigns,
		profiles:  profiles,
	}
}

// ApplyRequest represents an application submission
type ApplyRequest struct {
	Proposal       string `json:"proposal" binding:"required"`
	EstimatedViews int64  `json:"estimated_views" binding:"required,min=0"`
}

// Apply submits a creator's application against a public campaign. A creator
// may hold at most one application per campaign; the duplicate check lives
// here rather than in the schema. Estimated earnings are derived from the
// estimated views at the fixed rate.
func (s *Service) Apply(ctx context.Context, creatorID, campaignID uuid.UUID, req *ApplyRequest) (*models.Application, error) {
	if req.EstimatedViews < 0 {
		return nil, ErrNegativeViews
	}

	var isPublic bool
	err := s.db.QueryRow(ctx, `
		SELECT is_public FROM campaigns WHERE id = $1
	`, campaignID).Scan(&isPublic)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	if !isPublic {
		return nil, ErrCampaignNotFound
	}

	var exists bool
	err = s.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM applications WHERE creator_id = $1 AND campaign_id = $2)
	`, creatorID, campaignID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing application: %w", err)
	}
	if exists {
		return nil, ErrAlreadyApplied
	}

	applicationID := uuid.New()
	estimatedEarnings := payout.FromViews(req.EstimatedViews)
	_, err = s.db.Exec(ctx, `
		INSERT INTO applications (id, campaign_id, creator_id, proposal, estimated_views, estimated_earnings, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, applicationID, campaignID, creatorID, req.Proposal, req.EstimatedViews, estimatedEarnings, models.ApplicationStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	return s.GetByID(ctx, applicationID)
}

// UpdateProposal revises a pending application's proposal and estimate.
// Estimated earnings are re-derived on every persist until the application
// leaves the pending state.
func (s *Service) UpdateProposal(ctx context.Context, creatorID, applicationID uuid.UUID, proposal string, estimatedViews int64) (*models.Application, error) {
	if estimatedViews < 0 {
		return nil, ErrNegativeViews
	}

	result, err := s.db.Exec(ctx, `
		UPDATE applications
		SET proposal = $1, estimated_views = $2, estimated_earnings = $3, updated_at = NOW()
		WHERE id = $4 AND creator_id = $5 AND status = $6
	`, proposal, estimatedViews, payout.FromViews(estimatedViews), applicationID, creatorID, models.ApplicationStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to update application: %w", err)
	}
	if result.RowsAffected() == 0 {
		// Distinguish a missing application from one that has left pending
		var exists bool
		err := s.db.QueryRow(ctx, `
			SELECT EXISTS(SELECT 1 FROM applications WHERE id = $1 AND creator_id = $2)
		`, applicationID, creatorID).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("failed to check application: %w", err)
		}
		if exists {
			return nil, ErrNotPending
		}
		return nil, ErrApplicationNotFound
	}

	return s.GetByID(ctx, applicationID)
}

// GetByID retrieves an application by ID
func (s *Service) GetByID(ctx context.Context, applicationID uuid.UUID) (*models.Application, error) {
	var a models.Application
	err := s.db.QueryRow(ctx, `
		SELECT id, campaign_id, creator_id, proposal, estimated_views, estimated_earnings,
		       views, earnings, status, applied_at, updated_at
		FROM applications WHERE id = $1
	`, applicationID).Scan(
		&a.ID, &a.CampaignID, &a.CreatorID, &a.Proposal, &a.EstimatedViews, &a.EstimatedEarnings,
		&a.Views, &a.Earnings, &a.Status, &a.AppliedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return &a, nil
}

// ListByCreator retrieves all applications submitted by a creator, newest first
func (s *Service) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.Application, error) {
	return s.list(ctx, `
		SELECT id, campaign_id, creator_id, proposal, estimated_views, estimated_earnings,
		       views, earnings, status, applied_at, updated_at
		FROM applications WHERE creator_id = $1
		ORDER BY applied_at DESC
	`, creatorID)
}

// ListByAdvertiser retrieves all applications against an advertiser's campaigns
func (s *Service) ListByAdvertiser(ctx context.Context, advertiserID uuid.UUID) ([]models.Application, error) {
	return s.list(ctx, `
		SELECT a.id, a.campaign_id, a.creator_id, a.proposal, a.estimated_views, a.estimated_earnings,
		       a.views, a.earnings, a.status, a.applied_at, a.updated_at
		FROM applications a
		JOIN campaigns c ON c.id = a.campaign_id
		WHERE c.advertiser_id = $1
		ORDER BY a.applied_at DESC
	`, advertiserID)
}

func (s *Service) list(ctx context.Context, query string, arg any) ([]models.Application, error) {
	rows, err := s.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	var applications []models.Application
	for rows.Next() {
		var a models.Application
		err := rows.Scan(
			&a.ID, &a.CampaignID, &a.CreatorID, &a.Proposal, &a.EstimatedViews, &a.EstimatedEarnings,
			&a.Views, &a.Earnings, &a.Status, &a.AppliedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		applications = append(applications, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating applications: %w", err)
	}
	return applications, nil
}

// Approve moves a pending application to approved. Only the advertiser who
// owns the campaign may decide applications against it.
func (s *Service) Approve(ctx context.Context, advertiserID, applicationID uuid.UUID) error {
	return s.transition(ctx, advertiserID, applicationID, models.ApplicationStatusPending, models.ApplicationStatusApproved)
}

// Reject moves a pending application to rejected
func (s *Service) Reject(ctx context.Context, advertiserID, applicationID uuid.UUID) error {
	return s.transition(ctx, advertiserID, applicationID, models.ApplicationStatusPending, models.ApplicationStatusRejected)
}

// Complete moves an approved application to completed, ending further
// view updates against it.
func (s *Service) Complete(ctx context.Context, advertiserID, applicationID uuid.UUID) error {
	return s.transition(ctx, advertiserID, applicationID, models.ApplicationStatusApproved, models.ApplicationStatusCompleted)
}

func (s *Service) transition(ctx context.Context, advertiserID, applicationID uuid.UUID, from, to models.ApplicationStatus) error {
	result, err := s.db.Exec(ctx, `
		UPDATE applications a
		SET status = $1, updated_at = NOW()
		FROM campaigns c
		WHERE a.id = $2 AND a.campaign_id = c.id AND c.advertiser_id = $3 AND a.status = $4
	`, to, applicationID, advertiserID, from)
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	err = s.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM applications a
			JOIN campaigns c ON c.id = a.campaign_id
			WHERE a.id = $1 AND c.advertiser_id = $2
		)
	`, applicationID, advertiserID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check application: %w", err)
	}
	if exists {
		return ErrNotPending
	}
	return ErrApplicationNotFound
}

// ViewUpdateResult reports the outcome of a successful views update
type ViewUpdateResult struct {
	Views            int64           `json:"views"`
	Earnings         decimal.Decimal `json:"earnings"`
	CampaignID       uuid.UUID       `json:"campaign_id"`
	CampaignBudget   decimal.Decimal `json:"campaign_budget"`
	RemainingBudget  decimal.Decimal `json:"remaining_budget"`
	EarningsIncrease decimal.Decimal `json:"earnings_increase"`
}

// UpdateViews revises an approved application's view count, recomputes its
// earnings at the fixed rate, and debits the campaign budget by any earnings
// increase. The admission check, the debit and the aggregate recomputation run
// in one transaction; row locks are taken campaign-first so concurrent updates
// against the same campaign serialize instead of double-debiting.
//
// Decreases always succeed and never credit the budget back: spendable budget
// does not grow when a creator's owed earnings fall.
func (s *Service) UpdateViews(ctx context.Context, creatorID, applicationID uuid.UUID, newViews int64) (*ViewUpdateResult, error) {
	if newViews < 0 {
		return nil, ErrNegativeViews
	}
	newEarnings := payout.FromViews(newViews)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var campaignID uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT campaign_id FROM applications WHERE id = $1 AND creator_id = $2
	`, applicationID, creatorID).Scan(&campaignID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	// Lock order: campaign before application
	var budget decimal.Decimal
	err = tx.QueryRow(ctx, `
		SELECT budget FROM campaigns WHERE id = $1 FOR UPDATE
	`, campaignID).Scan(&budget)
	if err != nil {
		return nil, fmt.Errorf("failed to lock campaign: %w", err)
	}

	var status models.ApplicationStatus
	var oldEarnings decimal.Decimal
	err = tx.QueryRow(ctx, `
		SELECT status, earnings FROM applications WHERE id = $1 FOR UPDATE
	`, applicationID).Scan(&status, &oldEarnings)
	if err != nil {
		return nil, fmt.Errorf("failed to lock application: %w", err)
	}
	if status != models.ApplicationStatusApproved {
		return nil, ErrNotApproved
	}

	remaining, err := s.campaigns.RemainingBudget(ctx, tx, campaignID)
	if err != nil {
		return nil, err
	}
	if !campaign.CanPayIncrease(remaining, oldEarnings, newEarnings) {
		// Rollback leaves the application and campaign untouched
		return nil, ErrBudgetExceeded
	}

	// Debit before persisting the new earnings so the ledger's
	// remaining-budget check still sees the old approved sum
	if _, err := s.campaigns.DebitIncrease(ctx, tx, campaignID, oldEarnings, newEarnings); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE applications SET views = $1, earnings = $2, updated_at = NOW()
		WHERE id = $3
	`, newViews, newEarnings, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to update application: %w", err)
	}

	if err := s.profiles.RecomputeTotals(ctx, tx, creatorID); err != nil {
		return nil, err
	}

	var budgetAfter decimal.Decimal
	err = tx.QueryRow(ctx, `
		SELECT budget FROM campaigns WHERE id = $1
	`, campaignID).Scan(&budgetAfter)
	if err != nil {
		return nil, fmt.Errorf("failed to read campaign budget: %w", err)
	}

	remainingAfter, err := s.campaigns.RemainingBudget(ctx, tx, campaignID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	increase := decimal.Zero
	if newEarnings.GreaterThan(oldEarnings) {
		increase = newEarnings.Sub(oldEarnings)
	}

	return &ViewUpdateResult{
		Views:            newViews,
		Earnings:         newEarnings,
		CampaignID:       campaignID,
		CampaignBudget:   budgetAfter,
		RemainingBudget:  remainingAfter,
		EarningsIncrease: increase,
	}, nil
}
