package content

import (
	"context"
	"errors"
	"fmt"

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
	ErrContentNotFound = errors.New("content not found")
	ErrNegativeViews   = errors.New("views must be non-negative")
)

// Service handles content records and their view updates
type Service struct {
	db       *pgxpool.Pool
	profiles *profile.Service
}

// NewService creates a new content service
func NewService(db *pgxpool.Pool, profiles *profile.Service) *Service {
	return &Service{db: db, profiles: profiles}
}

// CreateRequest represents a content creation request
type CreateRequest struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description"`
	CampaignID  *uuid.UUID `json:"campaign_id"`
}

// Create creates a new content record for a creator. The campaign tag is
// informational only and does not couple the content to any budget.
func (s *Service) Create(ctx context.Context, creatorID uuid.UUID, req *CreateRequest) (*models.Content, error) {
	contentID := uuid.New()
	_, err := s.db.Exec(ctx, `
		INSERT INTO contents (id, creator_id, campaign_id, title, description)
		VALUES ($1, $2, $3, $4, $5)
	`, contentID, creatorID, req.CampaignID, req.Title, req.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to create content: %w", err)
	}

	return s.GetByID(ctx, contentID)
}

// GetByID retrieves a content record by ID
func (s *Service) GetByID(ctx context.Context, contentID uuid.UUID) (*models.Content, error) {
	var c models.Content
	err := s.db.QueryRow(ctx, `
		SELECT id, creator_id, campaign_id, title, description, views, earnings, created_at
		FROM contents WHERE id = $1
	`, contentID).Scan(
		&c.ID, &c.CreatorID, &c.CampaignID, &c.Title, &c.Description,
		&c.Views, &c.Earnings, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to get content: %w", err)
	}
	return &c, nil
}

// ListByCreator retrieves all content owned by a creator, newest first
func (s *Service) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.Content, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, creator_id, campaign_id, title, description, views, earnings, created_at
		FROM contents WHERE creator_id = $1
		ORDER BY created_at DESC
	`, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contents: %w", err)
	}
	defer rows.Close()

	var contents []models.Content
	for rows.Next() {
		var c models.Content
		err := rows.Scan(
			&c.ID, &c.CreatorID, &c.CampaignID, &c.Title, &c.Description,
			&c.Views, &c.Earnings, &c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content: %w", err)
		}
		contents = append(contents, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contents: %w", err)
	}
	return contents, nil
}

// ViewUpdateResult reports the outcome of a successful views update
type ViewUpdateResult struct {
	Views    int64           `json:"views"`
	Earnings decimal.Decimal `json:"earnings"`
}

// SetViews sets a content record's view count and recomputes its earnings at
// the fixed rate. Content earnings are not budget-gated, so there is no
// admission check; negative view counts are rejected server-side. The record
// update and the aggregate recomputation share one transaction.
func (s *Service) SetViews(ctx context.Context, creatorID, contentID uuid.UUID, newViews int64) (*ViewUpdateResult, error) {
	if newViews < 0 {
		return nil, ErrNegativeViews
	}
	newEarnings := payout.FromViews(newViews)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		UPDATE contents SET views = $1, earnings = $2
		WHERE id = $3 AND creator_id = $4
	`, newViews, newEarnings, contentID, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to update content: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, ErrContentNotFound
	}

	if err := s.profiles.RecomputeTotals(ctx, tx, creatorID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &ViewUpdateResult{Views: newViews, Earnings: newEarnings}, nil
}
