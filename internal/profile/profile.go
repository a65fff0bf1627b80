package profile

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
	ErrProfileNotFound = errors.New("profile not found")
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so the aggregate
// recomputation can run inside the same transaction as the mutation that
// triggered it.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Service handles user profile operations
type Service struct {
	db *pgxpool.Pool
}

// NewService creates a new profile service
func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// GetOrCreate fetches the profile for an identity, creating a bare profile
// with the given role if none exists yet. The insert is idempotent, so
// concurrent first visits resolve to the same row.
func (s *Service) GetOrCreate(ctx context.Context, profileID uuid.UUID, userType models.UserType) (*models.UserProfile, error) {
	_, err := s.db.Exec(ctx, `
		INSERT INTO user_profiles (id, user_type)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, profileID, userType)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return s.GetByID(ctx, profileID)
}

// GetByID retrieves a profile by ID
func (s *Service) GetByID(ctx context.Context, profileID uuid.UUID) (*models.UserProfile, error) {
	var p models.UserProfile
	err := s.db.QueryRow(ctx, `
		SELECT id, email, user_type, bio, tiktok_handle, total_views, total_earnings, created_at, updated_at
		FROM user_profiles WHERE id = $1
	`, profileID).Scan(
		&p.ID, &p.Email, &p.UserType, &p.Bio, &p.TiktokHandle,
		&p.TotalViews, &p.TotalEarnings, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

// Update updates the editable profile fields
func (s *Service) Update(ctx context.Context, profileID uuid.UUID, bio, tiktokHandle *string) error {
	result, err := s.db.Exec(ctx, `
		UPDATE user_profiles
		SET bio = COALESCE($1, bio), tiktok_handle = COALESCE($2, tiktok_handle), updated_at = NOW()
		WHERE id = $3
	`, bio, tiktokHandle, profileID)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// RecomputeTotals overwrites the profile's cached aggregate totals with the
// sum of views and earnings across all contents plus all approved
// applications. The totals are never written any other way, so repeated calls
// with unchanged underlying data are idempotent.
func (s *Service) RecomputeTotals(ctx context.Context, q DBTX, profileID uuid.UUID) error {
	result, err := q.Exec(ctx, `
		UPDATE user_profiles SET
			total_views =
				COALESCE((SELECT SUM(views) FROM contents WHERE creator_id = $1), 0) +
				COALESCE((SELECT SUM(views) FROM applications WHERE creator_id = $1 AND status = $2), 0),
			total_earnings =
				COALESCE((SELECT SUM(earnings) FROM contents WHERE creator_id = $1), 0) +
				COALESCE((SELECT SUM(earnings) FROM applications WHERE creator_id = $1 AND status = $2), 0),
			updated_at = NOW()
		WHERE id = $1
	`, profileID, models.ApplicationStatusApproved)
	if err != nil {
		return fmt.Errorf("failed to recompute profile totals: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// AdvertiserDashboard summarizes an advertiser's campaigns and applications
type AdvertiserDashboard struct {
	Profile           *models.UserProfile `json:"profile"`
	Campaigns         []models.Campaign   `json:"campaigns"`
	TotalCampaigns    int64               `json:"total_campaigns"`
	ActiveCampaigns   int64               `json:"active_campaigns"`
	TotalApplications int64               `json:"total_applications"`
}

// CreatorDashboard summarizes a creator's applications, contents and totals
type CreatorDashboard struct {
	Profile       *models.UserProfile  `json:"profile"`
	Applications  []models.Application `json:"applications"`
	Contents      []models.Content     `json:"contents"`
	TotalViews    int64                `json:"total_views"`
	TotalEarnings decimal.Decimal      `json:"total_earnings"`
}

// GetAdvertiserDashboard assembles the advertiser dashboard payload
func (s *Service) GetAdvertiserDashboard(ctx context.Context, profileID uuid.UUID) (*AdvertiserDashboard, error) {
	p, err := s.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	dash := &AdvertiserDashboard{Profile: p}

	rows, err := s.db.Query(ctx, `
		SELECT id, advertiser_id, title, description, requirements, budget, status, is_public, created_at, updated_at
		FROM campaigns WHERE advertiser_id = $1
		ORDER BY created_at DESC
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to query campaigns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Campaign
		err := rows.Scan(
			&c.ID, &c.AdvertiserID, &c.Title, &c.Description, &c.Requirements,
			&c.Budget, &c.Status, &c.IsPublic, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		dash.Campaigns = append(dash.Campaigns, c)
		dash.TotalCampaigns++
		if c.Status == models.CampaignStatusActive {
			dash.ActiveCampaigns++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating campaigns: %w", err)
	}

	err = s.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM applications a
		JOIN campaigns c ON c.id = a.campaign_id
		WHERE c.advertiser_id = $1
	`, profileID).Scan(&dash.TotalApplications)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}

	return dash, nil
}

// GetCreatorDashboard assembles the creator dashboard payload. Totals come
// from the cached aggregate columns, which RecomputeTotals keeps in sync.
func (s *Service) GetCreatorDashboard(ctx context.Context, profileID uuid.UUID) (*CreatorDashboard, error) {
	p, err := s.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	dash := &CreatorDashboard{
		Profile:       p,
		TotalViews:    p.TotalViews,
		TotalEarnings: p.TotalEarnings,
	}

	appRows, err := s.db.Query(ctx, `
		SELECT id, campaign_id, creator_id, proposal, estimated_views, estimated_earnings,
		       views, earnings, status, applied_at, updated_at
		FROM applications WHERE creator_id = $1
		ORDER BY applied_at DESC
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer appRows.Close()

	for appRows.Next() {
		var a models.Application
		err := appRows.Scan(
			&a.ID, &a.CampaignID, &a.CreatorID, &a.Proposal, &a.EstimatedViews, &a.EstimatedEarnings,
			&a.Views, &a.Earnings, &a.Status, &a.AppliedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		dash.Applications = append(dash.Applications, a)
	}
	if err := appRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating applications: %w", err)
	}

	contentRows, err := s.db.Query(ctx, `
		SELECT id, creator_id, campaign_id, title, description, views, earnings, created_at
		FROM contents WHERE creator_id = $1
		ORDER BY created_at DESC
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contents: %w", err)
	}
	defer contentRows.Close()

	for contentRows.Next() {
		var c models.Content
		err := contentRows.Scan(
			&c.ID, &c.CreatorID, &c.CampaignID, &c.Title, &c.Description,
			&c.Views, &c.Earnings, &c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content: %w", err)
		}
		dash.Contents = append(dash.Contents, c)
	}
	if err := contentRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contents: %w", err)
	}

	return dash, nil
}
