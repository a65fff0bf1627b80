package plan

import (
	"context"
	"fmt"

	"github.com/aimerfeng/PromoLink/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Service serves the public plan catalog
type Service struct {
	db *pgxpool.Pool
}

// NewService creates a new plan service
func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// List retrieves all plans ordered by price
func (s *Service) List(ctx context.Context) ([]models.Plan, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, description, price, duration, features
		FROM plans
		ORDER BY price ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	var plans []models.Plan
	for rows.Next() {
		var p models.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Duration, &p.Features); err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plans: %w", err)
	}
	return plans, nil
}
