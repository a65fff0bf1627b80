package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aimerfeng/PromoLink/internal/config"
	"github.com/aimerfeng/PromoLink/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
)

// Service errors
var (
	ErrInvalidAmount       = errors.New("invalid payment amount")
	ErrVerificationFailed  = errors.New("payment verification failed")
	ErrProviderUnavailable = errors.New("payment provider unavailable")
	ErrKhaltiAPIError      = errors.New("khalti API error")
)

// Service handles Khalti payment verification
type Service struct {
	db         *pgxpool.Pool
	config     *config.KhaltiConfig
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewService creates a new payment service. The circuit breaker trips on
// consecutive provider failures so a Khalti outage does not tie up request
// workers waiting on timeouts.
func NewService(db *pgxpool.Pool, cfg *config.KhaltiConfig) *Service {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "khalti-verify",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Info().
				Str("circuit_breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
		IsSuccessful: func(err error) bool {
			// Only provider-side failures trip the breaker. A rejected
			// token is a healthy provider saying no.
			if err == nil || errors.Is(err, ErrVerificationFailed) {
				return true
			}
			return false
		},
	})

	return &Service{
		db:     db,
		config: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: breaker,
	}
}

// VerifyRequest represents a payment verification request
type VerifyRequest struct {
	Token  string          `json:"token" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// VerifyResponse represents a payment verification response
type VerifyResponse struct {
	Success   bool      `json:"success"`
	PaymentID uuid.UUID `json:"payment_id"`
}

// khaltiVerifyRequest is the request body sent to the Khalti epayment API
type khaltiVerifyRequest struct {
	Token  string `json:"token"`
	Amount string `json:"amount"`
}

// khaltiVerifyResponse is the response from the Khalti epayment API
type khaltiVerifyResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// Verify records a pending payment, asks Khalti to verify the token, and
// persists the outcome. A payment is verified iff Khalti answers HTTP 200
// with status "success".
func (s *Service) Verify(ctx context.Context, userID *uuid.UUID, req *VerifyRequest) (*models.Payment, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	paymentID := uuid.New()
	_, err := s.db.Exec(ctx, `
		INSERT INTO payments (id, user_id, token, amount, status)
		VALUES ($1, $2, $3, $4, $5)
	`, paymentID, userID, req.Token, req.Amount, models.PaymentStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment record: %w", err)
	}

	_, verifyErr := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.verifyWithKhalti(ctx, req.Token, req.Amount)
	})

	if verifyErr != nil {
		if errors.Is(verifyErr, gobreaker.ErrOpenState) || errors.Is(verifyErr, gobreaker.ErrTooManyRequests) {
			log.Warn().Str("payment_id", paymentID.String()).Msg("Circuit breaker is open, rejecting verification")
			s.markFailed(ctx, paymentID, "provider unavailable")
			return nil, ErrProviderUnavailable
		}

		reason := verifyErr.Error()
		s.markFailed(ctx, paymentID, reason)

		if errors.Is(verifyErr, ErrVerificationFailed) {
			return nil, ErrVerificationFailed
		}
		return nil, fmt.Errorf("failed to verify payment: %w", verifyErr)
	}

	var p models.Payment
	err = s.db.QueryRow(ctx, `
		UPDATE payments SET status = $1, verified_at = NOW()
		WHERE id = $2
		RETURNING id, user_id, token, amount, status, failure_reason, created_at, verified_at
	`, models.PaymentStatusVerified, paymentID).Scan(
		&p.ID, &p.UserID, &p.Token, &p.Amount, &p.Status, &p.FailureReason, &p.CreatedAt, &p.VerifiedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update payment record: %w", err)
	}

	log.Info().
		Str("payment_id", paymentID.String()).
		Str("amount", req.Amount.String()).
		Msg("Payment verified")

	return &p, nil
}

// verifyWithKhalti makes the API call to the Khalti epayment endpoint
func (s *Service) verifyWithKhalti(ctx context.Context, token string, amount decimal.Decimal) error {
	reqBody, err := json.Marshal(khaltiVerifyRequest{
		Token:  token,
		Amount: amount.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", s.config.VerifyURL, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.config.SecretKey)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status %d, body: %s", ErrKhaltiAPIError, resp.StatusCode, string(body))
	}

	var verifyResp khaltiVerifyResponse
	if err := json.Unmarshal(body, &verifyResp); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || verifyResp.Status != "success" {
		return ErrVerificationFailed
	}

	return nil
}

// markFailed records a verification failure. Best effort: the caller already
// has an error to return.
func (s *Service) markFailed(ctx context.Context, paymentID uuid.UUID, reason string) {
	_, err := s.db.Exec(ctx, `
		UPDATE payments SET status = $1, failure_reason = $2 WHERE id = $3
	`, models.PaymentStatusFailed, reason, paymentID)
	if err != nil {
		log.Error().Err(err).Str("payment_id", paymentID.String()).Msg("Failed to record payment failure")
	}
}

// GetByID retrieves a payment record
func (s *Service) GetByID(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error) {
	var p models.Payment
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, token, amount, status, failure_reason, created_at, verified_at
		FROM payments WHERE id = $1
	`, paymentID).Scan(
		&p.ID, &p.UserID, &p.Token, &p.Amount, &p.Status, &p.FailureReason, &p.CreatedAt, &p.VerifiedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &p, nil
}
