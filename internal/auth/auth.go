package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/aimerfeng/PromoLink/internal/config"
	"github.com/aimerfeng/PromoLink/internal/models"
	"github.com/alexedwards/argon2id"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Service handles authentication operations
type Service struct {
	db     *pgxpool.Pool
	config *config.JWTConfig
}

// NewService creates a new auth service
func NewService(db *pgxpool.Pool, jwtCfg *config.JWTConfig) *Service {
	return &Service{
		db:     db,
		config: jwtCfg,
	}
}

// Claims represents JWT claims
type Claims struct {
	UserID   string `json:"user_id"`
	UserType string `json:"user_type"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email        string          `json:"email" binding:"required,email"`
	Password     string          `json:"password" binding:"required,min=8"`
	UserType     models.UserType `json:"user_type" binding:"required,oneof=advertiser creator"`
	Bio          *string         `json:"bio"`
	TiktokHandle *string         `json:"tiktok_handle"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ProfileResponse represents a profile response (without sensitive data)
type ProfileResponse struct {
	ID           uuid.UUID       `json:"id"`
	Email        *string         `json:"email,omitempty"`
	UserType     models.UserType `json:"user_type"`
	Bio          *string         `json:"bio,omitempty"`
	TiktokHandle *string         `json:"tiktok_handle,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// RegisterResponse represents a registration response
type RegisterResponse struct {
	Profile ProfileResponse `json:"profile"`
	Tokens  TokenPair       `json:"tokens"`
	Message string          `json:"message"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Profile ProfileResponse `json:"profile"`
	Tokens  TokenPair       `json:"tokens"`
}

// GuestResponse represents a guest login response
type GuestResponse struct {
	Tokens  TokenPair `json:"tokens"`
	Message string    `json:"message"`
}

// Register creates a new user profile with the requested role
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	if req.UserType != models.UserTypeAdvertiser && req.UserType != models.UserTypeCreator {
		return nil, ErrInvalidUserType
	}

	var exists bool
	err := s.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM user_profiles WHERE email = $1)", req.Email).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	passwordHash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var p models.UserProfile
	err = s.db.QueryRow(ctx, `
		INSERT INTO user_profiles (id, email, password_hash, user_type, bio, tiktok_handle)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, email, user_type, bio, tiktok_handle, created_at
	`, uuid.New(), req.Email, passwordHash, req.UserType, req.Bio, req.TiktokHandle).Scan(
		&p.ID, &p.Email, &p.UserType, &p.Bio, &p.TiktokHandle, &p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	tokens, err := s.generateTokenPair(&p)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &RegisterResponse{
		Profile: toProfileResponse(&p),
		Tokens:  *tokens,
		Message: "Account created successfully",
	}, nil
}

// Login authenticates a user and returns tokens
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	var p models.UserProfile
	err := s.db.QueryRow(ctx, `
		SELECT id, email, password_hash, user_type, bio, tiktok_handle, created_at
		FROM user_profiles WHERE email = $1
	`, req.Email).Scan(
		&p.ID, &p.Email, &p.PasswordHash, &p.UserType, &p.Bio, &p.TiktokHandle, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Generic error to not reveal whether the email exists
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	if p.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	match, err := argon2id.ComparePasswordAndHash(req.Password, *p.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.generateTokenPair(&p)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &LoginResponse{
		Profile: toProfileResponse(&p),
		Tokens:  *tokens,
	}, nil
}

// GuestLogin issues tokens for a browse-only guest identity. No profile row
// is written here; one is created lazily on the guest's first dashboard
// visit through the profile get-or-create factory.
func (s *Service) GuestLogin(ctx context.Context) (*GuestResponse, error) {
	guest := models.UserProfile{
		ID:       uuid.New(),
		UserType: models.UserTypeGuest,
	}

	tokens, err := s.generateTokenPair(&guest)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &GuestResponse{
		Tokens:  *tokens,
		Message: "You are now browsing as a guest",
	}, nil
}

// RefreshTokens generates new tokens from a valid refresh token
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.validateToken(refreshToken)
	if err != nil {
		return nil, err
	}

	if claims.Subject != "refresh" {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	// Guest identities have no stored profile; rotate from the claims alone
	if models.UserType(claims.UserType) == models.UserTypeGuest {
		return s.generateTokenPair(&models.UserProfile{ID: userID, UserType: models.UserTypeGuest})
	}

	var p models.UserProfile
	err = s.db.QueryRow(ctx, `
		SELECT id, email, user_type, bio, tiktok_handle, created_at
		FROM user_profiles WHERE id = $1
	`, userID).Scan(
		&p.ID, &p.Email, &p.UserType, &p.Bio, &p.TiktokHandle, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	return s.generateTokenPair(&p)
}

// generateTokenPair creates access and refresh tokens
func (s *Service) generateTokenPair(p *models.UserProfile) (*TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(s.config.AccessTokenExpiry)
	refreshExpiry := now.Add(s.config.RefreshTokenExpiry)

	email := ""
	if p.Email != nil {
		email = *p.Email
	}

	accessClaims := &Claims{
		UserID:   p.ID.String(),
		UserType: string(p.UserType),
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "access",
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExpiry),
			ID:        generateJTI(),
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString([]byte(s.config.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshClaims := &Claims{
		UserID:   p.ID.String(),
		UserType: string(p.UserType),
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "refresh",
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(refreshExpiry),
			ID:        generateJTI(),
		},
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshTokenString, err := refreshToken.SignedString([]byte(s.config.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
		ExpiresAt:    accessExpiry,
		TokenType:    "Bearer",
	}, nil
}

// validateToken parses and validates a JWT token
func (s *Service) validateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// toProfileResponse converts a UserProfile to ProfileResponse
func toProfileResponse(p *models.UserProfile) ProfileResponse {
	return ProfileResponse{
		ID:           p.ID,
		Email:        p.Email,
		UserType:     p.UserType,
		Bio:          p.Bio,
		TiktokHandle: p.TiktokHandle,
		CreatedAt:    p.CreatedAt,
	}
}

// generateJTI generates a unique JWT ID
func generateJTI() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
