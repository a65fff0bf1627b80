package auth

import (
	"context"
	"testing"
	"time"

	"github.com/aimerfeng/PromoLink/internal/config"
	"github.com/aimerfeng/PromoLink/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		Secret:             "test-secret-key-for-auth-tests",
		Issuer:             "promolink-test",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
	}
}

// Token generation and validation are pure; no database needed.
func TestGenerateTokenPair_RoundTrip(t *testing.T) {
	svc := NewService(nil, testJWTConfig())

	email := "creator@example.com"
	p := &models.UserProfile{
		ID:       uuid.New(),
		Email:    &email,
		UserType: models.UserTypeCreator,
	}

	tokens, err := svc.generateTokenPair(p)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tokens.TokenType)

	claims, err := svc.validateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "access", claims.Subject)
	assert.Equal(t, p.ID.String(), claims.UserID)
	assert.Equal(t, "creator", claims.UserType)
	assert.Equal(t, email, claims.Email)

	refreshClaims, err := svc.validateToken(tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refreshClaims.Subject)
}

func TestGuestLogin_NoProfileWrite(t *testing.T) {
	svc := NewService(nil, testJWTConfig())

	resp, err := svc.GuestLogin(context.Background())
	require.NoError(t, err)

	claims, err := svc.validateToken(resp.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, string(models.UserTypeGuest), claims.UserType)
	assert.Empty(t, claims.Email)
}

// Guest refresh tokens rotate without a profile lookup.
func TestRefreshTokens_GuestRotation(t *testing.T) {
	svc := NewService(nil, testJWTConfig())

	resp, err := svc.GuestLogin(context.Background())
	require.NoError(t, err)

	rotated, err := svc.RefreshTokens(context.Background(), resp.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.AccessToken)

	origClaims, err := svc.validateToken(resp.Tokens.AccessToken)
	require.NoError(t, err)
	newClaims, err := svc.validateToken(rotated.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, origClaims.UserID, newClaims.UserID)
}

func TestRefreshTokens_RejectsAccessToken(t *testing.T) {
	svc := NewService(nil, testJWTConfig())

	resp, err := svc.GuestLogin(context.Background())
	require.NoError(t, err)

	_, err = svc.RefreshTokens(context.Background(), resp.Tokens.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := NewService(nil, testJWTConfig())
	other := NewService(nil, &config.JWTConfig{
		Secret:             "a-different-secret",
		Issuer:             "promolink-test",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
	})

	resp, err := other.GuestLogin(context.Background())
	require.NoError(t, err)

	_, err = svc.validateToken(resp.Tokens.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestGenerateJTI_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		jti := generateJTI()
		require.False(t, seen[jti], "duplicate JTI %s", jti)
		seen[jti] = true
	}
}
