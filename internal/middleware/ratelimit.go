package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/aimerfeng/PromoLink/internal/cache"
	"github.com/aimerfeng/PromoLink/internal/config"
	apierrors "github.com/aimerfeng/PromoLink/internal/errors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RateLimiter implements sliding window rate limiting using Redis.
// It throttles the view-update endpoints, which are the only write paths
// callers are expected to hit repeatedly.
type RateLimiter struct {
	redis  *cache.Redis
	config *config.RateLimitConfig
}

// RateLimitResult contains the result of a rate limit check
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	Limit      int
	RetryAfter time.Duration
	ResetAt    time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(redis *cache.Redis, cfg *config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		redis:  redis,
		config: cfg,
	}
}

// ViewUpdateLimit returns a middleware that enforces the per-user view-update
// rate limit. Must run after JWTAuth. Redis failures fail open.
func (r *RateLimiter) ViewUpdateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserIDFromContext(c)

		result, err := r.Check(c.Request.Context(), userID.String())
		if err != nil {
			log.Error().Err(err).Str("user_id", userID.String()).Msg("Rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))

		if !result.Allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", int(result.RetryAfter.Seconds())+1))
			respondWithError(c, apierrors.ErrRateLimitedError)
			c.Abort()
			return
		}

		c.Next()
	}
}

// Check checks if a request is allowed under the sliding window limit
func (r *RateLimiter) Check(ctx context.Context, userID string) (*RateLimitResult, error) {
	limit := r.config.ViewUpdateLimit

	windowSeconds := r.config.WindowSeconds
	if windowSeconds <= 0 {
		windowSeconds = 60
	}

	return r.checkSlidingWindow(ctx, userID, limit, windowSeconds)
}

// checkSlidingWindow implements sliding window rate limiting using a Redis
// sorted set keyed per user. Score = timestamp, member = unique request ID.
func (r *RateLimiter) checkSlidingWindow(ctx context.Context, userID string, limit int, windowSeconds int) (*RateLimitResult, error) {
	now := time.Now()
	windowDuration := time.Duration(windowSeconds) * time.Second
	windowStart := now.Add(-windowDuration)

	key := fmt.Sprintf("ratelimit:views:%s", userID)

	pipe := r.redis.Client.Pipeline()

	// Remove old entries outside the window
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart.UnixNano()))

	// Count current entries in window
	countCmd := pipe.ZCard(ctx, key)

	_, err := pipe.Exec(ctx)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to check rate limit")
		// On Redis error, allow the request (fail open)
		return &RateLimitResult{
			Allowed:   true,
			Remaining: int64(limit),
			Limit:     limit,
		}, nil
	}

	currentCount := countCmd.Val()
	remaining := int64(limit) - currentCount

	result := &RateLimitResult{
		Limit:   limit,
		ResetAt: now.Add(windowDuration),
	}

	if currentCount >= int64(limit) {
		result.Allowed = false
		result.Remaining = 0

		// Calculate retry after based on oldest entry
		oldestScore, err := r.redis.Client.ZRangeWithScores(ctx, key, 0, 0).Result()
		if err == nil && len(oldestScore) > 0 {
			oldestTime := time.Unix(0, int64(oldestScore[0].Score))
			result.RetryAfter = oldestTime.Add(windowDuration).Sub(now)
			if result.RetryAfter < 0 {
				result.RetryAfter = time.Second
			}
		} else {
			result.RetryAfter = windowDuration
		}

		return result, nil
	}

	requestID := fmt.Sprintf("%d-%s", now.UnixNano(), userID)
	err = r.redis.Client.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: requestID,
	}).Err()
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to add rate limit entry")
	}

	r.redis.Client.Expire(ctx, key, windowDuration*2)

	result.Allowed = true
	result.Remaining = remaining - 1
	if result.Remaining < 0 {
		result.Remaining = 0
	}

	return result, nil
}

// Reset resets the rate limit for a user (for testing or admin purposes)
func (r *RateLimiter) Reset(ctx context.Context, userID string) error {
	key := fmt.Sprintf("ratelimit:views:%s", userID)
	return r.redis.Client.Del(ctx, key).Err()
}
