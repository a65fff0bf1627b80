package logging

import (
	"io"
	"os"
	"time"

	"github.com/aimerfeng/PromoLink/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup initializes the global logger based on configuration
func Setup(cfg *config.LoggingConfig, env string) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	zerolog.TimeFieldFormat = time.RFC3339Nano

	var output io.Writer
	if cfg.Format == "json" || env == "production" {
		output = os.Stdout
	} else {
		// Pretty console output for development
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
			NoColor:    false,
		}
	}

	log.Logger = zerolog.New(output).
		With().
		Timestamp().
		Str("service", "promolink").
		Logger()
}

// NewLogger creates a new logger with additional context
func NewLogger(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}

// RequestLogger is a Gin middleware for structured request logging
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		requestID := c.GetString("request_id")

		event := log.Info()
		if c.Writer.Status() >= 500 {
			event = log.Error()
		} else if c.Writer.Status() >= 400 {
			event = log.Warn()
		}

		event.
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", raw).
			Int("status", c.Writer.Status()).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Int("body_size", c.Writer.Size()).
			Msg("HTTP request")
	}
}

// LogViewUpdate logs a views/earnings update on a content or application record
func LogViewUpdate(requestID, kind, recordID, profileID string, views int64, earnings string) {
	log.Info().
		Str("request_id", requestID).
		Str("kind", kind).
		Str("record_id", recordID).
		Str("profile_id", profileID).
		Int64("views", views).
		Str("earnings", earnings).
		Msg("View update")
}

// LogBudgetDebit logs a campaign budget debit
func LogBudgetDebit(requestID, campaignID, applicationID string, increase, budgetAfter string) {
	log.Info().
		Str("request_id", requestID).
		Str("campaign_id", campaignID).
		Str("application_id", applicationID).
		Str("earnings_increase", increase).
		Str("budget_after", budgetAfter).
		Msg("Budget debit")
}

// LogPayment logs a payment verification event
func LogPayment(requestID, paymentID, status string, amount string) {
	log.Info().
		Str("request_id", requestID).
		Str("payment_id", paymentID).
		Str("status", status).
		Str("amount", amount).
		Msg("Payment event")
}

// LogError logs an error with context
func LogError(err error, requestID, component, operation string) {
	log.Error().
		Err(err).
		Str("request_id", requestID).
		Str("component", component).
		Str("operation", operation).
		Msg("Error occurred")
}
