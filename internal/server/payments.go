package server

import (
	"net/http"

	apierrors "github.com/aimerfeng/PromoLink/internal/errors"
	"github.com/aimerfeng/PromoLink/internal/logging"
	"github.com/aimerfeng/PromoLink/internal/middleware"
	"github.com/aimerfeng/PromoLink/internal/monitoring"
	"github.com/aimerfeng/PromoLink/internal/payment"
	"github.com/gin-gonic/gin"
)

// handleListPlans returns the public plan catalog
func (s *APIServer) handleListPlans(c *gin.Context) {
	plans, err := s.planService.List(c.Request.Context())
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// handleVerifyPayment proxies a payment token to Khalti for verification
func (s *APIServer) handleVerifyPayment(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	requestID := middleware.GetRequestIDFromContext(c)

	var req payment.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	p, err := s.paymentService.Verify(c.Request.Context(), &userID, &req)
	if err != nil {
		switch err {
		case payment.ErrInvalidAmount:
			monitoring.RecordPaymentVerification("invalid")
			respondError(c, apierrors.NewValidationError("Amount must be positive"))
		case payment.ErrVerificationFailed:
			monitoring.RecordPaymentVerification("failed")
			c.JSON(http.StatusBadRequest, gin.H{"success": false})
		case payment.ErrProviderUnavailable:
			monitoring.RecordPaymentVerification("unavailable")
			respondError(c, apierrors.ErrPaymentUnavailableError)
		default:
			monitoring.RecordPaymentVerification("error")
			logging.LogError(err, requestID, "server", "verify_payment")
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	monitoring.RecordPaymentVerification("verified")
	logging.LogPayment(requestID, p.ID.String(), string(p.Status), p.Amount.String())

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"payment_id": p.ID,
	})
}
