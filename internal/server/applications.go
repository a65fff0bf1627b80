package server

import (
	"net/http"

	"github.com/aimerfeng/PromoLink/internal/application"
	apierrors "github.com/aimerfeng/PromoLink/internal/errors"
	"github.com/aimerfeng/PromoLink/internal/logging"
	"github.com/aimerfeng/PromoLink/internal/middleware"
	"github.com/aimerfeng/PromoLink/internal/monitoring"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// handleApply submits a creator's application against a campaign
func (s *APIServer) handleApply(c *gin.Context) {
	creatorID := middleware.GetUserIDFromContext(c)

	campaignID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apierrors.NewInvalidRequestError("Invalid campaign ID"))
		return
	}

	var req application.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	app, err := s.appService.Apply(c.Request.Context(), creatorID, campaignID, &req)
	if err != nil {
		switch err {
		case application.ErrCampaignNotFound:
			respondError(c, apierrors.ErrCampaignNotFoundError)
		case application.ErrAlreadyApplied:
			respondError(c, &apierrors.APIError{
				Code:       apierrors.ErrAlreadyApplied,
				Message:    "You have already applied for this campaign",
				HTTPStatus: http.StatusConflict,
			})
		case application.ErrNegativeViews:
			respondError(c, apierrors.NewValidationError("Estimated views must be non-negative"))
		default:
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, app)
}

// handleListMyApplications lists the creator's own applications
func (s *APIServer) handleListMyApplications(c *gin.Context) {
	creatorID := middleware.GetUserIDFromContext(c)

	apps, err := s.appService.ListByCreator(c.Request.Context(), creatorID)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": apps})
}

// handleListReceivedApplications lists applications against the advertiser's campaigns
func (s *APIServer) handleListReceivedApplications(c *gin.Context) {
	advertiserID := middleware.GetUserIDFromContext(c)

	apps, err := s.appService.ListByAdvertiser(c.Request.Context(), advertiserID)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": apps})
}

// UpdateProposalRequest represents a proposal revision
type UpdateProposalRequest struct {
	Proposal       string `json:"proposal" binding:"required"`
	EstimatedViews int64  `json:"estimated_views" binding:"min=0"`
}

// handleUpdateProposal revises a pending application
func (s *APIServer) handleUpdateProposal(c *gin.Context) {
	creatorID := middleware.GetUserIDFromContext(c)

	applicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apierrors.NewInvalidRequestError("Invalid application ID"))
		return
	}

	var req UpdateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	app, err := s.appService.UpdateProposal(c.Request.Context(), creatorID, applicationID, req.Proposal, req.EstimatedViews)
	if err != nil {
		switch err {
		case application.ErrApplicationNotFound:
			respondError(c, apierrors.ErrApplicationNotFoundError)
		case application.ErrNotPending:
			respondError(c, apierrors.NewInvalidStateError("Only pending applications can be revised"))
		case application.ErrNegativeViews:
			respondError(c, apierrors.NewValidationError("Estimated views must be non-negative"))
		default:
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, app)
}

// handleApproveApplication approves a pending application
func (s *APIServer) handleApproveApplication(c *gin.Context) {
	s.decideApplication(c, "approve")
}

// handleRejectApplication rejects a pending application
func (s *APIServer) handleRejectApplication(c *gin.Context) {
	s.decideApplication(c, "reject")
}

// handleCompleteApplication closes an approved application
func (s *APIServer) handleCompleteApplication(c *gin.Context) {
	s.decideApplication(c, "complete")
}

func (s *APIServer) decideApplication(c *gin.Context, decision string) {
	advertiserID := middleware.GetUserIDFromContext(c)

	applicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apierrors.NewInvalidRequestError("Invalid application ID"))
		return
	}

	ctx := c.Request.Context()
	switch decision {
	case "approve":
		err = s.appService.Approve(ctx, advertiserID, applicationID)
	case "reject":
		err = s.appService.Reject(ctx, advertiserID, applicationID)
	case "complete":
		err = s.appService.Complete(ctx, advertiserID, applicationID)
	}

	if err != nil {
		switch err {
		case application.ErrApplicationNotFound:
			respondError(c, apierrors.ErrApplicationNotFoundError)
		case application.ErrNotPending:
			respondError(c, apierrors.NewInvalidStateError("Application is not in the required status"))
		default:
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	monitoring.RecordApplicationDecision(decision)
	c.JSON(http.StatusOK, gin.H{"message": "Application " + decision + "d", "decision": decision})
}

// UpdateViewsRequest represents a view count report
type UpdateViewsRequest struct {
	Views *int64 `json:"views" binding:"required"`
}

// handleUpdateApplicationViews updates an approved application's view count.
// Success and failure bodies carry an explicit success flag so reporting
// clients can branch without inspecting status codes.
func (s *APIServer) handleUpdateApplicationViews(c *gin.Context) {
	creatorID := middleware.GetUserIDFromContext(c)
	requestID := middleware.GetRequestIDFromContext(c)

	applicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid application ID"})
		return
	}

	var req UpdateViewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Malformed or non-integer payloads are input-format errors,
		// not business rejections
		monitoring.RecordViewUpdate("application", "invalid")
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid views payload"})
		return
	}

	result, err := s.appService.UpdateViews(c.Request.Context(), creatorID, applicationID, *req.Views)
	if err != nil {
		switch err {
		case application.ErrNegativeViews:
			monitoring.RecordViewUpdate("application", "invalid")
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Views must be non-negative"})
		case application.ErrApplicationNotFound:
			monitoring.RecordViewUpdate("application", "not_found")
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Application not found"})
		case application.ErrNotApproved:
			monitoring.RecordViewUpdate("application", "not_approved")
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "Can only update views for approved applications"})
		case application.ErrBudgetExceeded:
			monitoring.RecordViewUpdate("application", "budget_exceeded")
			monitoring.RecordBudgetExceeded()
			c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "Campaign budget cannot cover the earnings increase"})
		default:
			monitoring.RecordViewUpdate("application", "error")
			logging.LogError(err, requestID, "server", "update_application_views")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Unexpected error"})
		}
		return
	}

	monitoring.RecordViewUpdate("application", "ok")
	if result.EarningsIncrease.IsPositive() {
		monitoring.RecordBudgetDebit(result.EarningsIncrease.InexactFloat64())
		logging.LogBudgetDebit(requestID, result.CampaignID.String(), applicationID.String(),
			result.EarningsIncrease.String(), result.CampaignBudget.String())
	}
	logging.LogViewUpdate(requestID, "application", applicationID.String(), creatorID.String(),
		result.Views, result.Earnings.String())

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"views":             result.Views,
		"earnings":          result.Earnings,
		"campaign_id":       result.CampaignID,
		"campaign_budget":   result.CampaignBudget,
		"remaining_budget":  result.RemainingBudget,
		"earnings_increase": result.EarningsIncrease,
	})
}
