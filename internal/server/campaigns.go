package server

import (
	"net/http"

	"github.com/aimerfeng/PromoLink/internal/campaign"
	apierrors "github.com/aimerfeng/PromoLink/internal/errors"
	"github.com/aimerfeng/PromoLink/internal/middleware"
	"github.com/aimerfeng/PromoLink/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// handleListCampaigns lists public active campaigns for browsing
func (s *APIServer) handleListCampaigns(c *gin.Context) {
	campaigns, err := s.campaignService.ListPublic(c.Request.Context())
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"campaigns": campaigns})
}

// handleGetCampaign returns one public campaign with its application count
func (s *APIServer) handleGetCampaign(c *gin.Context) {
	campaignID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apierrors.NewInvalidRequestError("Invalid campaign ID"))
		return
	}

	cmp, err := s.campaignService.GetPublic(c.Request.Context(), campaignID)
	if err != nil {
		if err == campaign.ErrCampaignNotFound {
			respondError(c, apierrors.ErrCampaignNotFoundError)
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	count, err := s.campaignService.CountApplications(c.Request.Context(), campaignID)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"campaign":          cmp,
		"application_count": count,
	})
}

// handleCreateCampaign creates a campaign for the authenticated advertiser
func (s *APIServer) handleCreateCampaign(c *gin.Context) {
	advertiserID := middleware.GetUserIDFromContext(c)

	var req campaign.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	cmp, err := s.campaignService.Create(c.Request.Context(), advertiserID, &req)
	if err != nil {
		if err == campaign.ErrInvalidBudget {
			respondError(c, apierrors.NewValidationError("Budget must be positive"))
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, cmp)
}

// handleListMyCampaigns lists the advertiser's own campaigns
func (s *APIServer) handleListMyCampaigns(c *gin.Context) {
	advertiserID := middleware.GetUserIDFromContext(c)

	campaigns, err := s.campaignService.ListByAdvertiser(c.Request.Context(), advertiserID)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"campaigns": campaigns})
}

// UpdateCampaignStatusRequest represents a campaign status change
type UpdateCampaignStatusRequest struct {
	Status models.CampaignStatus `json:"status" binding:"required,oneof=draft active paused completed"`
}

// handleUpdateCampaignStatus moves a campaign to a new status
func (s *APIServer) handleUpdateCampaignStatus(c *gin.Context) {
	advertiserID := middleware.GetUserIDFromContext(c)

	campaignID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apierrors.NewInvalidRequestError("Invalid campaign ID"))
		return
	}

	var req UpdateCampaignStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	if err := s.campaignService.UpdateStatus(c.Request.Context(), advertiserID, campaignID, req.Status); err != nil {
		if err == campaign.ErrCampaignNotFound {
			respondError(c, apierrors.ErrCampaignNotFoundError)
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Campaign status updated", "status": req.Status})
}
