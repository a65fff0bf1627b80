package server

import (
	"net/http"

	apierrors "github.com/aimerfeng/PromoLink/internal/errors"
	"github.com/aimerfeng/PromoLink/internal/middleware"
	"github.com/aimerfeng/PromoLink/internal/models"
	"github.com/aimerfeng/PromoLink/internal/profile"
	"github.com/gin-gonic/gin"
)

// handleGetProfile returns the caller's profile, creating a bare one on the
// first visit. Guests get a profile row lazily this way too.
func (s *APIServer) handleGetProfile(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	userType := middleware.GetUserTypeFromContext(c)

	p, err := s.profileService.GetOrCreate(c.Request.Context(), userID, userType)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, p)
}

// UpdateProfileRequest represents a profile update request
type UpdateProfileRequest struct {
	Bio          *string `json:"bio"`
	TiktokHandle *string `json:"tiktok_handle"`
}

// handleUpdateProfile updates the caller's editable profile fields
func (s *APIServer) handleUpdateProfile(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	if err := s.profileService.Update(c.Request.Context(), userID, req.Bio, req.TiktokHandle); err != nil {
		if err == profile.ErrProfileNotFound {
			respondError(c, apierrors.ErrProfileNotFoundError)
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	p, err := s.profileService.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, p)
}

// handleDashboard returns the role-appropriate dashboard. Guests get the
// creator-shaped dashboard with empty collections, matching their browse-only
// standing.
func (s *APIServer) handleDashboard(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	userType := middleware.GetUserTypeFromContext(c)

	if _, err := s.profileService.GetOrCreate(c.Request.Context(), userID, userType); err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	if userType == models.UserTypeAdvertiser {
		dash, err := s.profileService.GetAdvertiserDashboard(c.Request.Context(), userID)
		if err != nil {
			respondError(c, apierrors.ErrInternalServerError)
			return
		}
		c.JSON(http.StatusOK, dash)
		return
	}

	dash, err := s.profileService.GetCreatorDashboard(c.Request.Context(), userID)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}
	c.JSON(http.StatusOK, dash)
}
