package server

import (
	"net/http"

	"github.com/aimerfeng/PromoLink/internal/content"
	apierrors "github.com/aimerfeng/PromoLink/internal/errors"
	"github.com/aimerfeng/PromoLink/internal/logging"
	"github.com/aimerfeng/PromoLink/internal/middleware"
	"github.com/aimerfeng/PromoLink/internal/monitoring"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// handleCreateContent creates a standalone content record for the creator
func (s *APIServer) handleCreateContent(c *gin.Context) {
	creatorID := middleware.GetUserIDFromContext(c)

	var req content.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	cnt, err := s.contentService.Create(c.Request.Context(), creatorID, &req)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusCreated, cnt)
}

// handleListMyContents lists the creator's own content records
func (s *APIServer) handleListMyContents(c *gin.Context) {
	creatorID := middleware.GetUserIDFromContext(c)

	contents, err := s.contentService.ListByCreator(c.Request.Context(), creatorID)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contents": contents})
}

// handleUpdateContentViews updates a content record's view count. Content
// earnings are not budget-gated, so the response omits the budget fields.
func (s *APIServer) handleUpdateContentViews(c *gin.Context) {
	creatorID := middleware.GetUserIDFromContext(c)
	requestID := middleware.GetRequestIDFromContext(c)

	contentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid content ID"})
		return
	}

	var req UpdateViewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		monitoring.RecordViewUpdate("content", "invalid")
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid views payload"})
		return
	}

	result, err := s.contentService.SetViews(c.Request.Context(), creatorID, contentID, *req.Views)
	if err != nil {
		switch err {
		case content.ErrNegativeViews:
			monitoring.RecordViewUpdate("content", "invalid")
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Views must be non-negative"})
		case content.ErrContentNotFound:
			monitoring.RecordViewUpdate("content", "not_found")
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Content not found"})
		default:
			monitoring.RecordViewUpdate("content", "error")
			logging.LogError(err, requestID, "server", "update_content_views")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Unexpected error"})
		}
		return
	}

	monitoring.RecordViewUpdate("content", "ok")
	logging.LogViewUpdate(requestID, "content", contentID.String(), creatorID.String(),
		result.Views, result.Earnings.String())

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"views":    result.Views,
		"earnings": result.Earnings,
	})
}
