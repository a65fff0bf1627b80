package server

import (
	"net/http"

	"github.com/aimerfeng/PromoLink/internal/application"
	"github.com/aimerfeng/PromoLink/internal/auth"
	"github.com/aimerfeng/PromoLink/internal/cache"
	"github.com/aimerfeng/PromoLink/internal/campaign"
	"github.com/aimerfeng/PromoLink/internal/config"
	"github.com/aimerfeng/PromoLink/internal/content"
	apierrors "github.com/aimerfeng/PromoLink/internal/errors"
	"github.com/aimerfeng/PromoLink/internal/logging"
	"github.com/aimerfeng/PromoLink/internal/middleware"
	"github.com/aimerfeng/PromoLink/internal/monitoring"
	"github.com/aimerfeng/PromoLink/internal/payment"
	"github.com/aimerfeng/PromoLink/internal/plan"
	"github.com/aimerfeng/PromoLink/internal/profile"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// APIServer represents the main API server
type APIServer struct {
	config           *config.Config
	router           *gin.Engine
	db               *pgxpool.Pool
	redis            *cache.Redis
	authService      *auth.Service
	profileService   *profile.Service
	campaignService  *campaign.Service
	appService       *application.Service
	contentService   *content.Service
	planService      *plan.Service
	paymentService   *payment.Service
	jwtAuthenticator *middleware.JWTAuthenticator
	rateLimiter      *middleware.RateLimiter
}

// NewAPIServer creates a new API server instance
func NewAPIServer(cfg *config.Config, db *pgxpool.Pool, redis *cache.Redis) *APIServer {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware in order
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	router.Use(monitoring.MetricsMiddleware())
	router.Use(logging.RequestLogger())

	profileService := profile.NewService(db)
	campaignService := campaign.NewService(db)

	srv := &APIServer{
		config:           cfg,
		router:           router,
		db:               db,
		redis:            redis,
		authService:      auth.NewService(db, &cfg.JWT),
		profileService:   profileService,
		campaignService:  campaignService,
		appService:       application.NewService(db, campaignService, profileService),
		contentService:   content.NewService(db, profileService),
		planService:      plan.NewService(db),
		paymentService:   payment.NewService(db, &cfg.Khalti),
		jwtAuthenticator: middleware.NewJWTAuthenticator(&cfg.JWT),
		rateLimiter:      middleware.NewRateLimiter(redis, &cfg.RateLimit),
	}

	srv.setupRoutes()
	return srv
}

// Router returns the gin router
func (s *APIServer) Router() http.Handler {
	return s.router
}

// setupRoutes configures all API routes
func (s *APIServer) setupRoutes() {
	// Health check
	s.router.GET("/health", s.healthCheck)

	v1 := s.router.Group("/api/v1")
	{
		// Auth routes (public)
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", s.handleRegister)
			authGroup.POST("/login", s.handleLogin)
			authGroup.POST("/logout", s.handleLogout)
			authGroup.POST("/refresh", s.handleRefresh)
			authGroup.POST("/guest", s.handleGuestLogin)
		}

		// Profile routes (any authenticated identity, guests included)
		profiles := v1.Group("/profiles")
		profiles.Use(s.jwtAuthenticator.JWTAuth())
		{
			profiles.GET("/me", s.handleGetProfile)
			profiles.PUT("/me", s.handleUpdateProfile)
			profiles.GET("/me/dashboard", s.handleDashboard)
		}

		// Campaign routes (browsing is public, management is advertiser-only)
		campaigns := v1.Group("/campaigns")
		{
			campaigns.GET("", s.handleListCampaigns)
			campaigns.GET("/mine", s.jwtAuthenticator.JWTAuth(), middleware.RequireAdvertiser(), s.handleListMyCampaigns)
			campaigns.GET("/:id", s.handleGetCampaign)
			campaigns.POST("", s.jwtAuthenticator.JWTAuth(), middleware.RequireAdvertiser(), s.handleCreateCampaign)
			campaigns.POST("/:id/status", s.jwtAuthenticator.JWTAuth(), middleware.RequireAdvertiser(), s.handleUpdateCampaignStatus)
			campaigns.POST("/:id/applications", s.jwtAuthenticator.JWTAuth(), middleware.RequireCreator(), s.handleApply)
		}

		// Application routes
		applications := v1.Group("/applications")
		applications.Use(s.jwtAuthenticator.JWTAuth())
		{
			applications.GET("/mine", middleware.RequireCreator(), s.handleListMyApplications)
			applications.GET("/received", middleware.RequireAdvertiser(), s.handleListReceivedApplications)
			applications.PUT("/:id", middleware.RequireCreator(), s.handleUpdateProposal)
			applications.POST("/:id/approve", middleware.RequireAdvertiser(), s.handleApproveApplication)
			applications.POST("/:id/reject", middleware.RequireAdvertiser(), s.handleRejectApplication)
			applications.POST("/:id/complete", middleware.RequireAdvertiser(), s.handleCompleteApplication)
			applications.POST("/:id/views", middleware.RequireCreator(), s.rateLimiter.ViewUpdateLimit(), s.handleUpdateApplicationViews)
		}

		// Content routes (creator only)
		contents := v1.Group("/contents")
		contents.Use(s.jwtAuthenticator.JWTAuth())
		contents.Use(middleware.RequireCreator())
		{
			contents.POST("", s.handleCreateContent)
			contents.GET("/mine", s.handleListMyContents)
			contents.POST("/:id/views", s.rateLimiter.ViewUpdateLimit(), s.handleUpdateContentViews)
		}

		// Plan catalog (public)
		v1.GET("/plans", s.handleListPlans)

		// Payment routes
		payments := v1.Group("/payments")
		{
			payments.POST("/verify", s.jwtAuthenticator.JWTAuth(), s.handleVerifyPayment)
		}
	}
}

// Health check handler
func (s *APIServer) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "api",
	})
}

// handleRegister handles user registration
func (s *APIServer) handleRegister(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	resp, err := s.authService.Register(c.Request.Context(), &req)
	if err != nil {
		switch err {
		case auth.ErrEmailAlreadyExists:
			respondError(c, apierrors.NewInvalidRequestError("Email already registered"))
		case auth.ErrInvalidUserType:
			respondError(c, apierrors.NewValidationError("User type must be advertiser or creator"))
		default:
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// handleLogin handles user login
func (s *APIServer) handleLogin(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	resp, err := s.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if err == auth.ErrInvalidCredentials {
			respondError(c, apierrors.ErrInvalidCredentialsError)
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// handleLogout handles user logout
func (s *APIServer) handleLogout(c *gin.Context) {
	// Stateless JWT: logout is handled client-side by discarding the token
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// handleRefresh handles token refresh
func (s *APIServer) handleRefresh(c *gin.Context) {
	var req auth.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	tokens, err := s.authService.RefreshTokens(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch err {
		case auth.ErrInvalidToken:
			respondError(c, apierrors.ErrInvalidCredentialsError)
		case auth.ErrTokenExpired:
			respondError(c, apierrors.ErrTokenExpiredError)
		case auth.ErrUserNotFound:
			respondError(c, apierrors.ErrProfileNotFoundError)
		default:
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// handleGuestLogin issues tokens for an anonymous browse-only identity
func (s *APIServer) handleGuestLogin(c *gin.Context) {
	resp, err := s.authService.GuestLogin(c.Request.Context())
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// respondError sends a standardized error response
func respondError(c *gin.Context, err *apierrors.APIError) {
	requestID, _ := c.Get("request_id")
	reqIDStr, _ := requestID.(string)

	c.JSON(err.HTTPStatus, apierrors.ErrorResponse{
		Error:     *err,
		RequestID: reqIDStr,
	})
}
