package router

import (
	"github.com/gin-gonic/gin"

	"github.com/construtorcheck/construtorcheck-backend/config"
	"github.com/construtorcheck/construtorcheck-backend/internal/app/controller"
	"github.com/construtorcheck/construtorcheck-backend/internal/middleware"
	"github.com/construtorcheck/construtorcheck-backend/internal/websocket"
)

type Router struct {
	authController    *controller.AuthController
	companyController *controller.CompanyController
	reviewController  *controller.ReviewController
	uploadController  *controller.UploadController
	authMiddleware    *middleware.AuthMiddleware
	hub               *websocket.Hub
	config            *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	companyController *controller.CompanyController,
	reviewController *controller.ReviewController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	hub *websocket.Hub,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:    authController,
		companyController: companyController,
		reviewController:  reviewController,
		uploadController:  uploadController,
		authMiddleware:    authMiddleware,
		hub:               hub,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "ConstrutorCheck API is running",
		})
	})

	// Live review feed. Company ID 0 follows every company.
	router.GET("/ws/companies/:id", r.hub.ServeCompanyFeed)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
			auth.PUT("/me", r.authMiddleware.Authenticate(), r.authController.UpdateMe)
		}

		companies := v1.Group("/companies")
		{
			companies.GET("", r.companyController.ListCompanies)
			companies.GET("/search", r.companyController.SearchCompanies)
			companies.GET("/stats", r.companyController.GetPlatformStats)
			companies.GET("/:id", r.companyController.GetCompany)
			companies.GET("/slug/:slug", r.companyController.GetCompanyBySlug)
			companies.GET("/:id/reviews", r.reviewController.GetCompanyReviews)
			companies.POST("/resolve",
				r.authMiddleware.Authenticate(),
				r.companyController.ResolveCompany,
			)
		}

		reviews := v1.Group("/reviews")
		{
			reviews.POST("", r.authMiddleware.Authenticate(), r.reviewController.SubmitReview)
			reviews.DELETE("/:id", r.authMiddleware.Authenticate(), r.reviewController.RetractReview)
			reviews.POST("/:id/vote", r.authMiddleware.Authenticate(), r.reviewController.VoteReview)
			reviews.GET("/:id/vote", r.authMiddleware.Authenticate(), r.reviewController.GetReviewVote)
			reviews.POST("/:id/report", r.reviewController.ReportReview)
			reviews.POST("/:id/response",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("admin"),
				r.reviewController.RespondToReview,
			)
		}

		users := v1.Group("/users")
		users.Use(r.authMiddleware.Authenticate())
		{
			users.GET("/me/reviews", r.reviewController.GetMyReviews)
		}

		uploads := v1.Group("/uploads")
		uploads.Use(r.authMiddleware.Authenticate())
		{
			uploads.POST("/presigned", r.uploadController.GeneratePresignedURL)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
