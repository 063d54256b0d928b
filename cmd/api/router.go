package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"library-backend/internal/shared/middleware"
	"library-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(v1, c)
		setupUserRoutes(v1, c)
		setupBookRoutes(v1, c)
		setupLoanRoutes(v1, c)
	}

	return router
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.UserHandler.Register)
		auth.POST("/login", c.UserHandler.Login)
		auth.POST("/refresh", c.UserHandler.RefreshToken)
	}
}

// ========================================
// USER ROUTES
// ========================================
func setupUserRoutes(v1 *gin.RouterGroup, c *container.Container) {
	users := v1.Group("/users")
	users.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		// Self-service profile routes
		users.GET("/me", c.UserHandler.GetProfile)
		users.PUT("/me", c.UserHandler.UpdateProfile)
		users.PUT("/me/password", c.UserHandler.ChangePassword)

		// Member administration, librarian only
		staff := users.Group("")
		staff.Use(middleware.LibrarianMiddleware())
		{
			staff.GET("", c.UserHandler.ListUsers)
			staff.GET("/:id", c.UserHandler.GetUser)
			staff.PUT("/:id/status", c.UserHandler.UpdateMembershipStatus)
			staff.PUT("/:id/role", c.UserHandler.UpdateRole)
		}
	}
}

// ========================================
// BOOK ROUTES
// ========================================
func setupBookRoutes(v1 *gin.RouterGroup, c *container.Container) {
	books := v1.Group("/books")

	// Public catalog routes, no authentication required
	{
		books.GET("", c.BookHandler.ListBooks)
		books.GET("/popular", c.BookHandler.PopularBooks)
		books.GET("/top-rated", c.BookHandler.TopRatedBooks)
		books.GET("/:id", c.BookHandler.GetBook)
		books.GET("/:id/ratings", c.RatingHandler.ListRatings)
	}

	// Rating routes, any authenticated member
	rated := books.Group("")
	rated.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		rated.POST("/:id/ratings", c.RatingHandler.RateBook)
		rated.DELETE("/:id/ratings", c.RatingHandler.DeleteRating)
		rated.GET("/:id/ratings/me", c.RatingHandler.GetMyRating)
	}

	// Catalog management, librarian only
	staff := books.Group("")
	staff.Use(middleware.AuthMiddleware(c.JWTManager), middleware.LibrarianMiddleware())
	{
		staff.POST("", c.BookHandler.CreateBook)
		staff.PUT("/:id", c.BookHandler.UpdateBook)
		staff.PUT("/:id/capacity", c.BookHandler.UpdateCapacity)
		staff.PUT("/:id/status", c.BookHandler.UpdateStatus)
		staff.POST("/:id/cover", c.BookHandler.UploadCover)
		staff.DELETE("/:id", c.BookHandler.DeleteBook)
	}
}

// ========================================
// LOAN ROUTES
// ========================================
func setupLoanRoutes(v1 *gin.RouterGroup, c *container.Container) {
	loans := v1.Group("/loans")
	loans.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		loans.POST("/borrow", c.LoanHandler.BorrowBook)
		loans.GET("/my", c.LoanHandler.MyLoans)
		loans.GET("/:id", c.LoanHandler.GetLoan)
		loans.POST("/:id/return", c.LoanHandler.ReturnLoan)
		loans.POST("/:id/renew", c.LoanHandler.RenewLoan)

		// Circulation desk routes, librarian only
		staff := loans.Group("")
		staff.Use(middleware.LibrarianMiddleware())
		{
			staff.GET("", c.LoanHandler.ListLoans)
			staff.GET("/overdue", c.LoanHandler.OverdueLoans)
			staff.GET("/statistics", c.LoanHandler.Statistics)
			staff.POST("/promote-overdue", c.LoanHandler.PromoteOverdue)
			staff.POST("/:id/fine/pay", c.LoanHandler.PayFine)
		}
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
			"services":  gin.H{},
		}

		// Check database
		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
			health["status"] = "degraded"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = fmt.Sprintf("error: %v", err)
				health["status"] = "degraded"
			}
		}

		// Check redis. The cache is optional, so a failure never takes
		// the health endpoint down.
		redisStatus := "ok"
		if appCtx.Cache == nil {
			redisStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Cache.Ping(ctx); err != nil {
				redisStatus = fmt.Sprintf("error: %v", err)
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
