package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/kpsbusiness/paywall/services/common/middleware"
	"github.com/kpsbusiness/paywall/services/storefront-service/controllers"
)

func RegisterRoutes(r *gin.Engine, sc *controllers.StorefrontController, limiter *middleware.RateLimiter) {
	r.GET("/health", sc.Health)

	// Pages
	r.GET("/", sc.Home)
	r.GET("/fragments/dashboard", sc.DashboardFragment)
	r.POST("/logout", sc.Logout)

	// Payment widget callbacks
	checkout := r.Group("/checkout")
	if limiter != nil {
		checkout.Use(middleware.RateLimitMiddleware(limiter))
	}
	{
		checkout.POST("/initiate", sc.Initiate)
		checkout.POST("/finalize", sc.Finalize)
	}
}
