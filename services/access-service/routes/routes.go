package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/kpsbusiness/paywall/services/access-service/controllers"
	"github.com/kpsbusiness/paywall/services/common/middleware"
)

// RegisterAccessRoutes mounts the /api surface. A nil limiter disables rate
// limiting.
func RegisterAccessRoutes(r *gin.Engine, ac *controllers.AccessController, limiter *middleware.RateLimiter) {
	api := r.Group("/api")
	if limiter != nil {
		api.Use(middleware.RateLimitMiddleware(limiter))
	}

	api.GET("/check-access", ac.CheckAccess)
	api.GET("/config", ac.Config)
	api.GET("/health", ac.Health)
	api.POST("/create-order", ac.CreateOrder)
	api.POST("/capture-order", ac.CaptureOrder)
	api.POST("/logout", ac.Logout)
}
