package routes

import (
	"github.com/gin-gonic/gin"

	"lavapp/pkg/controllers/auth"
	"lavapp/pkg/middleware"
)

// RegisterAuthRoutes registers all authentication routes
func RegisterAuthRoutes(router *gin.RouterGroup, limiter *middleware.RateLimiter) {
	authGroup := router.Group("/auth")
	{
		// Session-changing routes are rate limited per IP
		authGroup.POST("/login", limiter.Handler(), auth.Login)
		authGroup.POST("/admin/login", limiter.Handler(), auth.AdminLogin)
		authGroup.POST("/signup", limiter.Handler(), auth.Signup)
		authGroup.POST("/logout", limiter.Handler(), auth.Logout)

		authGroup.GET("/me", auth.Me)
	}
}
