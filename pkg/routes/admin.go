package routes

import (
	"github.com/gin-gonic/gin"

	"lavapp/pkg/controllers/admin"
	"lavapp/pkg/middleware"
)

// RegisterAdminRoutes registers the back office routes
func RegisterAdminRoutes(router *gin.RouterGroup, h *admin.Handler) {
	adminGroup := router.Group("/admin", middleware.RestrictToAdmin())

	adminGroup.GET("/dashboard", h.GetDashboard)

	// Orders
	adminGroup.GET("/orders", h.GetOrders)
	adminGroup.GET("/orders/:id", h.GetOrder)
	adminGroup.PUT("/orders/:id/status", h.UpdateOrderStatus)

	// Customers
	adminGroup.GET("/customers", h.GetCustomers)
	adminGroup.GET("/customers/:id", h.GetCustomer)

	// Services
	adminGroup.GET("/services", h.GetServices)
	adminGroup.POST("/services", h.CreateService)
	adminGroup.PUT("/services/:id", h.UpdateService)
	adminGroup.DELETE("/services/:id", h.DeleteService)

	// Settings
	adminGroup.GET("/settings", h.GetSettings)
	adminGroup.PUT("/settings", h.UpdateSettings)
}
