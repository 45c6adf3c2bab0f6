package routes

import (
	"github.com/gin-gonic/gin"

	"lavapp/pkg/controllers/customer"
	"lavapp/pkg/middleware"
)

// RegisterCustomerRoutes registers the storefront and order wizard routes
func RegisterCustomerRoutes(router *gin.RouterGroup, h *customer.Handler) {
	router.GET("/catalog", h.GetCatalog)

	orderGroup := router.Group("/order")
	{
		orderGroup.GET("", h.GetOrder)
		orderGroup.POST("/type", h.SelectServiceType)
		orderGroup.POST("/switch-type", h.SwitchServiceType)
		orderGroup.POST("/items", h.AddItem)
		orderGroup.PUT("/items", h.SetQuantity)
		orderGroup.POST("/step", h.GoToStep)
		orderGroup.PUT("/pickup", h.SetPickup)
		orderGroup.POST("/submit", h.SubmitOrder)
		orderGroup.POST("/reset", h.ResetOrder)
	}

	router.GET("/profile", middleware.RestrictToCustomer(), h.GetProfile)
}
