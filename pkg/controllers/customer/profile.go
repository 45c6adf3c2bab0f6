package customer

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lavapp/pkg/middleware"
	"lavapp/pkg/models"
	"lavapp/pkg/utils"
)

// GetProfile returns the signed-in customer and their orders, newest first.
func (h *Handler) GetProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "User not found."})
		return
	}

	orders, err := h.orders.ListOrdersByCustomer(c.Request.Context(), user.ID)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}

	c.JSON(http.StatusOK, gin.H{
		"user":   user,
		"orders": orders,
	})
}
