package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	views "lavapp/pkg/admin"
	"lavapp/pkg/utils"
)

// GetDashboard returns the headline stats, weekly sales and recent orders.
func (h *Handler) GetDashboard(c *gin.Context) {
	dashboard, err := views.LoadDashboard(c.Request.Context(), h.store, h.store, h.now())
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
