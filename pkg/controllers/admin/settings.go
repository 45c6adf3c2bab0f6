package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	views "lavapp/pkg/admin"
	"lavapp/pkg/utils"
)

func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"settings": h.settings.Get()})
}

// UpdateSettings replaces the laundry details until restart.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req views.LaundrySettings
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid settings")
		return
	}

	updated, err := h.settings.Update(req)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Settings saved successfully",
		"settings": updated,
	})
}
