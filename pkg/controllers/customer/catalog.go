package customer

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lavapp/pkg/utils"
	"lavapp/pkg/wizard"
)

// GetCatalog lists the services, grouped into sections when a path is given.
func (h *Handler) GetCatalog(c *gin.Context) {
	t := wizard.ServiceType(c.Query("type"))
	if t != "" && !t.Valid() {
		utils.BadRequestResponse(c, "type must be plans or one-off")
		return
	}

	services, err := h.services.ListServices(c.Request.Context())
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	response := gin.H{"services": services}
	if t != "" {
		response["type"] = t
		response["sections"] = wizard.Sections(t, services)
	}
	c.JSON(http.StatusOK, response)
}
