package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	views "lavapp/pkg/admin"
	"lavapp/pkg/models"
	"lavapp/pkg/utils"
)

func catalogResponse(view *views.ServicesView) gin.H {
	return gin.H{
		"services": view.Services(),
		"groups":   views.GroupByCategory(view.Services()),
	}
}

// GetServices lists the catalog grouped by category.
func (h *Handler) GetServices(c *gin.Context) {
	view := views.NewServicesView(h.store)
	if err := view.Load(c.Request.Context()); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogResponse(view))
}

// CreateService adds a catalog entry.
func (h *Handler) CreateService(c *gin.Context) {
	var req models.Service
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid service details")
		return
	}
	req.ID = ""

	view := views.NewServicesView(h.store)
	created, err := view.Create(c.Request.Context(), req)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	response := catalogResponse(view)
	response["message"] = "Service created successfully"
	response["service"] = created
	c.JSON(http.StatusCreated, response)
}

// UpdateService replaces a catalog entry.
func (h *Handler) UpdateService(c *gin.Context) {
	var req models.Service
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid service details")
		return
	}
	req.ID = c.Param("id")

	view := views.NewServicesView(h.store)
	updated, err := view.Update(c.Request.Context(), req)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if updated == nil {
		utils.NotFoundResponse(c, "Service not found")
		return
	}

	response := catalogResponse(view)
	response["message"] = "Service updated successfully"
	response["service"] = updated
	c.JSON(http.StatusOK, response)
}

// DeleteService removes a catalog entry.
func (h *Handler) DeleteService(c *gin.Context) {
	view := views.NewServicesView(h.store)
	if err := view.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	response := catalogResponse(view)
	response["message"] = "Service deleted successfully"
	c.JSON(http.StatusOK, response)
}
