package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	views "lavapp/pkg/admin"
	"lavapp/pkg/models"
	"lavapp/pkg/utils"
)

// GetOrders lists orders, optionally filtered by status and a search query.
func (h *Handler) GetOrders(c *gin.Context) {
	var filter views.OrderFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.BadRequestResponse(c, "Invalid filter")
		return
	}
	if filter.Status != "" && !filter.Status.Valid() {
		utils.BadRequestResponse(c, "Unknown order status: "+string(filter.Status))
		return
	}

	view := views.NewOrdersView(h.store)
	if err := view.Load(c.Request.Context()); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	view.SetFilter(filter)
	visible := view.Visible()

	c.JSON(http.StatusOK, gin.H{
		"orders":   visible,
		"count":    len(visible),
		"total":    len(view.All()),
		"statuses": models.OrderStatuses,
	})
}

// GetOrder returns one order.
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := views.LoadOrder(c.Request.Context(), h.store, c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if order == nil {
		utils.NotFoundResponse(c, "Order not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// UpdateOrderStatus moves an order to any known status.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "status is required")
		return
	}
	if !req.Status.Valid() {
		utils.BadRequestResponse(c, "Unknown order status: "+string(req.Status))
		return
	}

	view := views.NewOrdersView(h.store)
	updated, err := view.ChangeStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if updated == nil {
		utils.NotFoundResponse(c, "Order not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"order":   updated,
	})
}
