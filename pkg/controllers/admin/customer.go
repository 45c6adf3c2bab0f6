package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	views "lavapp/pkg/admin"
	"lavapp/pkg/utils"
)

// GetCustomers lists every customer.
func (h *Handler) GetCustomers(c *gin.Context) {
	view := views.NewCustomersView(h.store)
	if err := view.Load(c.Request.Context()); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": view.Customers()})
}

// GetCustomer returns a customer with their orders and total spent.
func (h *Handler) GetCustomer(c *gin.Context) {
	detail, err := views.LoadCustomerDetail(c.Request.Context(), h.store, h.store, c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if detail == nil {
		utils.NotFoundResponse(c, "Customer not found")
		return
	}
	c.JSON(http.StatusOK, detail)
}
