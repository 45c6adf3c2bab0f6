package customer

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lavapp/pkg/utils"
	"lavapp/pkg/wizard"
)

// GetOrder returns the wizard state of the current client.
func (h *Handler) GetOrder(c *gin.Context) {
	client := h.client(c)
	if client == nil {
		return
	}
	client.Lock()
	defer client.Unlock()

	c.JSON(http.StatusOK, gin.H{"wizard": client.Wizard.State()})
}

// SelectServiceType picks plans or one-off and opens item selection.
func (h *Handler) SelectServiceType(c *gin.Context) {
	var req struct {
		Type wizard.ServiceType `json:"type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "type is required")
		return
	}
	h.mutate(c, func(w *wizard.Wizard) error {
		return w.SelectServiceType(req.Type)
	})
}

// SwitchServiceType changes the path; a non-empty cart needs confirm.
func (h *Handler) SwitchServiceType(c *gin.Context) {
	var req struct {
		Type    wizard.ServiceType `json:"type" binding:"required"`
		Confirm bool               `json:"confirm"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "type is required")
		return
	}
	h.mutate(c, func(w *wizard.Wizard) error {
		return w.SwitchServiceType(req.Type, req.Confirm)
	})
}

// AddItem adds one unit of a catalog service to the cart.
func (h *Handler) AddItem(c *gin.Context) {
	var req struct {
		ServiceID string `json:"serviceId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "serviceId is required")
		return
	}

	service, err := h.services.GetService(c.Request.Context(), req.ServiceID)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if service == nil {
		utils.NotFoundResponse(c, "Service not found")
		return
	}

	h.mutate(c, func(w *wizard.Wizard) error {
		return w.AddItem(*service)
	})
}

// SetQuantity changes a cart line; zero or less removes it.
func (h *Handler) SetQuantity(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Quantity *int   `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "name and quantity are required")
		return
	}
	h.mutate(c, func(w *wizard.Wizard) error {
		return w.SetQuantity(req.Name, *req.Quantity)
	})
}

// GoToStep moves the wizard between its editable steps.
func (h *Handler) GoToStep(c *gin.Context) {
	var req struct {
		Step wizard.Step `json:"step" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "step is required")
		return
	}
	h.mutate(c, func(w *wizard.Wizard) error {
		return w.GoTo(req.Step)
	})
}

// SetPickup records the collection date and shift.
func (h *Handler) SetPickup(c *gin.Context) {
	var req wizard.Pickup
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid pickup details")
		return
	}
	h.mutate(c, func(w *wizard.Wizard) error {
		return w.SetPickup(req)
	})
}

// SubmitOrder creates the order for the signed-in user.
func (h *Handler) SubmitOrder(c *gin.Context) {
	client := h.client(c)
	if client == nil {
		return
	}

	ctx := c.Request.Context()
	user, err := client.Provider.Wait(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Session is still loading. Please try again."})
		return
	}

	client.Lock()
	defer client.Unlock()

	order, err := client.Wizard.Submit(ctx, user, h.orders, h.now())
	if err != nil {
		respondWizardError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully!",
		"order":   order,
		"wizard":  client.Wizard.State(),
	})
}

// ResetOrder starts a new order after a submission.
func (h *Handler) ResetOrder(c *gin.Context) {
	h.mutate(c, func(w *wizard.Wizard) error {
		return w.Reset()
	})
}

// mutate applies fn to the client's wizard and answers with the new state.
func (h *Handler) mutate(c *gin.Context, fn func(w *wizard.Wizard) error) {
	client := h.client(c)
	if client == nil {
		return
	}
	client.Lock()
	defer client.Unlock()

	if err := fn(client.Wizard); err != nil {
		respondWizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wizard": client.Wizard.State()})
}
