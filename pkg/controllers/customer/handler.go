// Package customer serves the storefront: the service catalog, the order
// wizard of the current browser client and the customer's profile.
package customer

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"lavapp/pkg/middleware"
	"lavapp/pkg/repository"
	"lavapp/pkg/session"
	"lavapp/pkg/utils"
	"lavapp/pkg/wizard"
)

// Handler serves the customer routes.
type Handler struct {
	services repository.ServiceRepository
	orders   repository.OrderRepository
	now      func() time.Time
}

func NewHandler(services repository.ServiceRepository, orders repository.OrderRepository) *Handler {
	return &Handler{services: services, orders: orders, now: time.Now}
}

func (h *Handler) client(c *gin.Context) *session.Client {
	client := middleware.CurrentClient(c)
	if client == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
	return client
}

// respondWizardError maps order flow errors to HTTP responses.
func respondWizardError(c *gin.Context, err error) {
	if fields := wizard.FieldErrors(err); len(fields) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Please choose a valid pickup date and shift.",
			"fields":  fields,
		})
		return
	}

	switch {
	case errors.Is(err, wizard.ErrLoginRequired):
		c.JSON(http.StatusUnauthorized, gin.H{
			"message":  "Please log in or sign up to finish your order.",
			"redirect": middleware.LoginPath,
		})
	case errors.Is(err, wizard.ErrConfirmationRequired):
		c.JSON(http.StatusConflict, gin.H{
			"message":              err.Error(),
			"confirmationRequired": true,
		})
	case errors.Is(err, wizard.ErrSubmitFailed):
		status := http.StatusBadGateway
		if errors.Is(err, repository.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		logrus.WithError(err).Error("❌ Order submission failed")
		c.JSON(status, gin.H{"message": wizard.ErrSubmitFailed.Error()})
	case errors.Is(err, wizard.ErrEmptyCart),
		errors.Is(err, wizard.ErrInvalidServiceType),
		errors.Is(err, wizard.ErrServiceTypeRequired),
		errors.Is(err, wizard.ErrInvalidStep),
		errors.Is(err, wizard.ErrItemNotInCart),
		errors.Is(err, wizard.ErrAlreadySubmitted):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	default:
		utils.ErrorResponse(c, err)
	}
}
