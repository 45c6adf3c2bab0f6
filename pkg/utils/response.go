package utils

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"lavapp/pkg/repository"
)

// Generic message shown for remote failures; details stay in the logs.
const RemoteFailureMessage = "The service is temporarily unavailable. Please try again."

// StatusFor maps a data-access error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, repository.ErrRemote):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse writes err as {"message": ...}. Remote and unexpected failures are
// logged and answered with a generic message.
func ErrorResponse(c *gin.Context, err error) {
	status := StatusFor(err)
	message := err.Error()

	switch status {
	case http.StatusBadRequest:
		message = strings.TrimPrefix(message, repository.ErrInvalidInput.Error()+": ")
	case http.StatusUnauthorized:
		message = "Invalid email or password."
	case http.StatusBadGateway:
		logrus.WithError(err).WithField("path", c.FullPath()).Error("❌ Remote call failed")
		message = RemoteFailureMessage
	default:
		logrus.WithError(err).WithField("path", c.FullPath()).Error("❌ Unexpected error")
		message = "Internal server error"
	}

	c.JSON(status, gin.H{"message": message})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, gin.H{"message": message})
}

// BadRequestResponse sends a 400 bad request response
func BadRequestResponse(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message})
}
