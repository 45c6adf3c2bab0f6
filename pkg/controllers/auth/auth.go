package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"lavapp/pkg/middleware"
	"lavapp/pkg/models"
	"lavapp/pkg/repository"
	"lavapp/pkg/utils"
)

const (
	invalidLoginMessage      = "Invalid email or password."
	invalidAdminLoginMessage = "Invalid credentials or not an admin account."
)

type credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func currentClient(c *gin.Context) bool {
	if middleware.CurrentClient(c) == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return false
	}
	return true
}

// Login signs a customer (or admin) in on the current client.
func Login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}
	if !currentClient(c) {
		return
	}

	user, err := middleware.CurrentClient(c).Provider.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": invalidLoginMessage})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    user,
	})
}

// AdminLogin signs in and keeps the session only for the admin account.
func AdminLogin(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}
	if !currentClient(c) {
		return
	}

	provider := middleware.CurrentClient(c).Provider
	user, err := provider.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": invalidAdminLoginMessage})
			return
		}
		utils.ErrorResponse(c, err)
		return
	}
	if !user.IsAdmin() {
		if user != nil {
			if err := provider.Logout(c.Request.Context()); err != nil {
				logrus.WithError(err).Warn("⚠️ Could not sign out non-admin user")
			}
		}
		c.JSON(http.StatusUnauthorized, gin.H{"message": invalidAdminLoginMessage})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    user,
	})
}

// Signup registers a customer account and its profile row.
func Signup(c *gin.Context) {
	var req struct {
		Name            string `json:"name" binding:"required"`
		Email           string `json:"email" binding:"required,email"`
		Phone           string `json:"phone"`
		Address         string `json:"address"`
		Password        string `json:"password" binding:"required"`
		ConfirmPassword string `json:"confirmPassword" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name, email, password, and password confirmation are required"})
		return
	}

	if req.Password != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Passwords do not match."})
		return
	}
	if !currentClient(c) {
		return
	}

	provider := middleware.CurrentClient(c).Provider
	user, err := provider.Signup(c.Request.Context(), models.SignupDetails{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, repository.ErrInvalidInput) && strings.Contains(strings.ToLower(err.Error()), "already registered") {
			c.JSON(http.StatusBadRequest, gin.H{"message": "An account with this email already exists."})
			return
		}
		utils.ErrorResponse(c, err)
		return
	}

	// No session means the backend wants the address confirmed first.
	signedIn := provider.User() != nil
	message := "Account created successfully"
	if !signedIn {
		message = "Account created. Please confirm your email before logging in."
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  message,
		"user":     user,
		"signedIn": signedIn,
	})
}

// Logout ends the current client's session.
func Logout(c *gin.Context) {
	if !currentClient(c) {
		return
	}
	if err := middleware.CurrentClient(c).Provider.Logout(c.Request.Context()); err != nil {
		utils.ErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me reports the current identity without waiting for the first lookup.
func Me(c *gin.Context) {
	if !currentClient(c) {
		return
	}
	user, loading := middleware.CurrentClient(c).Provider.Current()
	c.JSON(http.StatusOK, gin.H{
		"user":            user,
		"loading":         loading,
		"isAuthenticated": user != nil,
	})
}
