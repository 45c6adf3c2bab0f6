package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lavapp/pkg/models"
)

const userKey = "user"

// Login pages the client is sent to when a route needs a signed-in user.
const (
	LoginPath      = "/login"
	AdminLoginPath = "/admin/login"
)

// AuthenticateUser waits for the client's identity to resolve and rejects
// anonymous requests with a redirect hint.
func AuthenticateUser(redirect string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, redirect) {
			return
		}
		c.Next()
	}
}

// AuthorizeRoles middleware - check if user has required role
func AuthorizeRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authorize(c, roles...) {
			return
		}
		c.Next()
	}
}

// RestrictToAdmin - convenience middleware for the back office
func RestrictToAdmin() gin.HandlerFunc {
	return restrictTo(AdminLoginPath, models.RoleAdmin)
}

// RestrictToCustomer - convenience middleware for CUSTOMER only
func RestrictToCustomer() gin.HandlerFunc {
	return restrictTo(LoginPath, models.RoleCustomer)
}

func restrictTo(redirect string, roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, redirect) || !authorize(c, roles...) {
			return
		}
		c.Next()
	}
}

// authenticate stores the signed-in user on c. It aborts and answers the
// request when there is none. It never runs the rest of the chain.
func authenticate(c *gin.Context, redirect string) bool {
	client := CurrentClient(c)
	if client == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required.", "redirect": redirect})
		return false
	}

	user, err := client.Provider.Wait(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "Session is still loading. Please try again."})
		return false
	}
	if user == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required.", "redirect": redirect})
		return false
	}

	c.Set(userKey, user)
	return true
}

// authorize aborts with 403 unless the stored user has one of roles.
func authorize(c *gin.Context, roles ...models.Role) bool {
	user := CurrentUser(c)
	if user == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required."})
		return false
	}
	for _, role := range roles {
		if user.Role == role {
			return true
		}
	}
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Access denied. Insufficient permissions."})
	return false
}

// CurrentUser returns the identity set by AuthenticateUser.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(userKey)
	if !exists {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}
