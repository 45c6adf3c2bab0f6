package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"lavapp/pkg/repository"
	"lavapp/pkg/session"
)

const (
	clientIDKey = "client_id"
	clientKey   = "client"
)

// ClientSession binds the request to its browser client. The client id lives in
// the cookie session and is minted on first visit. The client's access token is
// attached to the request context for the data-access layer.
func ClientSession(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		id, _ := sess.Get(clientIDKey).(string)
		if id == "" {
			id = uuid.NewString()
			sess.Set(clientIDKey, id)
			if err := sess.Save(); err != nil {
				logrus.WithError(err).Error("❌ Failed to save client session")
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
				c.Abort()
				return
			}
		}

		client := manager.Get(id)
		c.Set(clientKey, client)

		ctx := c.Request.Context()
		if token := client.Provider.AccessToken(ctx); token != "" {
			c.Request = c.Request.WithContext(repository.WithAccessToken(ctx, token))
		}
		c.Next()
	}
}

// CurrentClient returns the client set by ClientSession.
func CurrentClient(c *gin.Context) *session.Client {
	value, exists := c.Get(clientKey)
	if !exists {
		return nil
	}
	client, _ := value.(*session.Client)
	return client
}
