package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"

	views "lavapp/pkg/admin"
	"lavapp/pkg/config"
	"lavapp/pkg/controllers/admin"
	"lavapp/pkg/controllers/customer"
	"lavapp/pkg/metrics"
	"lavapp/pkg/middleware"
	"lavapp/pkg/repository"
	"lavapp/pkg/session"
)

// clientCookieMaxAge keeps the client id long enough for stored tokens to be found again.
const clientCookieMaxAge = 30 * 24 * 60 * 60

// Deps are the long-lived services behind the HTTP surface.
type Deps struct {
	Config   *config.Config
	Manager  *session.Manager
	Store    repository.Store
	Settings *views.Settings
	Limiter  *middleware.RateLimiter
}

// NewRouter builds the gin engine with every route and middleware.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.RequestLogger())
	router.Use(metrics.Instrument())

	setupCORS(router, d.Config)

	// Session middleware holding the client id
	store := cookie.NewStore(sessionKey(d.Config))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   clientCookieMaxAge,
		HttpOnly: true,
		Secure:   d.Config.CookieSecure == "true",
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions("session", store))

	setupRoutes(router, d)
	router.NoRoute(middleware.NotFoundHandler())
	return router
}

// sessionKey returns the cookie signing key. Without SESSION_SECRET a random
// key is used, so cookies do not survive a restart.
func sessionKey(cfg *config.Config) []byte {
	if cfg.SessionSecret != "" {
		return []byte(cfg.SessionSecret)
	}
	logrus.Warn("⚠️ SESSION_SECRET not set, using a random key for this run")
	return securecookie.GenerateRandomKey(32)
}

// setupCORS configures CORS middleware
func setupCORS(router *gin.Engine, cfg *config.Config) {
	isProduction := cfg.IsProduction()

	// Default origins of the storefront and back office dev servers
	defaultOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}

	allowOrigins := defaultOrigins
	if isProduction && cfg.AllowedOrigins != "" {
		allowOrigins = parseOrigins(cfg.AllowedOrigins)
	}

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Range", "X-Content-Range"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if isProduction {
		corsConfig.AllowOrigins = allowOrigins
	} else {
		corsConfig.AllowOriginFunc = func(origin string) bool {
			return true // Allow all origins in development
		}
	}

	router.Use(cors.New(corsConfig))

	if isProduction {
		logrus.Infof("🔒 CORS enabled for origins: %v", allowOrigins)
	} else {
		logrus.Info("🔓 CORS enabled for all origins (development mode)")
	}
}

// parseOrigins splits comma-separated origin string
func parseOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// setupRoutes sets up all application routes
func setupRoutes(router *gin.Engine, d Deps) {
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Lavapp server is running...")
	})
	router.GET("/metrics", metrics.Handler())

	api := router.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"environment": d.Config.Environment,
			"backend":     d.Config.Backend,
		})
	})

	// Everything else runs on the browser client's state
	clientAPI := api.Group("", middleware.ClientSession(d.Manager))
	{
		RegisterAuthRoutes(clientAPI, d.Limiter)
		RegisterCustomerRoutes(clientAPI, customer.NewHandler(d.Store, d.Store))
		RegisterAdminRoutes(clientAPI, admin.NewHandler(d.Store, d.Settings))
	}
}
