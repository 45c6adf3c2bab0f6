package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lavapp/pkg/models"
	"lavapp/pkg/repository"
	"lavapp/pkg/session"
	"lavapp/pkg/session/sessiontest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	router := gin.New()
	router.POST("/login", limiter.Handler(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Another address has its own limiter
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter_DisabledWhenRateNotPositive(t *testing.T) {
	limiter := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		require.True(t, limiter.getLimiter("ip").Allow())
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(10, 1)
	limiter.now = func() time.Time { return now }

	limiter.getLimiter("old")
	now = now.Add(20 * time.Minute)
	limiter.getLimiter("fresh")

	assert.Equal(t, 1, limiter.Cleanup(10*time.Minute))
	assert.Len(t, limiter.visitors, 1)
	assert.Contains(t, limiter.visitors, "fresh")
}

// clientRouter serves handlers behind the cookie session and ClientSession.
func clientRouter(t *testing.T, accounts *sessiontest.Accounts, register func(r *gin.RouterGroup)) *gin.Engine {
	t.Helper()
	manager := session.NewManager(func(string) session.Accounts { return accounts }, time.Hour)
	t.Cleanup(manager.Stop)

	router := gin.New()
	router.Use(sessions.Sessions("session", cookie.NewStore([]byte("test-secret"))))
	register(router.Group("", ClientSession(manager)))
	return router
}

func TestClientSession_ReusesClientAcrossRequests(t *testing.T) {
	accounts := sessiontest.New()
	var seen []*session.Client
	router := clientRouter(t, accounts, func(r *gin.RouterGroup) {
		r.GET("/client", func(c *gin.Context) {
			seen = append(seen, CurrentClient(c))
			c.Status(http.StatusNoContent)
		})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/client", nil))
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/client", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	router.ServeHTTP(httptest.NewRecorder(), req)

	// A browser without the cookie gets a client of its own
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/client", nil))

	require.Len(t, seen, 3)
	assert.Same(t, seen[0], seen[1])
	assert.NotSame(t, seen[0], seen[2])
}

func TestClientSession_AttachesAccessToken(t *testing.T) {
	accounts := sessiontest.New()
	accounts.SignIn(models.User{ID: "u1", Role: models.RoleCustomer})

	var token string
	router := clientRouter(t, accounts, func(r *gin.RouterGroup) {
		r.GET("/token", func(c *gin.Context) {
			token = repository.AccessTokenFrom(c.Request.Context())
			c.Status(http.StatusNoContent)
		})
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/token", nil))
	assert.Equal(t, "token-u1", token)
}

func TestRestrictTo(t *testing.T) {
	customer := models.User{ID: "u1", Name: "Ana", Role: models.RoleCustomer}
	admin := models.User{ID: "a1", Name: "Admin", Role: models.RoleAdmin}

	tests := []struct {
		name         string
		user         *models.User
		path         string
		wantStatus   int
		wantRedirect string
	}{
		{name: "anonymous admin area", path: "/admin", wantStatus: http.StatusUnauthorized, wantRedirect: AdminLoginPath},
		{name: "anonymous profile", path: "/profile", wantStatus: http.StatusUnauthorized, wantRedirect: LoginPath},
		{name: "customer in admin area", user: &customer, path: "/admin", wantStatus: http.StatusForbidden},
		{name: "admin in admin area", user: &admin, path: "/admin", wantStatus: http.StatusOK},
		{name: "customer profile", user: &customer, path: "/profile", wantStatus: http.StatusOK},
		{name: "admin profile", user: &admin, path: "/profile", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := sessiontest.New()
			if tt.user != nil {
				accounts.SignIn(*tt.user)
			}
			handled := 0
			router := clientRouter(t, accounts, func(r *gin.RouterGroup) {
				ok := func(c *gin.Context) {
					handled++
					c.JSON(http.StatusOK, gin.H{"id": CurrentUser(c).ID})
				}
				r.GET("/admin", RestrictToAdmin(), ok)
				r.GET("/profile", RestrictToCustomer(), ok)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, tt.wantStatus, w.Code)

			body := decodeMessage(t, w)
			if tt.wantRedirect != "" {
				assert.Equal(t, tt.wantRedirect, body["redirect"])
			}
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.user.ID, body["id"])
				assert.Equal(t, 1, handled)
			} else {
				assert.Zero(t, handled, "protected handler must not run")
			}
		})
	}
}

func TestAuthenticateThenAuthorize_ChainedSeparately(t *testing.T) {
	accounts := sessiontest.New()
	accounts.SignIn(models.User{ID: "u1", Role: models.RoleCustomer})

	handled := 0
	router := clientRouter(t, accounts, func(r *gin.RouterGroup) {
		admin := r.Group("/admin", AuthenticateUser(AdminLoginPath), AuthorizeRoles(models.RoleAdmin))
		admin.GET("/dashboard", func(c *gin.Context) {
			handled++
			c.JSON(http.StatusOK, gin.H{"secret": true})
		})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, handled)
	assert.NotContains(t, w.Body.String(), "secret")
}

func TestAuthenticateUser_WithoutClient(t *testing.T) {
	router := gin.New()
	router.GET("/private", AuthenticateUser(LoginPath), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, LoginPath, decodeMessage(t, w)["redirect"])
}

func TestRecoveryAndNotFound(t *testing.T) {
	router := gin.New()
	router.Use(RecoveryMiddleware(), RequestLogger())
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	router.NoRoute(NotFoundHandler())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decodeMessage(t, w)["message"])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found", decodeMessage(t, w)["message"])
}
