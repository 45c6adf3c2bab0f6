package supabase

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tidwall/gjson"

	"lavapp/pkg/metrics"
	"lavapp/pkg/repository"
)

// expiryMargin refreshes tokens slightly before they actually expire.
const expiryMargin = 10 * time.Second

// AuthClient talks to GoTrue on behalf of one browser client. The session is
// kept in TokenStorage under key.
type AuthClient struct {
	client  *Client
	storage repository.TokenStorage
	key     string
	hub     *repository.Hub
	now     func() time.Time

	// serializes refreshes of the stored session
	mu sync.Mutex
}

var _ repository.AuthClient = (*AuthClient)(nil)

func NewAuthClient(client *Client, storage repository.TokenStorage, key string) *AuthClient {
	return &AuthClient{
		client:  client,
		storage: storage,
		key:     key,
		hub:     repository.NewHub(),
		now:     time.Now,
	}
}

// AuthFactory returns a factory producing one AuthClient per browser client.
func AuthFactory(client *Client, storage repository.TokenStorage) repository.AuthClientFactory {
	return func(key string) repository.AuthClient {
		return NewAuthClient(client, storage, key)
	}
}

func (a *AuthClient) auth(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	return a.client.request(ctx, method, "/auth/v1"+path, query, body, nil)
}

func (a *AuthClient) SignInWithPassword(ctx context.Context, email, password string) (*repository.AuthSession, error) {
	resp, err := a.auth(ctx, http.MethodPost, "/token", url.Values{"grant_type": {"password"}}, map[string]string{
		"email":    email,
		"password": password,
	})
	metrics.RecordRemoteCall("auth.sign_in", err)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusUnauthorized) {
			return nil, repository.ErrInvalidCredentials
		}
		return nil, repository.RemoteError("auth.sign_in", err)
	}

	session := a.parseSession(resp.Body)
	if session == nil {
		return nil, nil
	}
	if err := a.storage.Save(ctx, a.key, session); err != nil {
		return nil, repository.RemoteError("auth.store_session", err)
	}
	a.hub.Emit(repository.AuthEventSignedIn, session)
	return session, nil
}

func (a *AuthClient) SignUp(ctx context.Context, email, password string, metadata repository.UserMetadata) (*repository.AuthUser, *repository.AuthSession, error) {
	resp, err := a.auth(ctx, http.MethodPost, "/signup", nil, map[string]any{
		"email":    email,
		"password": password,
		"data":     metadata,
	})
	metrics.RecordRemoteCall("auth.sign_up", err)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
			return nil, nil, repository.InvalidInput("%s", apiErr.Message)
		}
		return nil, nil, repository.RemoteError("auth.sign_up", err)
	}

	// With email confirmation on, GoTrue answers with the bare user instead of a session.
	session := a.parseSession(resp.Body)
	if session == nil {
		return parseUser(gjson.ParseBytes(resp.Body)), nil, nil
	}
	if err := a.storage.Save(ctx, a.key, session); err != nil {
		return nil, nil, repository.RemoteError("auth.store_session", err)
	}
	a.hub.Emit(repository.AuthEventSignedIn, session)
	user := session.User
	return &user, session, nil
}

func (a *AuthClient) SignOut(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	session, err := a.storage.Load(ctx, a.key)
	if err != nil {
		return repository.RemoteError("auth.load_session", err)
	}
	if session != nil {
		_, err := a.auth(repository.WithAccessToken(ctx, session.AccessToken), http.MethodPost, "/logout", nil, nil)
		metrics.RecordRemoteCall("auth.sign_out", err)
		// an already revoked or expired token still counts as signed out
		if err != nil && !isClientError(err) {
			return repository.RemoteError("auth.sign_out", err)
		}
	}
	if err := a.storage.Delete(ctx, a.key); err != nil {
		return repository.RemoteError("auth.delete_session", err)
	}
	a.hub.Emit(repository.AuthEventSignedOut, nil)
	return nil
}

func (a *AuthClient) GetSession(ctx context.Context) (*repository.AuthSession, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	session, err := a.storage.Load(ctx, a.key)
	if err != nil {
		return nil, repository.RemoteError("auth.load_session", err)
	}
	if session == nil || !session.Expired(a.now().Add(expiryMargin)) {
		return session, nil
	}
	if session.RefreshToken == "" {
		return nil, a.dropSession(ctx)
	}

	resp, err := a.auth(ctx, http.MethodPost, "/token", url.Values{"grant_type": {"refresh_token"}}, map[string]string{
		"refresh_token": session.RefreshToken,
	})
	metrics.RecordRemoteCall("auth.refresh", err)
	if err != nil {
		if isClientError(err) {
			return nil, a.dropSession(ctx)
		}
		return nil, repository.RemoteError("auth.refresh", err)
	}
	refreshed := a.parseSession(resp.Body)
	if refreshed == nil {
		return nil, a.dropSession(ctx)
	}
	if err := a.storage.Save(ctx, a.key, refreshed); err != nil {
		return nil, repository.RemoteError("auth.store_session", err)
	}
	a.hub.Emit(repository.AuthEventTokenRefreshed, refreshed)
	return refreshed, nil
}

func (a *AuthClient) OnAuthStateChange(listener repository.AuthListener) repository.Subscription {
	return a.hub.Subscribe(listener)
}

// dropSession forgets a session the provider no longer accepts.
func (a *AuthClient) dropSession(ctx context.Context) error {
	if err := a.storage.Delete(ctx, a.key); err != nil {
		return repository.RemoteError("auth.delete_session", err)
	}
	a.hub.Emit(repository.AuthEventSignedOut, nil)
	return nil
}

// parseSession reads a GoTrue token response. It returns nil when the body carries no access token.
func (a *AuthClient) parseSession(body []byte) *repository.AuthSession {
	res := gjson.ParseBytes(body)
	token := res.Get("access_token").String()
	if token == "" {
		return nil
	}
	user := parseUser(res.Get("user"))
	if user == nil {
		return nil
	}

	var expiresAt time.Time
	switch {
	case res.Get("expires_at").Exists():
		expiresAt = time.Unix(res.Get("expires_at").Int(), 0)
	case res.Get("expires_in").Exists():
		expiresAt = a.now().Add(time.Duration(res.Get("expires_in").Int()) * time.Second)
	default:
		expiresAt = tokenExpiry(token)
	}

	return &repository.AuthSession{
		AccessToken:  token,
		RefreshToken: res.Get("refresh_token").String(),
		ExpiresAt:    expiresAt,
		User:         *user,
	}
}

func parseUser(res gjson.Result) *repository.AuthUser {
	id := res.Get("id").String()
	if id == "" {
		return nil
	}
	meta := res.Get("user_metadata")
	return &repository.AuthUser{
		ID:    id,
		Email: res.Get("email").String(),
		Metadata: repository.UserMetadata{
			Name:    meta.Get("name").String(),
			Phone:   meta.Get("phone").String(),
			Address: meta.Get("address").String(),
		},
	}
}

// tokenExpiry reads the exp claim without verifying the signature. GoTrue
// verifies its own tokens; this only schedules the refresh.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

func isClientError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500
}
