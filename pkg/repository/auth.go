package repository

import (
	"context"
	"sync"
	"time"
)

// AuthEvent names a change of the remote auth session.
type AuthEvent string

const (
	AuthEventSignedIn       AuthEvent = "SIGNED_IN"
	AuthEventSignedOut      AuthEvent = "SIGNED_OUT"
	AuthEventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
	AuthEventUserUpdated    AuthEvent = "USER_UPDATED"
)

// UserMetadata is the profile stored alongside an auth user.
type UserMetadata struct {
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// AuthUser is the auth provider's view of a user.
type AuthUser struct {
	ID       string       `json:"id"`
	Email    string       `json:"email"`
	Metadata UserMetadata `json:"user_metadata"`
}

// AuthSession is an authenticated session held by one client.
type AuthSession struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         AuthUser  `json:"user"`
}

// Expired reports whether the access token is past its expiry at now.
func (s *AuthSession) Expired(now time.Time) bool {
	return s == nil || (!s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt))
}

// AuthListener receives session changes. session is nil after sign-out.
type AuthListener func(event AuthEvent, session *AuthSession)

// Subscription cancels an auth listener.
type Subscription interface {
	Unsubscribe()
}

// AuthClient is a stateful auth client bound to one browser session.
type AuthClient interface {
	SignInWithPassword(ctx context.Context, email, password string) (*AuthSession, error)
	// SignUp registers a user. The session is nil when the provider requires email confirmation.
	SignUp(ctx context.Context, email, password string, metadata UserMetadata) (*AuthUser, *AuthSession, error)
	SignOut(ctx context.Context) error
	// GetSession returns nil, nil when no session is held. Expired sessions are refreshed.
	GetSession(ctx context.Context) (*AuthSession, error)
	OnAuthStateChange(listener AuthListener) Subscription
}

// AuthClientFactory builds the auth client of one browser session. key scopes token storage.
type AuthClientFactory func(key string) AuthClient

// Hub fans auth events out to listeners. Each delivery runs on its own goroutine.
type Hub struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]AuthListener
}

func NewHub() *Hub {
	return &Hub{listeners: make(map[int]AuthListener)}
}

// Subscribe registers listener until the returned subscription is cancelled.
func (h *Hub) Subscribe(listener AuthListener) Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = listener
	return &hubSubscription{hub: h, id: id}
}

// Emit delivers event to every current listener.
func (h *Hub) Emit(event AuthEvent, session *AuthSession) {
	h.mu.Lock()
	targets := make([]AuthListener, 0, len(h.listeners))
	for _, l := range h.listeners {
		targets = append(targets, l)
	}
	h.mu.Unlock()

	for _, l := range targets {
		go l(event, session)
	}
}

// Len returns the number of active listeners.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}

type hubSubscription struct {
	hub  *Hub
	id   int
	once sync.Once
}

func (s *hubSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.listeners, s.id)
		s.hub.mu.Unlock()
	})
}

// TokenStorage persists the auth session of each browser client.
type TokenStorage interface {
	// Load returns nil, nil when nothing is stored under key.
	Load(ctx context.Context, key string) (*AuthSession, error)
	Save(ctx context.Context, key string, session *AuthSession) error
	Delete(ctx context.Context, key string) error
}

// MemoryTokenStorage keeps sessions in process memory.
type MemoryTokenStorage struct {
	mu       sync.RWMutex
	sessions map[string]AuthSession
}

func NewMemoryTokenStorage() *MemoryTokenStorage {
	return &MemoryTokenStorage{sessions: make(map[string]AuthSession)}
}

func (m *MemoryTokenStorage) Load(_ context.Context, key string) (*AuthSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[key]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *MemoryTokenStorage) Save(_ context.Context, key string, session *AuthSession) error {
	if session == nil {
		return m.Delete(context.Background(), key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[key] = *session
	return nil
}

func (m *MemoryTokenStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
	return nil
}
