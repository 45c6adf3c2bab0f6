// Package sessiontest provides an in-memory session.Accounts for handler tests.
package sessiontest

import (
	"context"
	"strings"
	"sync"

	"lavapp/pkg/models"
	"lavapp/pkg/repository"
)

type account struct {
	user     models.User
	password string
}

// Accounts keeps users and the signed-in identity in memory. One value is
// usually shared by every client of a test server.
type Accounts struct {
	mu       sync.Mutex
	hub      *repository.Hub
	accounts map[string]account
	current  *models.User

	// LogoutErr, when set, is returned by Logout.
	LogoutErr error
}

func New() *Accounts {
	return &Accounts{
		hub:      repository.NewHub(),
		accounts: make(map[string]account),
	}
}

// AddUser registers user with password.
func (a *Accounts) AddUser(user models.User, password string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.accounts[strings.ToLower(user.Email)] = account{user: user, password: password}
}

// SignIn makes user the held identity, as if a stored session existed.
func (a *Accounts) SignIn(user models.User) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = &user
}

func (a *Accounts) Login(_ context.Context, email, password string) (*models.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	acc, ok := a.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok || acc.password != password {
		return nil, repository.ErrInvalidCredentials
	}
	user := acc.user
	a.current = &user
	return &user, nil
}

func (a *Accounts) Signup(_ context.Context, details models.SignupDetails) (*models.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := strings.ToLower(details.Email)
	if _, exists := a.accounts[key]; exists {
		return nil, repository.InvalidInput("User already registered")
	}
	user := models.User{
		ID:      "u-" + key,
		Name:    details.Name,
		Email:   details.Email,
		Phone:   details.Phone,
		Address: details.Address,
		Role:    models.RoleCustomer,
	}
	a.accounts[key] = account{user: user, password: details.Password}
	a.current = &user
	return &user, nil
}

func (a *Accounts) Logout(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.LogoutErr != nil {
		return a.LogoutErr
	}
	a.current = nil
	return nil
}

func (a *Accounts) SessionUser(context.Context) (*models.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return nil, nil
	}
	user := *a.current
	return &user, nil
}

func (a *Accounts) AccessToken(context.Context) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return ""
	}
	return "token-" + a.current.ID
}

func (a *Accounts) OnAuthStateChange(listener repository.AuthListener) repository.Subscription {
	return a.hub.Subscribe(listener)
}
