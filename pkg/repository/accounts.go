package repository

import (
	"context"
	"fmt"
	"strings"

	"lavapp/pkg/models"
)

// Accounts turns auth sessions into application identities for one client.
type Accounts struct {
	auth       AuthClient
	customers  CustomerRepository
	adminEmail string
}

func NewAccounts(auth AuthClient, customers CustomerRepository, adminEmail string) *Accounts {
	return &Accounts{
		auth:       auth,
		customers:  customers,
		adminEmail: strings.ToLower(strings.TrimSpace(adminEmail)),
	}
}

// RoleFor applies the identity rule: the configured admin email is the admin, everyone else a customer.
func RoleFor(email, adminEmail string) models.Role {
	if adminEmail != "" && strings.EqualFold(strings.TrimSpace(email), adminEmail) {
		return models.RoleAdmin
	}
	return models.RoleCustomer
}

// UserFromSession maps an auth session to an identity, or nil when there is none.
func (a *Accounts) UserFromSession(session *AuthSession) *models.User {
	if session == nil || session.User.ID == "" {
		return nil
	}
	u := session.User
	name := u.Metadata.Name
	if name == "" {
		name = u.Email
	}
	return &models.User{
		ID:      u.ID,
		Name:    name,
		Email:   u.Email,
		Phone:   u.Metadata.Phone,
		Address: u.Metadata.Address,
		Role:    RoleFor(u.Email, a.adminEmail),
	}
}

// Login signs in with a password. A nil user with nil error means the provider returned no session.
func (a *Accounts) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, InvalidInput("email and password are required")
	}
	session, err := a.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return a.UserFromSession(session), nil
}

// Signup registers the auth user and then the matching customers row.
func (a *Accounts) Signup(ctx context.Context, details models.SignupDetails) (*models.User, error) {
	details.Email = strings.TrimSpace(details.Email)
	if strings.TrimSpace(details.Name) == "" || details.Email == "" || details.Password == "" {
		return nil, InvalidInput("name, email and password are required")
	}

	user, _, err := a.auth.SignUp(ctx, details.Email, details.Password, UserMetadata{
		Name:    details.Name,
		Phone:   details.Phone,
		Address: details.Address,
	})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	if _, err := a.customers.CreateCustomer(ctx, models.Customer{
		ID:      user.ID,
		Name:    details.Name,
		Email:   details.Email,
		Phone:   details.Phone,
		Address: details.Address,
	}); err != nil {
		return nil, fmt.Errorf("create customer profile: %w", err)
	}

	return &models.User{
		ID:      user.ID,
		Name:    details.Name,
		Email:   user.Email,
		Phone:   details.Phone,
		Address: details.Address,
		Role:    models.RoleCustomer,
	}, nil
}

func (a *Accounts) Logout(ctx context.Context) error {
	return a.auth.SignOut(ctx)
}

// SessionUser resolves the held session into an identity.
func (a *Accounts) SessionUser(ctx context.Context) (*models.User, error) {
	session, err := a.auth.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	return a.UserFromSession(session), nil
}

// AccessToken returns the held session's token, or "" when signed out.
func (a *Accounts) AccessToken(ctx context.Context) string {
	session, err := a.auth.GetSession(ctx)
	if err != nil || session == nil {
		return ""
	}
	return session.AccessToken
}

func (a *Accounts) OnAuthStateChange(listener AuthListener) Subscription {
	return a.auth.OnAuthStateChange(listener)
}
