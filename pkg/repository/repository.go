// Package repository defines the data-access ports of the application. Backends
// translate remote row naming into models; nothing else talks to the store.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lavapp/pkg/models"
)

var (
	// ErrInvalidInput marks a request rejected before any remote call.
	ErrInvalidInput = errors.New("invalid input")
	// ErrRemote marks a failure reported by, or on the way to, the remote store.
	ErrRemote = errors.New("remote store error")
	// ErrInvalidCredentials is returned by sign-in when the store rejects the password.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// DefaultTimeout applies to remote calls when no REMOTE_TIMEOUT is configured.
const DefaultTimeout = 15 * time.Second

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

// OrderRepository reads and writes orders.
type OrderRepository interface {
	// ListOrders returns all orders, newest first.
	ListOrders(ctx context.Context) ([]models.Order, error)
	// GetOrder returns nil, nil when the order does not exist.
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID string) ([]models.Order, error)
	CreateOrder(ctx context.Context, order models.NewOrder) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error)
}

// CustomerRepository reads and writes customer profiles.
type CustomerRepository interface {
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	// GetCustomer returns nil, nil when the customer does not exist.
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	CreateCustomer(ctx context.Context, customer models.Customer) (*models.Customer, error)
}

// ServiceRepository manages the service catalog.
type ServiceRepository interface {
	ListServices(ctx context.Context) ([]models.Service, error)
	// GetService returns nil, nil when the service does not exist.
	GetService(ctx context.Context, id string) (*models.Service, error)
	CreateService(ctx context.Context, service models.Service) (*models.Service, error)
	UpdateService(ctx context.Context, service models.Service) (*models.Service, error)
	DeleteService(ctx context.Context, id string) error
}

// Store bundles the table repositories of one backend.
type Store interface {
	OrderRepository
	CustomerRepository
	ServiceRepository
}

// RemoteError wraps err as a remote failure of op.
func RemoteError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrRemote, err)
}

// InvalidInput builds a validation error.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// WithTimeout bounds a remote call. A non-positive timeout falls back to DefaultTimeout.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

type accessTokenKey struct{}

// WithAccessToken attaches the caller's auth token so the store can apply row-level security.
func WithAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, accessTokenKey{}, token)
}

// AccessTokenFrom returns the token attached with WithAccessToken.
func AccessTokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(accessTokenKey{}).(string)
	return token
}
