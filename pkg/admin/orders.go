// Package admin holds the back-office views: orders, customers, services,
// dashboard and settings. Each view fetches its collection through the
// data-access layer and works on that copy.
package admin

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"lavapp/pkg/models"
	"lavapp/pkg/repository"
)

// OrderFilter narrows the orders list. Empty fields match everything.
type OrderFilter struct {
	Status models.OrderStatus `form:"status" json:"status"`
	Query  string             `form:"q" json:"q"`
}

// Matches applies an exact status match and a case-insensitive substring
// search over the order id and customer name.
func (f OrderFilter) Matches(o models.Order) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(o.ID), q) || strings.Contains(strings.ToLower(o.CustomerName), q)
}

// FilterOrders keeps the orders matching f, in their original order.
func FilterOrders(orders []models.Order, f OrderFilter) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if f.Matches(o) {
			out = append(out, o)
		}
	}
	return out
}

// OrdersView is the admin orders list.
type OrdersView struct {
	repo repository.OrderRepository

	mu      sync.RWMutex
	loading bool
	orders  []models.Order
	filter  OrderFilter
}

func NewOrdersView(repo repository.OrderRepository) *OrdersView {
	return &OrdersView{repo: repo, orders: []models.Order{}}
}

// Load fetches every order. On failure the view is left empty and the error returned.
func (v *OrdersView) Load(ctx context.Context) error {
	v.mu.Lock()
	v.loading = true
	v.mu.Unlock()

	orders, err := v.repo.ListOrders(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = false
	if err != nil {
		logrus.WithError(err).Error("❌ Failed to load orders")
		v.orders = []models.Order{}
		return err
	}
	v.orders = orders
	return nil
}

func (v *OrdersView) Loading() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.loading
}

func (v *OrdersView) SetFilter(f OrderFilter) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter = f
}

// Visible returns the held orders after filtering.
func (v *OrdersView) Visible() []models.Order {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return FilterOrders(v.orders, v.filter)
}

// All returns every held order.
func (v *OrdersView) All() []models.Order {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]models.Order, len(v.orders))
	copy(out, v.orders)
	return out
}

// ChangeStatus updates one order remotely and, on success, replaces it in the
// held collection. A failed update leaves the held order untouched. Any status
// may follow any other.
func (v *OrdersView) ChangeStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	updated, err := v.repo.UpdateOrderStatus(ctx, id, status)
	if err != nil || updated == nil {
		return updated, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.orders {
		if v.orders[i].ID == updated.ID {
			v.orders[i] = *updated
			break
		}
	}
	return updated, nil
}

// LoadOrder returns one order, nil when it does not exist.
func LoadOrder(ctx context.Context, repo repository.OrderRepository, id string) (*models.Order, error) {
	return repo.GetOrder(ctx, id)
}
