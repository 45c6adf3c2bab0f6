package supabase

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"lavapp/pkg/metrics"
	"lavapp/pkg/models"
	"lavapp/pkg/repository"
)

// Store implements repository.Store over PostgREST.
type Store struct {
	client *Client
}

var _ repository.Store = (*Store)(nil)

var errEmptyRepresentation = errors.New("no row returned")

func NewStore(client *Client) *Store {
	return &Store{client: client}
}

func observe(op string, err error) error {
	metrics.RecordRemoteCall(op, err)
	if err != nil {
		return repository.RemoteError(op, err)
	}
	return nil
}

func (s *Store) orders(ctx context.Context, op string, q *Query) ([]models.Order, error) {
	resp, err := s.client.rest(ctx, http.MethodGet, tableOrders, q.Values(), nil)
	var rows []orderRow
	if err == nil {
		err = resp.JSON(&rows)
	}
	if err := observe(op, err); err != nil {
		return nil, err
	}
	out := make([]models.Order, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.orders(ctx, "orders.list", NewQuery().Select("*").Order("created_at", false))
}

func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	orders, err := s.orders(ctx, "orders.get", NewQuery().Select("*").Eq("order_uid", id))
	if err != nil || len(orders) == 0 {
		return nil, err
	}
	return &orders[0], nil
}

func (s *Store) ListOrdersByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	return s.orders(ctx, "orders.by_customer", NewQuery().Select("*").Eq("customer_id", customerID).Order("created_at", false))
}

func (s *Store) CreateOrder(ctx context.Context, order models.NewOrder) (*models.Order, error) {
	if err := repository.ValidateNewOrder(order); err != nil {
		return nil, err
	}
	resp, err := s.client.rest(ctx, http.MethodPost, tableOrders, nil, newOrderInsert(order))
	var rows []orderRow
	if err == nil {
		err = resp.JSON(&rows)
	}
	if err := observe("orders.create", err); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, repository.RemoteError("orders.create", errEmptyRepresentation)
	}
	created := rows[0].toModel()
	return &created, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if err := repository.ValidateStatus(status); err != nil {
		return nil, err
	}
	resp, err := s.client.rest(ctx, http.MethodPatch, tableOrders, NewQuery().Eq("order_uid", id).Values(), map[string]any{"status": status})
	var rows []orderRow
	if err == nil {
		err = resp.JSON(&rows)
	}
	if err := observe("orders.update_status", err); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	updated := rows[0].toModel()
	return &updated, nil
}

func (s *Store) customers(ctx context.Context, op string, q *Query) ([]models.Customer, error) {
	resp, err := s.client.rest(ctx, http.MethodGet, tableCustomers, q.Values(), nil)
	var rows []customerRow
	if err == nil {
		err = resp.JSON(&rows)
	}
	if err := observe(op, err); err != nil {
		return nil, err
	}
	out := make([]models.Customer, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return s.customers(ctx, "customers.list", NewQuery().Select("*"))
}

func (s *Store) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	customers, err := s.customers(ctx, "customers.get", NewQuery().Select("*").Eq("id", id))
	if err != nil || len(customers) == 0 {
		return nil, err
	}
	return &customers[0], nil
}

func (s *Store) CreateCustomer(ctx context.Context, customer models.Customer) (*models.Customer, error) {
	if customer.ID == "" || customer.Email == "" {
		return nil, repository.InvalidInput("customer id and email are required")
	}
	resp, err := s.client.rest(ctx, http.MethodPost, tableCustomers, nil, newCustomerRow(customer))
	var rows []customerRow
	if err == nil {
		err = resp.JSON(&rows)
	}
	if err := observe("customers.create", err); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, repository.RemoteError("customers.create", errEmptyRepresentation)
	}
	created := rows[0].toModel()
	return &created, nil
}

func (s *Store) services(ctx context.Context, op string, q *Query) ([]models.Service, error) {
	resp, err := s.client.rest(ctx, http.MethodGet, tableServices, q.Values(), nil)
	var rows []serviceRow
	if err == nil {
		err = resp.JSON(&rows)
	}
	if err := observe(op, err); err != nil {
		return nil, err
	}
	out := make([]models.Service, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *Store) ListServices(ctx context.Context) ([]models.Service, error) {
	return s.services(ctx, "services.list", NewQuery().Select("*"))
}

func (s *Store) GetService(ctx context.Context, id string) (*models.Service, error) {
	services, err := s.services(ctx, "services.get", NewQuery().Select("*").Eq("id", id))
	if err != nil || len(services) == 0 {
		return nil, err
	}
	return &services[0], nil
}

func (s *Store) writeService(ctx context.Context, op, method string, query *Query, service models.Service) (*models.Service, error) {
	if err := repository.ValidateService(service); err != nil {
		return nil, err
	}
	var values url.Values
	if query != nil {
		values = query.Values()
	}
	resp, err := s.client.rest(ctx, method, tableServices, values, newServiceRow(service))
	var rows []serviceRow
	if err == nil {
		err = resp.JSON(&rows)
	}
	if err := observe(op, err); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	out := rows[0].toModel()
	return &out, nil
}

func (s *Store) CreateService(ctx context.Context, service models.Service) (*models.Service, error) {
	service.ID = ""
	created, err := s.writeService(ctx, "services.create", http.MethodPost, nil, service)
	if err == nil && created == nil {
		return nil, repository.RemoteError("services.create", errEmptyRepresentation)
	}
	return created, err
}

// UpdateService returns nil, nil when no service has the given id.
func (s *Store) UpdateService(ctx context.Context, service models.Service) (*models.Service, error) {
	if service.ID == "" {
		return nil, repository.InvalidInput("service id is required")
	}
	return s.writeService(ctx, "services.update", http.MethodPatch, NewQuery().Eq("id", service.ID), service)
}

func (s *Store) DeleteService(ctx context.Context, id string) error {
	if id == "" {
		return repository.InvalidInput("service id is required")
	}
	_, err := s.client.rest(ctx, http.MethodDelete, tableServices, NewQuery().Eq("id", id).Values(), nil)
	return observe("services.delete", err)
}
