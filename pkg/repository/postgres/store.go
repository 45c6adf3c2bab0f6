package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lavapp/pkg/metrics"
	"lavapp/pkg/models"
	"lavapp/pkg/repository"
)

// Store implements repository.Store with gorm.
type Store struct {
	db      *gorm.DB
	timeout time.Duration
}

var _ repository.Store = (*Store)(nil)

func NewStore(db *gorm.DB, timeout time.Duration) *Store {
	return &Store{db: db, timeout: timeout}
}

// run executes fn under the store timeout and classifies its error.
func (s *Store) run(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	ctx, cancel := repository.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := fn(s.db.WithContext(ctx))
	metrics.RecordRemoteCall(op, err)
	if err != nil {
		return repository.RemoteError(op, err)
	}
	return nil
}

func toOrders(rows []orderRow) []models.Order {
	out := make([]models.Order, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out
}

func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	var rows []orderRow
	err := s.run(ctx, "orders.list", func(tx *gorm.DB) error {
		return tx.Order("created_at DESC").Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	return toOrders(rows), nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var rows []orderRow
	err := s.run(ctx, "orders.get", func(tx *gorm.DB) error {
		return tx.Where("order_uid = ?", id).Limit(1).Find(&rows).Error
	})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	order := rows[0].toModel()
	return &order, nil
}

func (s *Store) ListOrdersByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	var rows []orderRow
	err := s.run(ctx, "orders.by_customer", func(tx *gorm.DB) error {
		return tx.Where("customer_id = ?", customerID).Order("created_at DESC").Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	return toOrders(rows), nil
}

func (s *Store) CreateOrder(ctx context.Context, order models.NewOrder) (*models.Order, error) {
	if err := repository.ValidateNewOrder(order); err != nil {
		return nil, err
	}
	row := orderRow{
		CustomerID:        order.CustomerID,
		CustomerName:      order.CustomerName,
		Total:             order.Total,
		Items:             itemList(order.Items),
		Status:            models.OrderStatusPendingCollection,
		CollectionAddress: order.Address,
		CollectionTime:    order.CollectionTime,
	}
	err := s.run(ctx, "orders.create", func(tx *gorm.DB) error {
		return tx.Clauses(clause.Returning{}).Create(&row).Error
	})
	if err != nil {
		return nil, err
	}
	created := row.toModel()
	return &created, nil
}

// UpdateOrderStatus returns nil, nil when no order has the given id.
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if err := repository.ValidateStatus(status); err != nil {
		return nil, err
	}
	var row orderRow
	var affected int64
	err := s.run(ctx, "orders.update_status", func(tx *gorm.DB) error {
		res := tx.Model(&row).Clauses(clause.Returning{}).Where("order_uid = ?", id).Update("status", status)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil || affected == 0 {
		return nil, err
	}
	updated := row.toModel()
	return &updated, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var rows []customerRow
	err := s.run(ctx, "customers.list", func(tx *gorm.DB) error {
		return tx.Order("name ASC").Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.Customer, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *Store) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	var rows []customerRow
	err := s.run(ctx, "customers.get", func(tx *gorm.DB) error {
		return tx.Where("id = ?", id).Limit(1).Find(&rows).Error
	})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	customer := rows[0].toModel()
	return &customer, nil
}

func (s *Store) CreateCustomer(ctx context.Context, customer models.Customer) (*models.Customer, error) {
	if customer.ID == "" || customer.Email == "" {
		return nil, repository.InvalidInput("customer id and email are required")
	}
	joined := time.Now().UTC()
	if customer.JoinedDate != "" {
		parsed, err := time.Parse(models.DateLayout, customer.JoinedDate)
		if err != nil {
			return nil, repository.InvalidInput("joined date %q is not YYYY-MM-DD", customer.JoinedDate)
		}
		joined = parsed
	}
	row := customerRow{
		ID:         customer.ID,
		Name:       customer.Name,
		Email:      customer.Email,
		Phone:      customer.Phone,
		Address:    customer.Address,
		JoinedDate: joined,
	}
	err := s.run(ctx, "customers.create", func(tx *gorm.DB) error {
		return tx.Clauses(clause.Returning{}).Create(&row).Error
	})
	if err != nil {
		return nil, err
	}
	created := row.toModel()
	return &created, nil
}

func (s *Store) ListServices(ctx context.Context) ([]models.Service, error) {
	var rows []serviceRow
	err := s.run(ctx, "services.list", func(tx *gorm.DB) error {
		return tx.Order("created_at ASC").Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.Service, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *Store) GetService(ctx context.Context, id string) (*models.Service, error) {
	var rows []serviceRow
	err := s.run(ctx, "services.get", func(tx *gorm.DB) error {
		return tx.Where("id = ?", id).Limit(1).Find(&rows).Error
	})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	service := rows[0].toModel()
	return &service, nil
}

func (s *Store) CreateService(ctx context.Context, service models.Service) (*models.Service, error) {
	if err := repository.ValidateService(service); err != nil {
		return nil, err
	}
	row := serviceRow{
		Name:         service.Name,
		Description:  service.Description,
		Price:        service.Price,
		Category:     service.Category,
		Availability: service.Availability,
	}
	err := s.run(ctx, "services.create", func(tx *gorm.DB) error {
		return tx.Clauses(clause.Returning{}).Create(&row).Error
	})
	if err != nil {
		return nil, err
	}
	created := row.toModel()
	return &created, nil
}

// UpdateService returns nil, nil when no service has the given id.
func (s *Store) UpdateService(ctx context.Context, service models.Service) (*models.Service, error) {
	if service.ID == "" {
		return nil, repository.InvalidInput("service id is required")
	}
	if err := repository.ValidateService(service); err != nil {
		return nil, err
	}
	var row serviceRow
	var affected int64
	err := s.run(ctx, "services.update", func(tx *gorm.DB) error {
		res := tx.Model(&row).Clauses(clause.Returning{}).Where("id = ?", service.ID).Updates(map[string]interface{}{
			"name":         service.Name,
			"description":  service.Description,
			"price":        service.Price,
			"category":     service.Category,
			"availability": service.Availability,
		})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil || affected == 0 {
		return nil, err
	}
	updated := row.toModel()
	return &updated, nil
}

func (s *Store) DeleteService(ctx context.Context, id string) error {
	if id == "" {
		return repository.InvalidInput("service id is required")
	}
	return s.run(ctx, "services.delete", func(tx *gorm.DB) error {
		return tx.Where("id = ?", id).Delete(&serviceRow{}).Error
	})
}
