package supabase

import (
	"time"

	"github.com/shopspring/decimal"

	"lavapp/pkg/models"
)

// Table names
const (
	tableOrders    = "orders"
	tableCustomers = "customers"
	tableServices  = "services"
)

type orderRow struct {
	OrderUID          string             `json:"order_uid"`
	CustomerID        string             `json:"customer_id"`
	CustomerName      string             `json:"customer_name"`
	Total             decimal.Decimal    `json:"total"`
	Items             []models.OrderItem `json:"items"`
	Status            models.OrderStatus `json:"status"`
	CollectionAddress string             `json:"collection_address"`
	CollectionTime    string             `json:"collection_time"`
	DeliveryAddress   *string            `json:"delivery_address"`
	DeliveryTime      *string            `json:"delivery_time"`
	CreatedAt         time.Time          `json:"created_at"`
}

type orderInsert struct {
	CustomerID        string             `json:"customer_id"`
	CustomerName      string             `json:"customer_name"`
	Total             decimal.Decimal    `json:"total"`
	Items             []models.OrderItem `json:"items"`
	Status            models.OrderStatus `json:"status"`
	CollectionAddress string             `json:"collection_address"`
	CollectionTime    string             `json:"collection_time"`
}

func (r orderRow) toModel() models.Order {
	o := models.Order{
		ID:                r.OrderUID,
		CustomerID:        r.CustomerID,
		CustomerName:      r.CustomerName,
		CreatedAt:         r.CreatedAt,
		Date:              r.CreatedAt.UTC().Format(models.DateLayout),
		Total:             r.Total,
		Status:            r.Status,
		Items:             r.Items,
		CollectionAddress: r.CollectionAddress,
		CollectionTime:    r.CollectionTime,
	}
	if o.Items == nil {
		o.Items = []models.OrderItem{}
	}
	if r.DeliveryAddress != nil {
		o.DeliveryAddress = *r.DeliveryAddress
	}
	if r.DeliveryTime != nil {
		o.DeliveryTime = *r.DeliveryTime
	}
	return o
}

func newOrderInsert(o models.NewOrder) orderInsert {
	return orderInsert{
		CustomerID:        o.CustomerID,
		CustomerName:      o.CustomerName,
		Total:             o.Total,
		Items:             o.Items,
		Status:            models.OrderStatusPendingCollection,
		CollectionAddress: o.Address,
		CollectionTime:    o.CollectionTime,
	}
}

type customerRow struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	JoinedDate string `json:"joined_date,omitempty"`
}

func (r customerRow) toModel() models.Customer {
	joined := r.JoinedDate
	// timestamp columns come back with a time part
	if len(joined) > len(models.DateLayout) {
		joined = joined[:len(models.DateLayout)]
	}
	return models.Customer{
		ID:         r.ID,
		Name:       r.Name,
		Email:      r.Email,
		Phone:      r.Phone,
		Address:    r.Address,
		JoinedDate: joined,
	}
}

func newCustomerRow(c models.Customer) customerRow {
	return customerRow{
		ID:         c.ID,
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		JoinedDate: c.JoinedDate,
	}
}

type serviceRow struct {
	ID           string                 `json:"id,omitempty"`
	Name         string                 `json:"name"`
	Description  string                 `json:"description"`
	Price        decimal.Decimal        `json:"price"`
	Category     models.ServiceCategory `json:"category"`
	Availability models.Availability    `json:"availability"`
}

func (r serviceRow) toModel() models.Service {
	return models.Service{
		ID:           r.ID,
		Name:         r.Name,
		Description:  r.Description,
		Price:        r.Price,
		Category:     r.Category,
		Availability: r.Availability,
	}
}

func newServiceRow(s models.Service) serviceRow {
	return serviceRow{
		ID:           s.ID,
		Name:         s.Name,
		Description:  s.Description,
		Price:        s.Price,
		Category:     s.Category,
		Availability: s.Availability,
	}
}
