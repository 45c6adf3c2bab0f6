// Package postgres implements the data-access ports on a directly connected
// PostgreSQL database through gorm, with local password auth.
package postgres

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"lavapp/pkg/models"
)

// itemList stores order items as a jsonb array.
type itemList []models.OrderItem

func (l itemList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]models.OrderItem(l))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *itemList) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*l = itemList{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported items column type")
	}
	return json.Unmarshal(data, (*[]models.OrderItem)(l))
}

type orderRow struct {
	OrderUID          string             `gorm:"column:order_uid;primaryKey"`
	CustomerID        string             `gorm:"column:customer_id;index;not null"`
	CustomerName      string             `gorm:"column:customer_name;not null"`
	Total             decimal.Decimal    `gorm:"column:total;type:numeric(10,2);not null"`
	Items             itemList           `gorm:"column:items;type:jsonb;not null"`
	Status            models.OrderStatus `gorm:"column:status;not null;default:'Pending Collection'"`
	CollectionAddress string             `gorm:"column:collection_address"`
	CollectionTime    string             `gorm:"column:collection_time"`
	DeliveryAddress   *string            `gorm:"column:delivery_address"`
	DeliveryTime      *string            `gorm:"column:delivery_time"`
	CreatedAt         time.Time          `gorm:"column:created_at;index"`
}

func (orderRow) TableName() string { return "orders" }

func (r *orderRow) BeforeCreate(tx *gorm.DB) error {
	if r.OrderUID == "" {
		r.OrderUID = uuid.NewString()
	}
	return nil
}

func (r orderRow) toModel() models.Order {
	o := models.Order{
		ID:                r.OrderUID,
		CustomerID:        r.CustomerID,
		CustomerName:      r.CustomerName,
		Date:              r.CreatedAt.UTC().Format(models.DateLayout),
		CreatedAt:         r.CreatedAt,
		Total:             r.Total,
		Status:            r.Status,
		Items:             []models.OrderItem(r.Items),
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

type customerRow struct {
	ID         string    `gorm:"column:id;primaryKey"`
	Name       string    `gorm:"column:name;not null"`
	Email      string    `gorm:"column:email;uniqueIndex;not null"`
	Phone      string    `gorm:"column:phone"`
	Address    string    `gorm:"column:address"`
	JoinedDate time.Time `gorm:"column:joined_date;type:date"`
}

func (customerRow) TableName() string { return "customers" }

func (r customerRow) toModel() models.Customer {
	return models.Customer{
		ID:         r.ID,
		Name:       r.Name,
		Email:      r.Email,
		Phone:      r.Phone,
		Address:    r.Address,
		JoinedDate: r.JoinedDate.Format(models.DateLayout),
	}
}

type serviceRow struct {
	ID           string                 `gorm:"column:id;primaryKey"`
	Name         string                 `gorm:"column:name;not null"`
	Description  string                 `gorm:"column:description"`
	Price        decimal.Decimal        `gorm:"column:price;type:numeric(10,2);not null"`
	Category     models.ServiceCategory `gorm:"column:category;not null"`
	Availability models.Availability    `gorm:"column:availability;not null;default:'both'"`
	CreatedAt    time.Time              `gorm:"column:created_at"`
}

func (serviceRow) TableName() string { return "services" }

func (r *serviceRow) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
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

// userRow holds local auth credentials and the signup metadata.
type userRow struct {
	ID           string    `gorm:"column:id;primaryKey"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Name         string    `gorm:"column:name"`
	Phone        string    `gorm:"column:phone"`
	Address      string    `gorm:"column:address"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (userRow) TableName() string { return "users" }

func (r *userRow) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Tables lists the rows AutoMigrate manages.
func Tables() []interface{} {
	return []interface{}{&userRow{}, &customerRow{}, &serviceRow{}, &orderRow{}}
}
