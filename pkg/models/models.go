package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used for order and join dates.
const DateLayout = "2006-01-02"

func init() {
	// Money goes over the wire as a JSON number, matching the remote numeric columns.
	decimal.MarshalJSONWithoutQuotes = true
}

// Service is a catalog entry offered to customers.
type Service struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Category     ServiceCategory `json:"category"`
	Availability Availability    `json:"availability"`
}

// OrderItem is a snapshot of a service at ordering time. Later service edits do not touch it.
type OrderItem struct {
	ServiceID string          `json:"serviceId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Subtotal returns price x quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order model
type Order struct {
	ID                string          `json:"id"`
	CustomerID        string          `json:"customerId"`
	CustomerName      string          `json:"customerName"`
	Date              string          `json:"date"`
	CreatedAt         time.Time       `json:"createdAt"`
	Total             decimal.Decimal `json:"total"`
	Status            OrderStatus     `json:"status"`
	Items             []OrderItem     `json:"items"`
	CollectionAddress string          `json:"collectionAddress"`
	CollectionTime    string          `json:"collectionTime"`
	DeliveryAddress   string          `json:"deliveryAddress,omitempty"`
	DeliveryTime      string          `json:"deliveryTime,omitempty"`
}

// ItemsTotal sums the line items of an order.
func ItemsTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// NewOrder is the payload of an order-creation request.
type NewOrder struct {
	CustomerID     string          `json:"customerId"`
	CustomerName   string          `json:"customerName"`
	Address        string          `json:"address"`
	Phone          string          `json:"phone"`
	Items          []OrderItem     `json:"items"`
	Total          decimal.Decimal `json:"total"`
	CollectionTime string          `json:"collectionTime"`
}

// Customer model
type Customer struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	JoinedDate string `json:"joinedDate"`
}

// User is the authenticated identity.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Role    Role   `json:"role"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// SignupDetails carries the customer signup form.
type SignupDetails struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Password string `json:"-"`
}
