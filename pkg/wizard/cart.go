package wizard

import (
	"github.com/shopspring/decimal"

	"lavapp/pkg/models"
)

// CartItem is a selected service with its unit price captured at selection time.
type CartItem struct {
	ServiceID string                 `json:"serviceId"`
	Name      string                 `json:"name"`
	Price     decimal.Decimal        `json:"price"`
	Category  models.ServiceCategory `json:"category"`
	Quantity  int                    `json:"quantity"`
}

func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart holds the items of one wizard. Items are keyed by name, quantities stay
// positive and at most one Plan item is present.
type Cart struct {
	items []CartItem
}

func (c *Cart) indexOf(name string) int {
	for i, item := range c.items {
		if item.Name == name {
			return i
		}
	}
	return -1
}

// Add increments the item named like service, or appends it with quantity 1.
// A new Plan replaces whatever plan the cart held.
func (c *Cart) Add(service models.Service) {
	if i := c.indexOf(service.Name); i >= 0 {
		c.items[i].Quantity++
		return
	}
	item := CartItem{
		ServiceID: service.ID,
		Name:      service.Name,
		Price:     service.Price,
		Category:  service.Category,
		Quantity:  1,
	}
	if item.Category == models.CategoryPlan {
		kept := c.items[:0]
		for _, existing := range c.items {
			if existing.Category != models.CategoryPlan {
				kept = append(kept, existing)
			}
		}
		c.items = kept
	}
	c.items = append(c.items, item)
}

// SetQuantity replaces the quantity of the named item; zero or less removes it.
// It reports whether the item was in the cart.
func (c *Cart) SetQuantity(name string, quantity int) bool {
	i := c.indexOf(name)
	if i < 0 {
		return false
	}
	if quantity <= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
		return true
	}
	c.items[i].Quantity = quantity
	return true
}

// Quantity returns the quantity of the named item, 0 when absent.
func (c *Cart) Quantity(name string) int {
	if i := c.indexOf(name); i >= 0 {
		return c.items[i].Quantity
	}
	return 0
}

// Items returns a copy of the cart contents in insertion order.
func (c *Cart) Items() []CartItem {
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Total is recomputed from the items on every call.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func (c *Cart) Len() int { return len(c.items) }

func (c *Cart) IsEmpty() bool { return len(c.items) == 0 }

func (c *Cart) Clear() { c.items = nil }

// OrderItems snapshots the cart as order line items.
func (c *Cart) OrderItems() []models.OrderItem {
	out := make([]models.OrderItem, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, models.OrderItem{
			ServiceID: item.ServiceID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return out
}
