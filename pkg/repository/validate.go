package repository

import (
	"strings"

	"lavapp/pkg/models"
)

// ValidateNewOrder checks an order-creation request before it is sent.
func ValidateNewOrder(order models.NewOrder) error {
	if strings.TrimSpace(order.CustomerID) == "" {
		return InvalidInput("customer id is required")
	}
	if len(order.Items) == 0 {
		return InvalidInput("order has no items")
	}
	for _, item := range order.Items {
		if item.Quantity <= 0 {
			return InvalidInput("item %q has non-positive quantity %d", item.Name, item.Quantity)
		}
		if item.Price.IsNegative() {
			return InvalidInput("item %q has a negative price", item.Name)
		}
	}
	if want := models.ItemsTotal(order.Items); !order.Total.Equal(want) {
		return InvalidInput("total %s does not match items total %s", order.Total.StringFixed(2), want.StringFixed(2))
	}
	return nil
}

// ValidateService checks a catalog entry before create or update.
func ValidateService(service models.Service) error {
	if strings.TrimSpace(service.Name) == "" {
		return InvalidInput("service name is required")
	}
	if service.Price.IsNegative() {
		return InvalidInput("service price must not be negative")
	}
	if !service.Category.Valid() {
		return InvalidInput("unknown category %q", service.Category)
	}
	if !service.Availability.Valid() {
		return InvalidInput("unknown availability %q", service.Availability)
	}
	return nil
}

// ValidateStatus rejects unknown order statuses. Any known status may follow any other.
func ValidateStatus(status models.OrderStatus) error {
	if !status.Valid() {
		return InvalidInput("unknown order status %q", status)
	}
	return nil
}
