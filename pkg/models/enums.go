package models

// OrderStatus enum
type OrderStatus string

const (
	OrderStatusPendingCollection OrderStatus = "Pending Collection"
	OrderStatusInProgress        OrderStatus = "In Progress"
	OrderStatusReadyForDelivery  OrderStatus = "Ready for Delivery"
	OrderStatusCompleted         OrderStatus = "Completed"
	OrderStatusCancelled         OrderStatus = "Cancelled"
)

// OrderStatuses lists every status in display order.
var OrderStatuses = []OrderStatus{
	OrderStatusPendingCollection,
	OrderStatusInProgress,
	OrderStatusReadyForDelivery,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// Valid reports whether s is a known status. Any status may follow any other.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ServiceCategory enum
type ServiceCategory string

const (
	CategoryPlan        ServiceCategory = "Plan"
	CategoryBase        ServiceCategory = "Base Service"
	CategoryExtra       ServiceCategory = "Extra"
	CategorySpecialCare ServiceCategory = "Special Care"
	CategoryPackaging   ServiceCategory = "Packaging"
)

// ServiceCategories lists every category in display order.
var ServiceCategories = []ServiceCategory{
	CategoryPlan,
	CategoryBase,
	CategoryExtra,
	CategorySpecialCare,
	CategoryPackaging,
}

func (c ServiceCategory) Valid() bool {
	for _, known := range ServiceCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Availability enum - which ordering path offers a service
type Availability string

const (
	AvailabilityPlanOnly   Availability = "plan"
	AvailabilityOneOffOnly Availability = "avulso"
	AvailabilityBoth       Availability = "both"
)

func (a Availability) Valid() bool {
	switch a {
	case AvailabilityPlanOnly, AvailabilityOneOffOnly, AvailabilityBoth:
		return true
	}
	return false
}

// Role enum
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)
