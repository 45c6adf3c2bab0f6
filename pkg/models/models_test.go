package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestItemsTotal(t *testing.T) {
	items := []OrderItem{
		{ServiceID: "a", Name: "A", Quantity: 2, Price: decimal.NewFromInt(10)},
		{ServiceID: "b", Name: "B", Quantity: 1, Price: decimal.NewFromInt(5)},
	}
	assert.True(t, ItemsTotal(items).Equal(decimal.NewFromInt(25)))
	assert.True(t, ItemsTotal(nil).IsZero())
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, OrderStatusReadyForDelivery.Valid())
	assert.False(t, OrderStatus("Shipped").Valid())

	assert.True(t, CategorySpecialCare.Valid())
	assert.False(t, ServiceCategory("Dry").Valid())

	assert.True(t, AvailabilityOneOffOnly.Valid())
	assert.False(t, Availability("never").Valid())
}

func TestUserIsAdmin(t *testing.T) {
	var nobody *User
	assert.False(t, nobody.IsAdmin())
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleCustomer}).IsAdmin())
}

func TestMoneyMarshalsAsNumber(t *testing.T) {
	out, err := json.Marshal(OrderItem{ServiceID: "a", Name: "A", Quantity: 1, Price: decimal.RequireFromString("59.90")})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"serviceId":"a","name":"A","quantity":1,"price":59.9}`, string(out))
}
