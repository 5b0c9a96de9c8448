package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMoney(t *testing.T, s string) Money {
	t.Helper()
	m, err := MoneyFromString(s)
	require.NoError(t, err)
	return m
}

func TestOrderRecalculateTotals(t *testing.T) {
	tests := []struct {
		name     string
		items    []OrderItem
		freight  string
		discount string
		want     string
	}{
		{
			name: "items only",
			items: []OrderItem{
				{Quantity: 3},
			},
			freight:  "0.00",
			discount: "0.00",
			want:     "150.00",
		},
		{
			name: "items with freight and discount",
			items: []OrderItem{
				{Quantity: 3},
			},
			freight:  "15.00",
			discount: "10.00",
			want:     "155.00",
		},
		{
			name:     "discount exceeding product total clamps at zero",
			items:    []OrderItem{{Quantity: 1}},
			freight:  "0.00",
			discount: "100.00",
			want:     "0.00",
		},
	}

	unitPrice := mustMoney(t, "50.00")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := NewOrder(1)
			for _, item := range tt.items {
				item.UnitPrice = unitPrice
				order.AddItem(item)
			}
			order.Freight = mustMoney(t, tt.freight)
			order.Discount = mustMoney(t, tt.discount)
			order.RecalculateTotals()

			assert.Equal(t, tt.want, order.Total.String())
		})
	}
}

func TestOrderTotalsScenario(t *testing.T) {
	// Three units at 50.00, freight 15.00, discount 10.00.
	order := NewOrder(1)
	order.AddItem(OrderItem{ProductID: 7, Quantity: 3, UnitPrice: mustMoney(t, "50.00")})
	order.Freight = mustMoney(t, "15.00")
	order.Discount = mustMoney(t, "10.00")
	order.RecalculateTotals()

	assert.Equal(t, "150.00", order.ProductTotal().String())
	assert.Equal(t, "155.00", order.Total.String())
	assert.Equal(t, "150.00", order.Items[0].Subtotal.String())
}

func TestOrderNegativeChargesClampedToZero(t *testing.T) {
	order := NewOrder(1)
	order.AddItem(OrderItem{Quantity: 2, UnitPrice: mustMoney(t, "10.00")})
	order.Freight = NewMoney(mustMoney(t, "5.00").Neg())
	order.Discount = NewMoney(mustMoney(t, "3.00").Neg())
	order.RecalculateTotals()

	assert.Equal(t, "0.00", order.Freight.String())
	assert.Equal(t, "0.00", order.Discount.String())
	assert.Equal(t, "20.00", order.Total.String())
}

func TestNewOrderStartsActiveAndEmpty(t *testing.T) {
	order := NewOrder(42)

	assert.Equal(t, OrderStatusActive, order.Status)
	assert.Empty(t, order.Items)
	assert.Equal(t, "0.00", order.Total.String())
	assert.True(t, order.IsMutable())
}

func TestOrderItemByID(t *testing.T) {
	order := NewOrder(1)
	order.Items = []OrderItem{
		{ID: 10, Quantity: 1, UnitPrice: mustMoney(t, "5.00")},
		{ID: 11, Quantity: 2, UnitPrice: mustMoney(t, "5.00")},
	}

	require.NotNil(t, order.ItemByID(11))
	assert.Equal(t, 2, order.ItemByID(11).Quantity)
	assert.Nil(t, order.ItemByID(99))
}

func TestOrderStatusMutability(t *testing.T) {
	order := NewOrder(1)

	order.Status = OrderStatusCompleted
	assert.False(t, order.IsMutable())

	order.Status = OrderStatusCancelled
	assert.False(t, order.IsMutable())
}

func TestValidOrderStatus(t *testing.T) {
	assert.True(t, ValidOrderStatus(OrderStatusActive))
	assert.True(t, ValidOrderStatus(OrderStatusCompleted))
	assert.True(t, ValidOrderStatus(OrderStatusCancelled))
	assert.False(t, ValidOrderStatus(OrderStatus("PENDING")))
}
