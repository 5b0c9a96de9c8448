package models

import (
	"time"
)

// OrderStatus is the lifecycle status of an order.
type OrderStatus string

const (
	// OrderStatusActive is the only status in which items may be mutated.
	OrderStatusActive OrderStatus = "ATIVO"
	// OrderStatusCompleted is reached when a payment is approved.
	OrderStatusCompleted OrderStatus = "CONCLUIDO"
	// OrderStatusCancelled is reached by cancellation; stock is returned.
	OrderStatusCancelled OrderStatus = "CANCELADO"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusActive, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem is one product line within an order. The unit price is copied
// from the product when the line is created and frozen thereafter.
type OrderItem struct {
	ID        int64 `json:"id"`
	OrderID   int64 `json:"order_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	UnitPrice Money `json:"unit_price"`
	Subtotal  Money `json:"subtotal"`
	Version   int64 `json:"version"`
}

// ComputeSubtotal returns quantity × unit price at money scale.
func (i *OrderItem) ComputeSubtotal() Money {
	return i.UnitPrice.MulInt(i.Quantity)
}

// Order is a customer's purchase aggregate: an ordered collection of line
// items plus freight/discount and the derived total.
type Order struct {
	ID         int64       `json:"id"`
	CustomerID int64       `json:"customer_id"`
	Status     OrderStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	Freight    Money       `json:"freight"`
	Discount   Money       `json:"discount"`
	Total      Money       `json:"total"`
	Items      []OrderItem `json:"items"`
	Version    int64       `json:"version"`
}

// NewOrder builds an active order with zero totals for the given customer.
func NewOrder(customerID int64) *Order {
	return &Order{
		CustomerID: customerID,
		Status:     OrderStatusActive,
		CreatedAt:  time.Now(),
		Freight:    ZeroMoney(),
		Discount:   ZeroMoney(),
		Total:      ZeroMoney(),
		Items:      []OrderItem{},
	}
}

// ProductTotal is the sum of all item subtotals, excluding freight and
// discount.
func (o *Order) ProductTotal() Money {
	total := ZeroMoney()
	for i := range o.Items {
		total = total.Add(o.Items[i].Subtotal)
	}
	return total
}

// AddItem appends the item with a back-reference to this order and
// recalculates totals. Stock checks are the order service's responsibility.
func (o *Order) AddItem(item OrderItem) {
	item.OrderID = o.ID
	item.Subtotal = item.ComputeSubtotal()
	o.Items = append(o.Items, item)
	o.RecalculateTotals()
}

// RecalculateTotals recomputes every item subtotal, clamps freight and
// discount to non-negative 2-decimal values and derives
// total = max(0, productTotal - discount + freight).
func (o *Order) RecalculateTotals() {
	for i := range o.Items {
		o.Items[i].Subtotal = o.Items[i].ComputeSubtotal()
	}

	if o.Discount.IsNegative() {
		o.Discount = ZeroMoney()
	} else {
		o.Discount = NewMoney(o.Discount.Decimal)
	}
	if o.Freight.IsNegative() {
		o.Freight = ZeroMoney()
	} else {
		o.Freight = NewMoney(o.Freight.Decimal)
	}

	total := o.ProductTotal().Sub(o.Discount).Add(o.Freight)
	if total.IsNegative() {
		total = ZeroMoney()
	}
	o.Total = total
}

// IsMutable reports whether items and charges may still be changed.
func (o *Order) IsMutable() bool {
	return o.Status == OrderStatusActive
}

// ItemByID returns the item with the given id, or nil.
func (o *Order) ItemByID(itemID int64) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i]
		}
	}
	return nil
}
