package models

import (
	"time"
)

// PaymentMethod enumerates the accepted settlement methods.
type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentMethodBoleto     PaymentMethod = "BOLETO"
	PaymentMethodPix        PaymentMethod = "PIX"
	PaymentMethodTransfer   PaymentMethod = "TRANSFER"
)

// ValidPaymentMethod reports whether m is a known payment method.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodBoleto,
		PaymentMethodPix, PaymentMethodTransfer:
		return true
	}
	return false
}

// PaymentStatus is the settlement status of a payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDENTE"
	PaymentStatusApproved  PaymentStatus = "APROVADO"
	PaymentStatusDeclined  PaymentStatus = "RECUSADO"
	PaymentStatusCancelled PaymentStatus = "CANCELADO"
)

// Payment is the settlement record attached 1:1 to an order. It carries a
// frozen snapshot of the order totals taken at initiation and refreshed while
// the payment is still pending.
type Payment struct {
	ID                int64         `json:"id"`
	OrderID           int64         `json:"order_id"`
	Method            PaymentMethod `json:"method"`
	Status            PaymentStatus `json:"status"`
	ProductTotal      Money         `json:"total_products"`
	Discount          Money         `json:"discount"`
	Freight           Money         `json:"freight"`
	FinalValue        Money         `json:"final_value"`
	ExternalReference string        `json:"external_reference,omitempty"`
	Details           string        `json:"details,omitempty"`
	Paid              bool          `json:"paid"`
	CreatedAt         time.Time     `json:"created_at"`
	Version           int64         `json:"version"`
}

// SnapshotFromOrder copies the order's current totals onto the payment.
// Invariant: all snapshot values are at 2-decimal scale.
func (p *Payment) SnapshotFromOrder(o *Order) {
	p.OrderID = o.ID
	p.ProductTotal = o.ProductTotal()
	p.Discount = NewMoney(o.Discount.Decimal)
	p.Freight = NewMoney(o.Freight.Decimal)
	p.FinalValue = NewMoney(o.Total.Decimal)
}

// CanCancel reports whether the payment may transition to CANCELADO.
// Approved payments cannot be cancelled.
func (p *Payment) CanCancel() bool {
	return p.Status != PaymentStatusApproved
}
