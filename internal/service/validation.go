package service

import (
	"github.com/aweb-sistemas/vendas-orders-service/internal/errs"
	"github.com/aweb-sistemas/vendas-orders-service/internal/models"
)

// ValidateQuantity checks the minimum-1 constraint on item quantities.
func ValidateQuantity(quantity int) error {
	if quantity < 1 {
		return errs.NewValidationError("quantity", "quantity must be at least 1")
	}
	return nil
}

// ValidateCharges checks the non-negativity constraint on freight and
// discount.
func ValidateCharges(freight, discount models.Money) error {
	if freight.IsNegative() {
		return errs.NewValidationError("freight", "freight cannot be negative")
	}
	if discount.IsNegative() {
		return errs.NewValidationError("discount", "discount cannot be negative")
	}
	return nil
}

// ValidatePaymentMethod checks that the method is present and known.
func ValidatePaymentMethod(method models.PaymentMethod) error {
	if method == "" {
		return errs.NewValidationError("method", "payment method is required")
	}
	if !models.ValidPaymentMethod(method) {
		return errs.NewValidationError("method", "invalid payment method")
	}
	return nil
}
