package models

import (
	"strings"
	"time"

	"github.com/aweb-sistemas/vendas-orders-service/internal/errs"
)

// Product is a catalog entry with its current price and stock level. The
// price is a list price; order lines freeze their own copy on creation.
type Product struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         Money     `json:"price"`
	StockQuantity int       `json:"stock_quantity"`
	Version       int64     `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Validate checks the catalog constraints.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errs.NewValidationError("name", "name is required")
	}
	if strings.TrimSpace(p.Description) == "" {
		return errs.NewValidationError("description", "description is required")
	}
	if !p.Price.IsPositive() {
		return errs.NewValidationError("price", "price must be greater than zero")
	}
	if p.StockQuantity < 0 {
		return errs.NewValidationError("stock_quantity", "stock quantity cannot be negative")
	}
	return nil
}

// HasStock reports whether at least quantity units are available.
func (p *Product) HasStock(quantity int) bool {
	return p.StockQuantity >= quantity
}
