package models

import (
	"strings"
	"time"

	"github.com/aweb-sistemas/vendas-orders-service/internal/errs"
)

// Customer is a registered buyer with a billing address.
type Customer struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Document   string    `json:"document"`
	Phone      string    `json:"phone,omitempty"`
	Street     string    `json:"street,omitempty"`
	City       string    `json:"city,omitempty"`
	State      string    `json:"state,omitempty"`
	PostalCode string    `json:"postal_code,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate checks the registration constraints.
func (c *Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errs.NewValidationError("name", "name is required")
	}
	email := strings.TrimSpace(c.Email)
	if email == "" {
		return errs.NewValidationError("email", "email is required")
	}
	if !strings.Contains(email, "@") {
		return errs.NewValidationError("email", "email is invalid")
	}
	if strings.TrimSpace(c.Document) == "" {
		return errs.NewValidationError("document", "document is required")
	}
	return nil
}
