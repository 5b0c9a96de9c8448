package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/aweb-sistemas/vendas-orders-service/internal/errs"
	"github.com/aweb-sistemas/vendas-orders-service/internal/models"
	"github.com/aweb-sistemas/vendas-orders-service/internal/repository"
)

// CustomerService manages the customer registry.
type CustomerService struct {
	tx        repository.TxManager
	customers repository.CustomerRepository
	logger    *zap.Logger
}

// NewCustomerService creates a new customer service.
func NewCustomerService(tx repository.TxManager, customers repository.CustomerRepository, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		tx:        tx,
		customers: customers,
		logger:    logger.Named("customer-service"),
	}
}

// CreateCustomer validates and persists a new customer. Email and document
// are unique across the registry.
func (s *CustomerService) CreateCustomer(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	customer.Email = strings.ToLower(strings.TrimSpace(customer.Email))
	if err := customer.Validate(); err != nil {
		return nil, err
	}

	var created *models.Customer
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.customers.GetByEmail(ctx, customer.Email)
		if err != nil && !errors.Is(err, errs.ErrNotFound) {
			return err
		}
		if existing != nil {
			return errs.NewValidationError("email", "email already registered")
		}

		existing, err = s.customers.GetByDocument(ctx, customer.Document)
		if err != nil && !errors.Is(err, errs.ErrNotFound) {
			return err
		}
		if existing != nil {
			return errs.NewValidationError("document", "document already registered")
		}

		created, err = s.customers.Create(ctx, customer)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("customer_created",
		zap.Int64("customer_id", created.ID),
		zap.String("email", created.Email))
	return created, nil
}

// GetCustomer retrieves a customer by id.
func (s *CustomerService) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	return s.customers.GetByID(ctx, id)
}

// GetCustomerByEmail retrieves a customer by email.
func (s *CustomerService) GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errs.NewValidationError("email", "email is required")
	}
	return s.customers.GetByEmail(ctx, email)
}

// ListCustomers returns all registered customers.
func (s *CustomerService) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	return s.customers.List(ctx)
}
