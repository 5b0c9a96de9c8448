package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/aweb-sistemas/vendas-orders-service/internal/errs"
	"github.com/aweb-sistemas/vendas-orders-service/internal/models"
	"github.com/aweb-sistemas/vendas-orders-service/internal/repository"
)

// ProductService manages the product catalog and its stock ledger.
type ProductService struct {
	tx       repository.TxManager
	products repository.ProductRepository
	logger   *zap.Logger
}

// NewProductService creates a new product service.
func NewProductService(tx repository.TxManager, products repository.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{
		tx:       tx,
		products: products,
		logger:   logger.Named("product-service"),
	}
}

// CreateProduct validates and persists a new product.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := product.Validate(); err != nil {
		return nil, err
	}

	created, err := s.products.Create(ctx, product)
	if err != nil {
		return nil, err
	}

	s.logger.Info("product_created",
		zap.Int64("product_id", created.ID),
		zap.String("name", created.Name))
	return created, nil
}

// GetProduct retrieves a product by id.
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.products.GetByID(ctx, id)
}

// UpdateProduct validates and persists changes to an existing product. The
// stored stock quantity is kept; stock moves only through AdjustStock.
func (s *ProductService) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := product.Validate(); err != nil {
		return nil, err
	}

	var updated *models.Product
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.products.GetByID(ctx, product.ID)
		if err != nil {
			return err
		}

		current.Name = product.Name
		current.Description = product.Description
		current.Price = product.Price

		updated, err = s.products.Update(ctx, current)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("product_updated", zap.Int64("product_id", updated.ID))
	return updated, nil
}

// DeleteProduct removes a product from the catalog.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("product_deleted", zap.Int64("product_id", id))
	return nil
}

// ListProducts returns the whole catalog.
func (s *ProductService) ListProducts(ctx context.Context) ([]*models.Product, error) {
	return s.products.List(ctx)
}

// SearchProducts returns products whose name contains the term,
// case-insensitively.
func (s *ProductService) SearchProducts(ctx context.Context, name string) ([]*models.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.NewValidationError("name", "search term is required")
	}
	return s.products.SearchByName(ctx, name)
}

// AdjustStock applies a signed delta to the product's stock. A delta that
// would drive stock negative fails with a conflict.
func (s *ProductService) AdjustStock(ctx context.Context, id int64, delta int) (*models.Product, error) {
	var product *models.Product
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.products.AdjustStock(ctx, id, delta); err != nil {
			return err
		}

		var err error
		product, err = s.products.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock_adjusted",
		zap.Int64("product_id", id),
		zap.Int("delta", delta),
		zap.Int("stock", product.StockQuantity))
	return product, nil
}
