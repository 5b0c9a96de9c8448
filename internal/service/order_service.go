package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/aweb-sistemas/vendas-orders-service/internal/config"
	"github.com/aweb-sistemas/vendas-orders-service/internal/errs"
	"github.com/aweb-sistemas/vendas-orders-service/internal/models"
	"github.com/aweb-sistemas/vendas-orders-service/internal/repository"
)

// SnapshotRefresher keeps a pending payment's totals snapshot aligned with
// its order. The payment workflow implements it.
type SnapshotRefresher interface {
	RefreshSnapshotIfPending(ctx context.Context, orderID int64) (*models.Payment, error)
}

// OrderEventPublisher publishes order lifecycle events.
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *models.Order) error
	PublishOrderCancelled(ctx context.Context, order *models.Order) error
	PublishOrderCompleted(ctx context.Context, order *models.Order) error
	PublishPaymentConfirmed(ctx context.Context, payment *models.Payment) error
}

// OrderService orchestrates the order lifecycle: creation, line-item
// mutation with stock reconciliation, charges and cancellation. Every
// mutating operation runs inside one transaction and refreshes the pending
// payment snapshot before committing.
type OrderService struct {
	tx        repository.TxManager
	orders    repository.OrderRepository
	products  repository.ProductRepository
	customers repository.CustomerRepository
	cache     repository.OrderCache
	snapshots SnapshotRefresher
	events    OrderEventPublisher
	config    *config.Config
	logger    *zap.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	tx repository.TxManager,
	orders repository.OrderRepository,
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	cache repository.OrderCache,
	snapshots SnapshotRefresher,
	events OrderEventPublisher,
	cfg *config.Config,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		tx:        tx,
		orders:    orders,
		products:  products,
		customers: customers,
		cache:     cache,
		snapshots: snapshots,
		events:    events,
		config:    cfg,
		logger:    logger.Named("order-service"),
	}
}

// CreateOrder opens a new active order for an existing customer.
func (s *OrderService) CreateOrder(ctx context.Context, customerID int64) (*models.Order, error) {
	s.logger.Info("creating_order", zap.Int64("customer_id", customerID))

	var created *models.Order
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.customers.GetByID(ctx, customerID); err != nil {
			return err
		}

		order := models.NewOrder(customerID)
		order.RecalculateTotals()

		var err error
		created, err = s.orders.Create(ctx, order)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishCreated(ctx, created)

	s.logger.Info("order_created", zap.Int64("order_id", created.ID))
	return created, nil
}

// AddItem appends a line to an active order, snapshotting the product's
// current price and decrementing its stock by the quantity.
func (s *OrderService) AddItem(ctx context.Context, orderID, productID int64, quantity int) (*models.Order, error) {
	if err := ValidateQuantity(quantity); err != nil {
		return nil, err
	}

	var updated *models.Order
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.mutableOrder(ctx, orderID)
		if err != nil {
			return err
		}

		product, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if !product.HasStock(quantity) {
			return &errs.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   quantity,
				Available:   product.StockQuantity,
			}
		}

		item := &models.OrderItem{
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  quantity,
			UnitPrice: product.Price,
		}
		created, err := s.orders.AddItem(ctx, item)
		if err != nil {
			return err
		}

		if err := s.products.AdjustStock(ctx, product.ID, -quantity); err != nil {
			return err
		}

		order.Items = append(order.Items, *created)
		order.RecalculateTotals()

		updated, err = s.orders.Update(ctx, order)
		if err != nil {
			return err
		}

		_, err = s.snapshots.RefreshSnapshotIfPending(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, updated)

	s.logger.Info("order_item_added",
		zap.Int64("order_id", orderID),
		zap.Int64("product_id", productID),
		zap.Int("quantity", quantity))
	return updated, nil
}

// UpdateItemQuantity changes a line's quantity, reconciling product stock by
// the delta.
func (s *OrderService) UpdateItemQuantity(ctx context.Context, orderID, itemID int64, newQuantity int) (*models.Order, error) {
	if err := ValidateQuantity(newQuantity); err != nil {
		return nil, err
	}

	var updated *models.Order
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.mutableOrder(ctx, orderID)
		if err != nil {
			return err
		}

		item := order.ItemByID(itemID)
		if item == nil {
			return errs.ErrNotFound
		}

		delta := newQuantity - item.Quantity
		if delta > 0 {
			product, err := s.products.GetByID(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if !product.HasStock(delta) {
				return &errs.InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   delta,
					Available:   product.StockQuantity,
				}
			}
		}
		if delta != 0 {
			if err := s.products.AdjustStock(ctx, item.ProductID, -delta); err != nil {
				return err
			}
		}

		item.Quantity = newQuantity
		if err := s.orders.UpdateItem(ctx, item); err != nil {
			return err
		}

		order.RecalculateTotals()
		updated, err = s.orders.Update(ctx, order)
		if err != nil {
			return err
		}

		_, err = s.snapshots.RefreshSnapshotIfPending(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, updated)

	s.logger.Info("order_item_quantity_updated",
		zap.Int64("order_id", orderID),
		zap.Int64("item_id", itemID),
		zap.Int("quantity", newQuantity))
	return updated, nil
}

// RemoveItem deletes a line from an active order and returns its full
// quantity to product stock.
func (s *OrderService) RemoveItem(ctx context.Context, orderID, itemID int64) (*models.Order, error) {
	var updated *models.Order
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.mutableOrder(ctx, orderID)
		if err != nil {
			return err
		}

		item := order.ItemByID(itemID)
		if item == nil {
			return errs.ErrNotFound
		}

		if err := s.products.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
			return err
		}
		if err := s.orders.RemoveItem(ctx, orderID, itemID); err != nil {
			return err
		}

		remaining := order.Items[:0]
		for _, it := range order.Items {
			if it.ID != itemID {
				remaining = append(remaining, it)
			}
		}
		order.Items = remaining
		order.RecalculateTotals()

		updated, err = s.orders.Update(ctx, order)
		if err != nil {
			return err
		}

		_, err = s.snapshots.RefreshSnapshotIfPending(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, updated)

	s.logger.Info("order_item_removed",
		zap.Int64("order_id", orderID),
		zap.Int64("item_id", itemID))
	return updated, nil
}

// ApplyFreightAndDiscount sets the order's charges and recalculates totals.
// Both values default to zero when absent; negatives are rejected.
func (s *OrderService) ApplyFreightAndDiscount(ctx context.Context, orderID int64, freight, discount models.Money) (*models.Order, error) {
	if err := ValidateCharges(freight, discount); err != nil {
		return nil, err
	}

	var updated *models.Order
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.mutableOrder(ctx, orderID)
		if err != nil {
			return err
		}

		order.Freight = freight
		order.Discount = discount
		order.RecalculateTotals()

		updated, err = s.orders.Update(ctx, order)
		if err != nil {
			return err
		}

		_, err = s.snapshots.RefreshSnapshotIfPending(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, updated)
	return updated, nil
}

// CancelOrder returns every item's quantity to stock and marks the order
// CANCELADO. Cancelling an already-cancelled order is a no-op; a completed
// order cannot be cancelled.
func (s *OrderService) CancelOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	var cancelled *models.Order
	var alreadyCancelled bool

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}

		if order.Status == models.OrderStatusCancelled {
			cancelled = order
			alreadyCancelled = true
			return nil
		}
		if order.Status == models.OrderStatusCompleted {
			return errs.NewStateError("order", string(order.Status),
				"completed order cannot be cancelled")
		}

		for _, item := range order.Items {
			if err := s.products.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		order.Status = models.OrderStatusCancelled
		order.RecalculateTotals()

		cancelled, err = s.orders.Update(ctx, order)
		return err
	})
	if err != nil {
		return nil, err
	}

	if alreadyCancelled {
		return cancelled, nil
	}

	s.invalidateCache(ctx, cancelled)
	s.publishCancelled(ctx, cancelled)

	s.logger.Info("order_cancelled", zap.Int64("order_id", orderID))
	return cancelled, nil
}

// GetOrder retrieves an order with its items, read-through cached.
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	if s.config.Features.EnableOrderCaching {
		if order, err := s.cache.Get(ctx, orderID); err == nil && order != nil {
			return order, nil
		}
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if s.config.Features.EnableOrderCaching {
		if err := s.cache.Set(ctx, order); err != nil {
			s.logger.Warn("cache_set_failed", zap.Int64("order_id", orderID), zap.Error(err))
		}
	}
	return order, nil
}

// ListOrders retrieves every order, newest first.
func (s *OrderService) ListOrders(ctx context.Context) ([]*models.Order, error) {
	return s.orders.ListAll(ctx)
}

// ListOrdersByStatus retrieves orders in the given status, newest first.
func (s *OrderService) ListOrdersByStatus(ctx context.Context, status models.OrderStatus) ([]*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, errs.NewValidationError("status", "invalid order status")
	}
	return s.orders.ListByStatus(ctx, status)
}

// ListOrdersByCustomerEmail retrieves a customer's orders, newest first.
func (s *OrderService) ListOrdersByCustomerEmail(ctx context.Context, email string) ([]*models.Order, error) {
	if s.config.Features.EnableOrderCaching {
		if orders, err := s.cache.GetByCustomerEmail(ctx, email); err == nil && orders != nil {
			return orders, nil
		}
	}

	orders, err := s.orders.ListByCustomerEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if s.config.Features.EnableOrderCaching {
		if err := s.cache.SetByCustomerEmail(ctx, email, orders); err != nil {
			s.logger.Warn("cache_set_failed", zap.String("customer_email", email), zap.Error(err))
		}
	}
	return orders, nil
}

// QuoteOrderPricing returns the promotional charges quote for the order's
// current product total.
func (s *OrderService) QuoteOrderPricing(ctx context.Context, orderID int64) (*PricingQuote, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	quote := QuotePricing(order.ProductTotal())
	return &quote, nil
}

func (s *OrderService) mutableOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsMutable() {
		return nil, errs.NewStateError("order", string(order.Status),
			"only active orders can be changed")
	}
	return order, nil
}

func (s *OrderService) invalidateCache(ctx context.Context, order *models.Order) {
	if !s.config.Features.EnableOrderCaching || order == nil {
		return
	}

	if err := s.cache.Delete(ctx, order.ID); err != nil {
		s.logger.Warn("cache_invalidate_failed", zap.Int64("order_id", order.ID), zap.Error(err))
	}

	customer, err := s.customers.GetByID(ctx, order.CustomerID)
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			s.logger.Warn("cache_invalidate_lookup_failed", zap.Int64("order_id", order.ID), zap.Error(err))
		}
		return
	}
	if err := s.cache.InvalidateByCustomerEmail(ctx, customer.Email); err != nil {
		s.logger.Warn("cache_invalidate_failed", zap.String("customer_email", customer.Email), zap.Error(err))
	}
}

func (s *OrderService) publishCreated(ctx context.Context, order *models.Order) {
	if !s.config.Features.EnableOrderEvents {
		return
	}
	if err := s.events.PublishOrderCreated(ctx, order); err != nil {
		s.logger.Error("event_publish_failed",
			zap.Int64("order_id", order.ID),
			zap.String("event", "order.created"),
			zap.Error(err))
	}
}

func (s *OrderService) publishCancelled(ctx context.Context, order *models.Order) {
	if !s.config.Features.EnableOrderEvents {
		return
	}
	if err := s.events.PublishOrderCancelled(ctx, order); err != nil {
		s.logger.Error("event_publish_failed",
			zap.Int64("order_id", order.ID),
			zap.String("event", "order.cancelled"),
			zap.Error(err))
	}
}
