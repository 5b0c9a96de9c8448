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

var _ SnapshotRefresher = (*PaymentService)(nil)

// PaymentService drives the per-order payment state machine: initiate,
// confirm, keep the snapshot fresh while pending, cancel. At most one
// payment exists per order.
type PaymentService struct {
	tx       repository.TxManager
	orders   repository.OrderRepository
	payments repository.PaymentRepository
	cache    repository.OrderCache
	events   OrderEventPublisher
	config   *config.Config
	logger   *zap.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	tx repository.TxManager,
	orders repository.OrderRepository,
	payments repository.PaymentRepository,
	cache repository.OrderCache,
	events OrderEventPublisher,
	cfg *config.Config,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		tx:       tx,
		orders:   orders,
		payments: payments,
		cache:    cache,
		events:   events,
		config:   cfg,
		logger:   logger.Named("payment-service"),
	}
}

// InitiatePayment creates the order's payment in PENDENTE with a fresh
// totals snapshot, or re-arms an existing non-approved payment with the new
// method. An approved payment is returned unchanged.
func (s *PaymentService) InitiatePayment(ctx context.Context, orderID int64, method models.PaymentMethod) (*models.Payment, error) {
	if err := ValidatePaymentMethod(method); err != nil {
		return nil, err
	}

	var payment *models.Payment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}

		if len(order.Items) == 0 {
			return errs.ErrEmptyOrder
		}
		if order.Status == models.OrderStatusCancelled {
			return errs.NewStateError("order", string(order.Status),
				"cancelled order cannot be paid")
		}

		order.RecalculateTotals()

		existing, err := s.payments.GetByOrderID(ctx, orderID)
		if err != nil && !errors.Is(err, errs.ErrNotFound) {
			return err
		}

		if existing != nil {
			if existing.Status == models.PaymentStatusApproved {
				payment = existing
				return nil
			}
			existing.Method = method
			existing.SnapshotFromOrder(order)
			existing.Status = models.PaymentStatusPending
			existing.Paid = false

			payment, err = s.payments.Update(ctx, existing)
			return err
		}

		fresh := &models.Payment{
			OrderID: orderID,
			Method:  method,
			Status:  models.PaymentStatusPending,
			Paid:    false,
		}
		fresh.SnapshotFromOrder(order)

		payment, err = s.payments.Create(ctx, fresh)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment_initiated",
		zap.Int64("order_id", orderID),
		zap.String("method", string(method)),
		zap.String("status", string(payment.Status)))
	return payment, nil
}

// ConfirmPayment settles the payment: approval marks it APROVADO/paid and
// promotes the order to CONCLUIDO; refusal marks it RECUSADO. Confirming an
// already-approved payment returns it unchanged.
func (s *PaymentService) ConfirmPayment(ctx context.Context, orderID int64, authorized bool, externalRef, details string) (*models.Payment, error) {
	var payment *models.Payment
	var promoted *models.Order
	var alreadyApproved bool

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}

		current, err := s.payments.GetByOrderID(ctx, orderID)
		if err != nil {
			return err
		}

		if current.Status == models.PaymentStatusApproved {
			payment = current
			alreadyApproved = true
			return nil
		}

		if authorized {
			current.Status = models.PaymentStatusApproved
			current.Paid = true
		} else {
			current.Status = models.PaymentStatusDeclined
			current.Paid = false
		}
		current.ExternalReference = externalRef
		current.Details = details

		payment, err = s.payments.Update(ctx, current)
		if err != nil {
			return err
		}

		if authorized {
			order.Status = models.OrderStatusCompleted
			promoted, err = s.orders.Update(ctx, order)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if alreadyApproved {
		return payment, nil
	}

	s.publishConfirmed(ctx, payment, promoted)

	s.logger.Info("payment_confirmed",
		zap.Int64("order_id", orderID),
		zap.Bool("authorized", authorized),
		zap.String("status", string(payment.Status)))
	return payment, nil
}

// RefreshSnapshotIfPending re-copies the order totals onto the payment when,
// and only when, the payment exists and is still PENDENTE.
func (s *PaymentService) RefreshSnapshotIfPending(ctx context.Context, orderID int64) (*models.Payment, error) {
	var payment *models.Payment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.payments.GetByOrderID(ctx, orderID)
		if errors.Is(err, errs.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if current.Status != models.PaymentStatusPending {
			payment = current
			return nil
		}

		order, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}

		order.RecalculateTotals()
		current.SnapshotFromOrder(order)
		current.Paid = false

		payment, err = s.payments.Update(ctx, current)
		return err
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// CancelPayment marks a non-approved payment CANCELADO.
func (s *PaymentService) CancelPayment(ctx context.Context, orderID int64) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		payment, err := s.payments.GetByOrderID(ctx, orderID)
		if err != nil {
			return err
		}

		if !payment.CanCancel() {
			return errs.NewStateError("payment", string(payment.Status),
				"approved payment cannot be cancelled")
		}

		payment.Status = models.PaymentStatusCancelled
		payment.Paid = false

		_, err = s.payments.Update(ctx, payment)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("payment_cancelled", zap.Int64("order_id", orderID))
	return nil
}

// UpdateDetails overwrites the free-text details of an initiated payment
// without touching its status.
func (s *PaymentService) UpdateDetails(ctx context.Context, orderID int64, details string) (*models.Payment, error) {
	var payment *models.Payment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.payments.GetByOrderID(ctx, orderID)
		if err != nil {
			return err
		}

		current.Details = details

		payment, err = s.payments.Update(ctx, current)
		return err
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// GetPayment retrieves the payment attached to the order.
func (s *PaymentService) GetPayment(ctx context.Context, orderID int64) (*models.Payment, error) {
	return s.payments.GetByOrderID(ctx, orderID)
}

func (s *PaymentService) publishConfirmed(ctx context.Context, payment *models.Payment, promoted *models.Order) {
	if s.config.Features.EnableOrderCaching && promoted != nil {
		if err := s.cache.Delete(ctx, promoted.ID); err != nil {
			s.logger.Warn("cache_invalidate_failed", zap.Int64("order_id", promoted.ID), zap.Error(err))
		}
	}

	if !s.config.Features.EnableOrderEvents {
		return
	}

	if err := s.events.PublishPaymentConfirmed(ctx, payment); err != nil {
		s.logger.Error("event_publish_failed",
			zap.Int64("order_id", payment.OrderID),
			zap.String("event", "payment.confirmed"),
			zap.Error(err))
	}
	if promoted != nil {
		if err := s.events.PublishOrderCompleted(ctx, promoted); err != nil {
			s.logger.Error("event_publish_failed",
				zap.Int64("order_id", promoted.ID),
				zap.String("event", "order.completed"),
				zap.Error(err))
		}
	}
}
