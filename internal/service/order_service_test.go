package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aweb-sistemas/vendas-orders-service/internal/errs"
	"github.com/aweb-sistemas/vendas-orders-service/internal/models"
)

type testEnv struct {
	products   *memProductRepo
	customers  *memCustomerRepo
	orders     *memOrderRepo
	payments   *memPaymentRepo
	cache      *memOrderCache
	publisher  *recordingPublisher
	orderSvc   *OrderService
	paymentSvc *PaymentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	products := newMemProductRepo()
	customers := newMemCustomerRepo()
	orders := newMemOrderRepo(customers)
	payments := newMemPaymentRepo()
	cache := newMemOrderCache()
	publisher := &recordingPublisher{}

	cfg := testConfig()
	logger := zap.NewNop()
	tx := passthroughTx{}

	paymentSvc := NewPaymentService(tx, orders, payments, cache, publisher, cfg, logger)
	orderSvc := NewOrderService(tx, orders, products, customers, cache, paymentSvc, publisher, cfg, logger)

	return &testEnv{
		products:   products,
		customers:  customers,
		orders:     orders,
		payments:   payments,
		cache:      cache,
		publisher:  publisher,
		orderSvc:   orderSvc,
		paymentSvc: paymentSvc,
	}
}

func (e *testEnv) seedCustomer(t *testing.T) *models.Customer {
	t.Helper()
	customer, err := e.customers.Create(context.Background(), &models.Customer{
		Name:     "Maria Silva",
		Email:    "maria@example.com",
		Document: "123.456.789-00",
	})
	require.NoError(t, err)
	return customer
}

func (e *testEnv) seedProduct(t *testing.T, price string, stock int) *models.Product {
	t.Helper()
	m, err := models.MoneyFromString(price)
	require.NoError(t, err)
	product, err := e.products.Create(context.Background(), &models.Product{
		Name:          "Teclado Mecânico",
		Description:   "Teclado mecânico ABNT2",
		Price:         m,
		StockQuantity: stock,
	})
	require.NoError(t, err)
	return product
}

func (e *testEnv) seedOrder(t *testing.T) *models.Order {
	t.Helper()
	customer := e.seedCustomer(t)
	order, err := e.orderSvc.CreateOrder(context.Background(), customer.ID)
	require.NoError(t, err)
	return order
}

func money(t *testing.T, s string) models.Money {
	t.Helper()
	m, err := models.MoneyFromString(s)
	require.NoError(t, err)
	return m
}

func TestCreateOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("unknown customer rejected", func(t *testing.T) {
		_, err := env.orderSvc.CreateOrder(ctx, 999)
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("opens active empty order", func(t *testing.T) {
		customer := env.seedCustomer(t)

		order, err := env.orderSvc.CreateOrder(ctx, customer.ID)
		require.NoError(t, err)

		assert.Equal(t, models.OrderStatusActive, order.Status)
		assert.Empty(t, order.Items)
		assert.Equal(t, "0.00", order.Total.String())
		assert.Contains(t, env.publisher.published(), "order.created")
	})
}

func TestAddItem(t *testing.T) {
	t.Run("decrements stock and recalculates totals", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		order := env.seedOrder(t)
		product := env.seedProduct(t, "50.00", 10)

		updated, err := env.orderSvc.AddItem(ctx, order.ID, product.ID, 3)
		require.NoError(t, err)

		require.Len(t, updated.Items, 1)
		assert.Equal(t, "50.00", updated.Items[0].UnitPrice.String())
		assert.Equal(t, "150.00", updated.Items[0].Subtotal.String())
		assert.Equal(t, "150.00", updated.Total.String())
		assert.Equal(t, 7, env.products.stock(product.ID))
	})

	t.Run("insufficient stock leaves order and stock untouched", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		order := env.seedOrder(t)
		product := env.seedProduct(t, "50.00", 2)

		_, err := env.orderSvc.AddItem(ctx, order.ID, product.ID, 3)

		var stockErr *errs.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, 3, stockErr.Requested)
		assert.Equal(t, 2, stockErr.Available)

		assert.Equal(t, 2, env.products.stock(product.ID))
		reread, err := env.orderSvc.GetOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Empty(t, reread.Items)
	})

	t.Run("quantity below one rejected", func(t *testing.T) {
		env := newTestEnv(t)
		order := env.seedOrder(t)
		product := env.seedProduct(t, "50.00", 10)

		_, err := env.orderSvc.AddItem(context.Background(), order.ID, product.ID, 0)

		var verr *errs.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("cancelled order rejected", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		order := env.seedOrder(t)
		product := env.seedProduct(t, "50.00", 10)

		_, err := env.orderSvc.CancelOrder(ctx, order.ID)
		require.NoError(t, err)

		_, err = env.orderSvc.AddItem(ctx, order.ID, product.ID, 1)

		var stateErr *errs.StateError
		assert.ErrorAs(t, err, &stateErr)
	})
}

func TestUpdateItemQuantity(t *testing.T) {
	t.Run("increase draws from stock", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		order := env.seedOrder(t)
		product := env.seedProduct(t, "50.00", 10)

		updated, err := env.orderSvc.AddItem(ctx, order.ID, product.ID, 3)
		require.NoError(t, err)

		updated, err = env.orderSvc.UpdateItemQuantity(ctx, order.ID, updated.Items[0].ID, 5)
		require.NoError(t, err)

		assert.Equal(t, "250.00", updated.Total.String())
		assert.Equal(t, 5, env.products.stock(product.ID))
	})

	t.Run("decrease returns stock", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		order := env.seedOrder(t)
		product := env.seedProduct(t, "50.00", 10)

		updated, err := env.orderSvc.AddItem(ctx, order.ID, product.ID, 3)
		require.NoError(t, err)

		updated, err = env.orderSvc.UpdateItemQuantity(ctx, order.ID, updated.Items[0].ID, 1)
		require.NoError(t, err)

		assert.Equal(t, "50.00", updated.Total.String())
		assert.Equal(t, 9, env.products.stock(product.ID))
	})

	t.Run("increase past available stock rejected", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		order := env.seedOrder(t)
		product := env.seedProduct(t, "50.00", 4)

		updated, err := env.orderSvc.AddItem(ctx, order.ID, product.ID, 3)
		require.NoError(t, err)

		_, err = env.orderSvc.UpdateItemQuantity(ctx, order.ID, updated.Items[0].ID, 6)

		var stockErr *errs.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, 1, env.products.stock(product.ID))
	})

	t.Run("unknown item rejected", func(t *testing.T) {
		env := newTestEnv(t)
		order := env.seedOrder(t)

		_, err := env.orderSvc.UpdateItemQuantity(context.Background(), order.ID, 999, 2)
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestRemoveItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := env.seedOrder(t)
	product := env.seedProduct(t, "50.00", 10)

	updated, err := env.orderSvc.AddItem(ctx, order.ID, product.ID, 3)
	require.NoError(t, err)

	updated, err = env.orderSvc.RemoveItem(ctx, order.ID, updated.Items[0].ID)
	require.NoError(t, err)

	assert.Empty(t, updated.Items)
	assert.Equal(t, "0.00", updated.Total.String())
	assert.Equal(t, 10, env.products.stock(product.ID))
}

func TestApplyFreightAndDiscount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := env.seedOrder(t)
	product := env.seedProduct(t, "50.00", 10)

	_, err := env.orderSvc.AddItem(ctx, order.ID, product.ID, 3)
	require.NoError(t, err)

	t.Run("total combines charges", func(t *testing.T) {
		updated, err := env.orderSvc.ApplyFreightAndDiscount(ctx, order.ID, money(t, "15.00"), money(t, "10.00"))
		require.NoError(t, err)
		assert.Equal(t, "155.00", updated.Total.String())
	})

	t.Run("negative freight rejected", func(t *testing.T) {
		neg := models.NewMoney(money(t, "1.00").Neg())
		_, err := env.orderSvc.ApplyFreightAndDiscount(ctx, order.ID, neg, money(t, "0.00"))

		var verr *errs.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestCancelOrder(t *testing.T) {
	t.Run("restores stock and is idempotent", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		order := env.seedOrder(t)
		product := env.seedProduct(t, "50.00", 10)

		_, err := env.orderSvc.AddItem(ctx, order.ID, product.ID, 4)
		require.NoError(t, err)
		assert.Equal(t, 6, env.products.stock(product.ID))

		cancelled, err := env.orderSvc.CancelOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
		assert.Equal(t, 10, env.products.stock(product.ID))
		assert.Contains(t, env.publisher.published(), "order.cancelled")

		// Second cancel must not return stock twice.
		cancelled, err = env.orderSvc.CancelOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
		assert.Equal(t, 10, env.products.stock(product.ID))
	})

	t.Run("completed order cannot be cancelled", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()
		order := env.seedOrder(t)
		product := env.seedProduct(t, "50.00", 10)

		_, err := env.orderSvc.AddItem(ctx, order.ID, product.ID, 1)
		require.NoError(t, err)
		_, err = env.paymentSvc.InitiatePayment(ctx, order.ID, models.PaymentMethodPix)
		require.NoError(t, err)
		_, err = env.paymentSvc.ConfirmPayment(ctx, order.ID, true, "txn-1", "")
		require.NoError(t, err)

		_, err = env.orderSvc.CancelOrder(ctx, order.ID)

		var stateErr *errs.StateError
		assert.ErrorAs(t, err, &stateErr)
	})
}

func TestQuoteOrderPricing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := env.seedOrder(t)
	product := env.seedProduct(t, "125.00", 10)

	_, err := env.orderSvc.AddItem(ctx, order.ID, product.ID, 2)
	require.NoError(t, err)

	quote, err := env.orderSvc.QuoteOrderPricing(ctx, order.ID)
	require.NoError(t, err)

	assert.Equal(t, "250.00", quote.ProductTotal.String())
	assert.Equal(t, "20.00", quote.Freight.String())
	assert.Equal(t, "25.00", quote.Discount.String())
	assert.Equal(t, "245.00", quote.Total.String())
}

func TestGetOrderReadThroughCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := env.seedOrder(t)

	_, err := env.orderSvc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	_, err = env.orderSvc.GetOrder(ctx, order.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, env.cache.hits)
}

func TestListOrdersByStatusValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.orderSvc.ListOrdersByStatus(context.Background(), models.OrderStatus("WHATEVER"))

	var verr *errs.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestPendingSnapshotFollowsOrderMutations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := env.seedOrder(t)
	product := env.seedProduct(t, "50.00", 10)

	updated, err := env.orderSvc.AddItem(ctx, order.ID, product.ID, 1)
	require.NoError(t, err)

	payment, err := env.paymentSvc.InitiatePayment(ctx, order.ID, models.PaymentMethodBoleto)
	require.NoError(t, err)
	assert.Equal(t, "50.00", payment.FinalValue.String())

	_, err = env.orderSvc.UpdateItemQuantity(ctx, order.ID, updated.Items[0].ID, 3)
	require.NoError(t, err)

	payment, err = env.paymentSvc.GetPayment(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Equal(t, "150.00", payment.FinalValue.String())

	_, err = env.orderSvc.ApplyFreightAndDiscount(ctx, order.ID, money(t, "20.00"), money(t, "5.00"))
	require.NoError(t, err)

	payment, err = env.paymentSvc.GetPayment(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "150.00", payment.ProductTotal.String())
	assert.Equal(t, "20.00", payment.Freight.String())
	assert.Equal(t, "5.00", payment.Discount.String())
	assert.Equal(t, "165.00", payment.FinalValue.String())
}
