package repository

import (
	"context"

	"github.com/aweb-sistemas/vendas-orders-service/internal/models"
)

// TxManager scopes a function to one atomic transaction against the store.
// Every order-service and payment-workflow operation runs inside exactly one
// scope; the transaction commits when fn returns nil and rolls back
// otherwise. Nested calls join the enclosing transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ProductRepository persists catalog entries.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*models.Product, error)
	SearchByName(ctx context.Context, name string) ([]*models.Product, error)
	// AdjustStock applies stock += delta atomically. The caller must have
	// validated sufficiency; a delta that would drive stock negative fails
	// with ErrConflict so the enclosing transaction rolls back.
	AdjustStock(ctx context.Context, id int64, delta int) error
}

// CustomerRepository persists buyer records.
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	GetByID(ctx context.Context, id int64) (*models.Customer, error)
	GetByEmail(ctx context.Context, email string) (*models.Customer, error)
	GetByDocument(ctx context.Context, document string) (*models.Customer, error)
	List(ctx context.Context) ([]*models.Customer, error)
}

// OrderRepository persists orders and their line items. Reads are eager:
// GetByID always returns the order with its full item collection loaded.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	// Update writes the order row (status, freight, discount, total) with an
	// optimistic version compare-and-increment; a stale version fails with
	// ErrConflict.
	Update(ctx context.Context, order *models.Order) (*models.Order, error)
	AddItem(ctx context.Context, item *models.OrderItem) (*models.OrderItem, error)
	UpdateItem(ctx context.Context, item *models.OrderItem) error
	RemoveItem(ctx context.Context, orderID, itemID int64) error
	ListAll(ctx context.Context) ([]*models.Order, error)
	ListByStatus(ctx context.Context, status models.OrderStatus) ([]*models.Order, error)
	ListByCustomerEmail(ctx context.Context, email string) ([]*models.Order, error)
}

// PaymentRepository persists payment records, at most one per order.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	GetByOrderID(ctx context.Context, orderID int64) (*models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) (*models.Payment, error)
}

// OrderCache defines caching operations for orders.
type OrderCache interface {
	Get(ctx context.Context, id int64) (*models.Order, error)
	Set(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id int64) error
	GetByCustomerEmail(ctx context.Context, email string) ([]*models.Order, error)
	SetByCustomerEmail(ctx context.Context, email string, orders []*models.Order) error
	InvalidateByCustomerEmail(ctx context.Context, email string) error
}
