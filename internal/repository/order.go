package repository

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/aweb-sistemas/vendas-orders-service/internal/errs"
	"github.com/aweb-sistemas/vendas-orders-service/internal/models"
)

var _ OrderRepository = (*PostgresOrderRepository)(nil)

// PostgresOrderRepository implements OrderRepository using PostgreSQL.
// Item collections are always loaded eagerly; no path depends on deferred
// loading of related rows.
type PostgresOrderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresOrderRepository creates a new PostgreSQL order repository.
func NewPostgresOrderRepository(db *sql.DB, logger *zap.Logger) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db, logger: logger.Named("order-repo")}
}

const orderColumns = `id, customer_id, status, created_at, freight, discount, total, version`

func (r *PostgresOrderRepository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	q := querierFrom(ctx, r.db)

	query := `
		INSERT INTO orders (customer_id, status, created_at, freight, discount, total, version)
		VALUES ($1, $2, $3, $4, $5, $6, 1)
		RETURNING ` + orderColumns

	row := q.QueryRowContext(ctx, query,
		order.CustomerID, order.Status, order.CreatedAt,
		order.Freight, order.Discount, order.Total)

	created, err := scanOrder(row)
	if err != nil {
		r.logger.Error("order_create_failed", zap.Int64("customer_id", order.CustomerID), zap.Error(err))
		return nil, err
	}
	created.Items = []models.OrderItem{}

	r.logger.Info("order_created", zap.Int64("order_id", created.ID))
	return created, nil
}

func (r *PostgresOrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	q := querierFrom(ctx, r.db)

	row := q.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)

	order, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *PostgresOrderRepository) Update(ctx context.Context, order *models.Order) (*models.Order, error) {
	q := querierFrom(ctx, r.db)

	query := `
		UPDATE orders
		SET status = $2, freight = $3, discount = $4, total = $5, version = version + 1
		WHERE id = $1 AND version = $6
		RETURNING ` + orderColumns

	row := q.QueryRowContext(ctx, query,
		order.ID, order.Status, order.Freight, order.Discount, order.Total, order.Version)

	updated, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, r.staleOrMissing(ctx, order.ID)
	}
	if err != nil {
		r.logger.Error("order_update_failed", zap.Int64("order_id", order.ID), zap.Error(err))
		return nil, err
	}

	if err := r.loadItems(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *PostgresOrderRepository) AddItem(ctx context.Context, item *models.OrderItem) (*models.OrderItem, error) {
	q := querierFrom(ctx, r.db)

	query := `
		INSERT INTO order_items (order_id, product_id, quantity, unit_price, version)
		VALUES ($1, $2, $3, $4, 1)
		RETURNING id, order_id, product_id, quantity, unit_price, version`

	var created models.OrderItem
	err := q.QueryRowContext(ctx, query,
		item.OrderID, item.ProductID, item.Quantity, item.UnitPrice,
	).Scan(&created.ID, &created.OrderID, &created.ProductID,
		&created.Quantity, &created.UnitPrice, &created.Version)
	if err != nil {
		return nil, err
	}

	created.Subtotal = created.ComputeSubtotal()
	return &created, nil
}

func (r *PostgresOrderRepository) UpdateItem(ctx context.Context, item *models.OrderItem) error {
	q := querierFrom(ctx, r.db)

	result, err := q.ExecContext(ctx, `
		UPDATE order_items
		SET quantity = $3, version = version + 1
		WHERE id = $1 AND order_id = $2 AND version = $4`,
		item.ID, item.OrderID, item.Quantity, item.Version)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return r.staleOrMissingItem(ctx, item.OrderID, item.ID)
	}
	return nil
}

func (r *PostgresOrderRepository) RemoveItem(ctx context.Context, orderID, itemID int64) error {
	q := querierFrom(ctx, r.db)

	result, err := q.ExecContext(ctx,
		`DELETE FROM order_items WHERE id = $1 AND order_id = $2`, itemID, orderID)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *PostgresOrderRepository) ListAll(ctx context.Context) ([]*models.Order, error) {
	return r.list(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *PostgresOrderRepository) ListByStatus(ctx context.Context, status models.OrderStatus) ([]*models.Order, error) {
	return r.list(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE status = $1 ORDER BY created_at DESC`,
		status)
}

func (r *PostgresOrderRepository) ListByCustomerEmail(ctx context.Context, email string) ([]*models.Order, error) {
	return r.list(ctx, `
		SELECT o.id, o.customer_id, o.status, o.created_at, o.freight, o.discount, o.total, o.version
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE c.email = $1
		ORDER BY o.created_at DESC`,
		email)
}

func (r *PostgresOrderRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Order, error) {
	q := querierFrom(ctx, r.db)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*models.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, order := range orders {
		if err := r.loadItems(ctx, order); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *PostgresOrderRepository) loadItems(ctx context.Context, order *models.Order) error {
	q := querierFrom(ctx, r.db)

	rows, err := q.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price, version
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`,
		order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	items := make([]models.OrderItem, 0)
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID,
			&item.Quantity, &item.UnitPrice, &item.Version); err != nil {
			return err
		}
		item.Subtotal = item.ComputeSubtotal()
		items = append(items, item)
	}
	order.Items = items
	return rows.Err()
}

func (r *PostgresOrderRepository) staleOrMissing(ctx context.Context, id int64) error {
	q := querierFrom(ctx, r.db)

	var exists bool
	if err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return errs.ErrNotFound
	}
	return errs.ErrConflict
}

func (r *PostgresOrderRepository) staleOrMissingItem(ctx context.Context, orderID, itemID int64) error {
	q := querierFrom(ctx, r.db)

	var exists bool
	if err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM order_items WHERE id = $1 AND order_id = $2)`,
		itemID, orderID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return errs.ErrNotFound
	}
	return errs.ErrConflict
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.ID, &o.CustomerID, &o.Status, &o.CreatedAt,
		&o.Freight, &o.Discount, &o.Total, &o.Version,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
