package repository

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/aweb-sistemas/vendas-orders-service/internal/errs"
	"github.com/aweb-sistemas/vendas-orders-service/internal/models"
)

var _ PaymentRepository = (*PostgresPaymentRepository)(nil)

// PostgresPaymentRepository implements PaymentRepository using PostgreSQL.
// The payments table carries a unique constraint on order_id; the
// one-payment-per-order invariant is enforced by the store, not just by the
// workflow.
type PostgresPaymentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresPaymentRepository creates a new PostgreSQL payment repository.
func NewPostgresPaymentRepository(db *sql.DB, logger *zap.Logger) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{db: db, logger: logger.Named("payment-repo")}
}

const paymentColumns = `id, order_id, method, status, total_products, discount, freight,
	final_value, external_reference, details, paid, created_at, version`

func (r *PostgresPaymentRepository) Create(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	q := querierFrom(ctx, r.db)

	query := `
		INSERT INTO payments (order_id, method, status, total_products, discount, freight,
			final_value, external_reference, details, paid, created_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), 1)
		RETURNING ` + paymentColumns

	row := q.QueryRowContext(ctx, query,
		payment.OrderID, payment.Method, payment.Status,
		payment.ProductTotal, payment.Discount, payment.Freight, payment.FinalValue,
		nullString(payment.ExternalReference), nullString(payment.Details), payment.Paid)

	created, err := scanPayment(row)
	if err != nil {
		r.logger.Error("payment_create_failed", zap.Int64("order_id", payment.OrderID), zap.Error(err))
		return nil, err
	}

	r.logger.Info("payment_created",
		zap.Int64("payment_id", created.ID),
		zap.Int64("order_id", created.OrderID))
	return created, nil
}

func (r *PostgresPaymentRepository) GetByOrderID(ctx context.Context, orderID int64) (*models.Payment, error) {
	q := querierFrom(ctx, r.db)

	row := q.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE order_id = $1`, orderID)

	payment, err := scanPayment(row)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *PostgresPaymentRepository) Update(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	q := querierFrom(ctx, r.db)

	query := `
		UPDATE payments
		SET method = $2, status = $3, total_products = $4, discount = $5, freight = $6,
		    final_value = $7, external_reference = $8, details = $9, paid = $10,
		    version = version + 1
		WHERE id = $1 AND version = $11
		RETURNING ` + paymentColumns

	row := q.QueryRowContext(ctx, query,
		payment.ID, payment.Method, payment.Status,
		payment.ProductTotal, payment.Discount, payment.Freight, payment.FinalValue,
		nullString(payment.ExternalReference), nullString(payment.Details),
		payment.Paid, payment.Version)

	updated, err := scanPayment(row)
	if err == sql.ErrNoRows {
		return nil, r.staleOrMissing(ctx, payment.ID)
	}
	if err != nil {
		r.logger.Error("payment_update_failed", zap.Int64("payment_id", payment.ID), zap.Error(err))
		return nil, err
	}
	return updated, nil
}

func (r *PostgresPaymentRepository) staleOrMissing(ctx context.Context, id int64) error {
	q := querierFrom(ctx, r.db)

	var exists bool
	if err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM payments WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return errs.ErrNotFound
	}
	return errs.ErrConflict
}

func scanPayment(row rowScanner) (*models.Payment, error) {
	var p models.Payment
	var externalRef, details sql.NullString

	err := row.Scan(
		&p.ID, &p.OrderID, &p.Method, &p.Status,
		&p.ProductTotal, &p.Discount, &p.Freight, &p.FinalValue,
		&externalRef, &details, &p.Paid, &p.CreatedAt, &p.Version,
	)
	if err != nil {
		return nil, err
	}

	if externalRef.Valid {
		p.ExternalReference = externalRef.String
	}
	if details.Valid {
		p.Details = details.String
	}
	return &p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
