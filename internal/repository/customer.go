package repository

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/aweb-sistemas/vendas-orders-service/internal/errs"
	"github.com/aweb-sistemas/vendas-orders-service/internal/models"
)

var _ CustomerRepository = (*PostgresCustomerRepository)(nil)

// PostgresCustomerRepository implements CustomerRepository using PostgreSQL.
type PostgresCustomerRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresCustomerRepository creates a new PostgreSQL customer repository.
func NewPostgresCustomerRepository(db *sql.DB, logger *zap.Logger) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{db: db, logger: logger.Named("customer-repo")}
}

const customerColumns = `id, name, email, document, phone, street, city, state, postal_code, created_at`

func (r *PostgresCustomerRepository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	q := querierFrom(ctx, r.db)

	query := `
		INSERT INTO customers (name, email, document, phone, street, city, state, postal_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING ` + customerColumns

	row := q.QueryRowContext(ctx, query,
		customer.Name, customer.Email, customer.Document, customer.Phone,
		customer.Street, customer.City, customer.State, customer.PostalCode)

	created, err := scanCustomer(row)
	if err != nil {
		r.logger.Error("customer_create_failed", zap.String("email", customer.Email), zap.Error(err))
		return nil, err
	}

	r.logger.Info("customer_created", zap.Int64("customer_id", created.ID))
	return created, nil
}

func (r *PostgresCustomerRepository) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	q := querierFrom(ctx, r.db)

	row := q.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)

	customer, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (r *PostgresCustomerRepository) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	q := querierFrom(ctx, r.db)

	row := q.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE email = $1`, email)

	customer, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (r *PostgresCustomerRepository) GetByDocument(ctx context.Context, document string) (*models.Customer, error) {
	q := querierFrom(ctx, r.db)

	row := q.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE document = $1`, document)

	customer, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (r *PostgresCustomerRepository) List(ctx context.Context) ([]*models.Customer, error) {
	q := querierFrom(ctx, r.db)

	rows, err := q.QueryContext(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]*models.Customer, 0)
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	return customers, rows.Err()
}

func scanCustomer(row rowScanner) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Document, &c.Phone,
		&c.Street, &c.City, &c.State, &c.PostalCode, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
