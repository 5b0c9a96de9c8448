package repository

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/aweb-sistemas/vendas-orders-service/internal/errs"
	"github.com/aweb-sistemas/vendas-orders-service/internal/models"
)

var _ ProductRepository = (*PostgresProductRepository)(nil)

// PostgresProductRepository implements ProductRepository using PostgreSQL.
type PostgresProductRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresProductRepository creates a new PostgreSQL product repository.
func NewPostgresProductRepository(db *sql.DB, logger *zap.Logger) *PostgresProductRepository {
	return &PostgresProductRepository{db: db, logger: logger.Named("product-repo")}
}

const productColumns = `id, name, description, price, stock_quantity, version, created_at, updated_at`

func (r *PostgresProductRepository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	q := querierFrom(ctx, r.db)

	query := `
		INSERT INTO products (name, description, price, stock_quantity, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 1, NOW(), NOW())
		RETURNING ` + productColumns

	row := q.QueryRowContext(ctx, query,
		product.Name, product.Description, product.Price, product.StockQuantity)

	created, err := scanProduct(row)
	if err != nil {
		r.logger.Error("product_create_failed", zap.String("name", product.Name), zap.Error(err))
		return nil, err
	}

	r.logger.Info("product_created", zap.Int64("product_id", created.ID))
	return created, nil
}

func (r *PostgresProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	q := querierFrom(ctx, r.db)

	row := q.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	product, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *PostgresProductRepository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	q := querierFrom(ctx, r.db)

	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, stock_quantity = $5,
		    version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $6
		RETURNING ` + productColumns

	row := q.QueryRowContext(ctx, query,
		product.ID, product.Name, product.Description, product.Price,
		product.StockQuantity, product.Version)

	updated, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, r.staleOrMissing(ctx, product.ID)
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *PostgresProductRepository) Delete(ctx context.Context, id int64) error {
	q := querierFrom(ctx, r.db)

	result, err := q.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errs.ErrNotFound
	}

	r.logger.Info("product_deleted", zap.Int64("product_id", id))
	return nil
}

func (r *PostgresProductRepository) List(ctx context.Context) ([]*models.Product, error) {
	q := querierFrom(ctx, r.db)

	rows, err := q.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *PostgresProductRepository) SearchByName(ctx context.Context, name string) ([]*models.Product, error) {
	q := querierFrom(ctx, r.db)

	rows, err := q.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE name ILIKE '%' || $1 || '%' ORDER BY name`,
		name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectProducts(rows)
}

// AdjustStock applies the delta in-store. The guard keeps stock from ever
// going negative even when the caller's read was stale; a failed guard is
// reported as a retryable conflict.
func (r *PostgresProductRepository) AdjustStock(ctx context.Context, id int64, delta int) error {
	q := querierFrom(ctx, r.db)

	result, err := q.ExecContext(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity + $2, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND stock_quantity + $2 >= 0`,
		id, delta)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return r.staleOrMissing(ctx, id)
	}

	r.logger.Debug("stock_adjusted", zap.Int64("product_id", id), zap.Int("delta", delta))
	return nil
}

func (r *PostgresProductRepository) staleOrMissing(ctx context.Context, id int64) error {
	q := querierFrom(ctx, r.db)

	var exists bool
	if err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return errs.ErrNotFound
	}
	return errs.ErrConflict
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity,
		&p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectProducts(rows *sql.Rows) ([]*models.Product, error) {
	products := make([]*models.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}
