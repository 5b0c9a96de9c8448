package repository

import (
	"context"
	"database/sql"

	"go.uber.org/zap"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type txKey struct{}

// SQLTxManager implements TxManager over a *sql.DB.
type SQLTxManager struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLTxManager creates a transaction manager for the given pool.
func NewSQLTxManager(db *sql.DB, logger *zap.Logger) *SQLTxManager {
	return &SQLTxManager{db: db, logger: logger.Named("tx")}
}

// WithinTx runs fn inside a transaction carried on the context. If the
// context already carries a transaction, fn joins it and commit/rollback stay
// with the outermost caller.
func (m *SQLTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			m.logger.Error("rollback_failed", zap.Error(rbErr))
		}
		return err
	}

	return tx.Commit()
}

// querierFrom returns the transaction bound to ctx, or the bare pool when the
// call is outside any transaction scope (read-only paths).
func querierFrom(ctx context.Context, db *sql.DB) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}
