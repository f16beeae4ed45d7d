package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aq2208/storefront-api/internal/usecase"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so row scanning helpers can
// be shared between transactional and plain reads.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the MySQL-backed implementation of every persistence port:
// usecase.TxRunner plus the order/cart/stock/catalog/address readers.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// WithinTx runs fn inside one transaction; any error rolls everything back.
func (s *Store) WithinTx(ctx context.Context, fn func(tx usecase.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&sqlTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// sqlTx implements usecase.Tx on top of one *sql.Tx.
type sqlTx struct {
	tx *sql.Tx
}

var (
	_ usecase.TxRunner      = (*Store)(nil)
	_ usecase.OrderReader   = (*Store)(nil)
	_ usecase.CartStore     = (*Store)(nil)
	_ usecase.StockStore    = (*Store)(nil)
	_ usecase.CatalogReader = (*Store)(nil)
	_ usecase.AddressReader = (*Store)(nil)
	_ usecase.Tx            = (*sqlTx)(nil)
)
