package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/aq2208/storefront-api/internal/entity"
)

const mysqlErrDupEntry = 1062

func (s *Store) List(ctx context.Context) ([]entity.StockEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT product_id, product_name, quantity, updated_at FROM stock ORDER BY product_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []entity.StockEntry
	for rows.Next() {
		var e entity.StockEntry
		if err := rows.Scan(&e.ProductID, &e.ProductName, &e.Quantity, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) Create(ctx context.Context, e *entity.StockEntry) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO stock (product_id, product_name, quantity, updated_at) VALUES (?,?,?,NOW())`,
		e.ProductID, e.ProductName, e.Quantity)
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlErrDupEntry {
		return entity.ErrStockExists
	}
	return err
}

func (s *Store) SetLevel(ctx context.Context, productID, productName string, qty int) error {
	var res sql.Result
	var err error
	if productName != "" {
		res, err = s.db.ExecContext(ctx, `
UPDATE stock SET quantity = ?, product_name = ?, updated_at = NOW() WHERE product_id = ?`,
			qty, productName, productID)
	} else {
		res, err = s.db.ExecContext(ctx, `
UPDATE stock SET quantity = ?, updated_at = NOW() WHERE product_id = ?`, qty, productID)
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entity.ErrStockNotFound
	}
	return nil
}

// --- transactional side ---

func (t *sqlTx) StockAvailable(ctx context.Context, productID string) (int, error) {
	var qty int
	err := t.tx.QueryRowContext(ctx,
		`SELECT quantity FROM stock WHERE product_id = ?`, productID).Scan(&qty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return qty, err
}

// DebitStock is the conditional decrement. The quantity guard rides on the
// UPDATE itself, so the InnoDB row lock serializes concurrent debits of the
// last unit and exactly one succeeds.
func (t *sqlTx) DebitStock(ctx context.Context, productID string, qty int) error {
	res, err := t.tx.ExecContext(ctx, `
UPDATE stock SET quantity = quantity - ?, updated_at = NOW()
WHERE product_id = ? AND quantity >= ?`, qty, productID, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		ise := &entity.InsufficientStockError{ProductID: productID}
		// Missing ledger rows count as insufficient too; name the product
		// when we have one.
		_ = t.tx.QueryRowContext(ctx,
			`SELECT product_name FROM stock WHERE product_id = ?`, productID).Scan(&ise.ProductName)
		return ise
	}
	return nil
}

func (t *sqlTx) RestoreStock(ctx context.Context, productID string, qty int) error {
	res, err := t.tx.ExecContext(ctx, `
UPDATE stock SET quantity = quantity + ?, updated_at = NOW() WHERE product_id = ?`, qty, productID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entity.ErrStockNotFound
	}
	return nil
}
