package repo

import (
	"context"
	"database/sql"

	"github.com/aq2208/storefront-api/internal/entity"
)

func listCartItems(ctx context.Context, q dbtx, userID string) ([]entity.CartItem, error) {
	rows, err := q.QueryContext(ctx, `
SELECT user_id, product_id, quantity, name, price, image, updated_at
FROM cart_items WHERE user_id = ? ORDER BY updated_at DESC, product_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []entity.CartItem
	for rows.Next() {
		var (
			it    entity.CartItem
			image sql.NullString
		)
		if err := rows.Scan(&it.UserID, &it.ProductID, &it.Quantity, &it.Name, &it.Price, &image, &it.UpdatedAt); err != nil {
			return nil, err
		}
		it.Image = image.String
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *Store) Items(ctx context.Context, userID string) ([]entity.CartItem, error) {
	return listCartItems(ctx, s.db, userID)
}

// Add inserts the (user, product) row or bumps its quantity on repeat adds.
func (s *Store) Add(ctx context.Context, item entity.CartItem) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO cart_items (user_id, product_id, quantity, name, price, image, updated_at)
VALUES (?,?,?,?,?,?,NOW())
ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity), updated_at = NOW()`,
		item.UserID, item.ProductID, item.Quantity, item.Name, item.Price, nullStr(item.Image))
	return err
}

func (s *Store) SetQuantity(ctx context.Context, userID, productID string, qty int) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE cart_items SET quantity = ?, updated_at = NOW() WHERE user_id = ? AND product_id = ?`,
		qty, userID, productID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entity.ErrCartItemNotFound
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, userID, productID string) error {
	res, err := s.db.ExecContext(ctx, `
DELETE FROM cart_items WHERE user_id = ? AND product_id = ?`, userID, productID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entity.ErrCartItemNotFound
	}
	return nil
}

// --- transactional side ---

func (t *sqlTx) CartItems(ctx context.Context, userID string) ([]entity.CartItem, error) {
	return listCartItems(ctx, t.tx, userID)
}

func (t *sqlTx) ClearCart(ctx context.Context, userID string) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, userID)
	return err
}
