package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/aq2208/storefront-api/internal/entity"
)

const orderCols = `id, user_id, shipping_address_id, total_amount, status, payment_status,
payment_method, transaction_ref, razorpay_order_id, razorpay_payment_id, razorpay_signature,
order_date, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(r rowScanner) (*entity.Order, error) {
	var (
		o                         entity.Order
		status, method            string
		txnRef, gwID, payID, sign sql.NullString
	)
	err := r.Scan(&o.ID, &o.UserID, &o.ShippingAddressID, &o.TotalAmount, &status, &o.PaymentStatus,
		&method, &txnRef, &gwID, &payID, &sign, &o.OrderDate, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = entity.Status(status)
	o.PaymentMethod = entity.PaymentMethod(method)
	o.TransactionRef = txnRef.String
	o.RazorpayOrderID = gwID.String
	o.RazorpayPaymentID = payID.String
	o.RazorpaySignature = sign.String
	return &o, nil
}

func loadOrderItems(ctx context.Context, q dbtx, orderID string) ([]entity.OrderItem, error) {
	rows, err := q.QueryContext(ctx, `
SELECT product_id, product_name, quantity, price, image
FROM order_items WHERE order_id = ? ORDER BY product_id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []entity.OrderItem
	for rows.Next() {
		var (
			it    entity.OrderItem
			image sql.NullString
		)
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.Quantity, &it.Price, &image); err != nil {
			return nil, err
		}
		it.Image = image.String
		items = append(items, it)
	}
	return items, rows.Err()
}

func getOrder(ctx context.Context, q dbtx, query string, args ...any) (*entity.Order, error) {
	ord, err := scanOrder(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	ord.Items, err = loadOrderItems(ctx, q, ord.ID)
	if err != nil {
		return nil, err
	}
	return ord, nil
}

func listOrders(ctx context.Context, q dbtx, query string, args ...any) ([]entity.Order, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []entity.Order
	for rows.Next() {
		ord, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *ord)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	// Attach item snapshots in one query.
	ids := make([]any, len(orders))
	ph := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		ph[i] = "?"
		index[orders[i].ID] = i
	}
	itemRows, err := q.QueryContext(ctx, `
SELECT order_id, product_id, product_name, quantity, price, image
FROM order_items WHERE order_id IN (`+strings.Join(ph, ",")+`) ORDER BY order_id, product_id`, ids...)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var (
			orderID string
			it      entity.OrderItem
			image   sql.NullString
		)
		if err := itemRows.Scan(&orderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.Price, &image); err != nil {
			return nil, err
		}
		it.Image = image.String
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return orders, itemRows.Err()
}

func (s *Store) ByID(ctx context.Context, orderID string) (*entity.Order, error) {
	return getOrder(ctx, s.db, `SELECT `+orderCols+` FROM orders WHERE id = ?`, orderID)
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]entity.Order, error) {
	return listOrders(ctx, s.db,
		`SELECT `+orderCols+` FROM orders WHERE user_id = ? ORDER BY order_date DESC`, userID)
}

func (s *Store) ListAll(ctx context.Context) ([]entity.Order, error) {
	return listOrders(ctx, s.db, `SELECT `+orderCols+` FROM orders ORDER BY order_date DESC`)
}

// --- transactional side ---

func (t *sqlTx) InsertOrder(ctx context.Context, o *entity.Order) error {
	_, err := t.tx.ExecContext(ctx, `
INSERT INTO orders (id, user_id, shipping_address_id, total_amount, status, payment_status,
payment_method, transaction_ref, order_date, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,NOW())`,
		o.ID, o.UserID, o.ShippingAddressID, o.TotalAmount, string(o.Status), o.PaymentStatus,
		string(o.PaymentMethod), nullStr(o.TransactionRef), o.OrderDate)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	for _, it := range o.Items {
		_, err := t.tx.ExecContext(ctx, `
INSERT INTO order_items (order_id, product_id, product_name, quantity, price, image)
VALUES (?,?,?,?,?,?)`,
			o.ID, it.ProductID, it.ProductName, it.Quantity, it.Price, nullStr(it.Image))
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (t *sqlTx) OrderForUpdate(ctx context.Context, orderID string) (*entity.Order, error) {
	return getOrder(ctx, t.tx, `SELECT `+orderCols+` FROM orders WHERE id = ? FOR UPDATE`, orderID)
}

func (t *sqlTx) OrderByGatewayID(ctx context.Context, gatewayOrderID string) (*entity.Order, error) {
	return getOrder(ctx, t.tx,
		`SELECT `+orderCols+` FROM orders WHERE razorpay_order_id = ? FOR UPDATE`, gatewayOrderID)
}

func (t *sqlTx) SetGatewayOrderID(ctx context.Context, orderID, gatewayOrderID string) error {
	return t.updateOrder(ctx, `
UPDATE orders SET razorpay_order_id = ?, updated_at = NOW() WHERE id = ?`, gatewayOrderID, orderID)
}

func (t *sqlTx) MarkPaid(ctx context.Context, orderID, paymentID, signature string) error {
	return t.updateOrder(ctx, `
UPDATE orders SET payment_status = ?, status = ?, razorpay_payment_id = ?, razorpay_signature = ?,
updated_at = NOW() WHERE id = ?`,
		entity.PaymentPaid, string(entity.StatusProcessing), paymentID, signature, orderID)
}

func (t *sqlTx) MarkCancelled(ctx context.Context, orderID, paymentStatus string) error {
	return t.updateOrder(ctx, `
UPDATE orders SET status = ?, payment_status = ?, updated_at = NOW() WHERE id = ?`,
		string(entity.StatusCancelled), paymentStatus, orderID)
}

func (t *sqlTx) SetStatus(ctx context.Context, orderID string, status entity.Status) error {
	return t.updateOrder(ctx, `
UPDATE orders SET status = ?, updated_at = NOW() WHERE id = ?`, string(status), orderID)
}

func (t *sqlTx) updateOrder(ctx context.Context, query string, args ...any) error {
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entity.ErrOrderNotFound
	}
	return nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
