package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/aq2208/storefront-api/internal/entity"
)

const productCols = `id, name, description, category, price, original_price, images`

func scanProduct(r rowScanner) (*entity.Product, error) {
	var (
		p      entity.Product
		images sql.NullString
	)
	if err := r.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.OriginalPrice, &images); err != nil {
		return nil, err
	}
	if images.Valid && images.String != "" {
		// images is a JSON array column
		if err := json.Unmarshal([]byte(images.String), &p.Images); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func (s *Store) ProductByID(ctx context.Context, productID string) (*entity.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx,
		`SELECT `+productCols+` FROM products WHERE id = ?`, productID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrProductNotFound
	}
	return p, err
}

func (s *Store) Products(ctx context.Context) ([]entity.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+productCols+` FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// Owned reports whether the address row exists and belongs to the user.
func (s *Store) Owned(ctx context.Context, addressID, userID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM addresses WHERE id = ? AND user_id = ?`, addressID, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
