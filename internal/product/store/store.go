package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/enerjios/enerjios/internal/product"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, name, sku, unit_price, stock, created_at, updated_at
func scanProduct(s scanner) (*product.Product, error) {
	var p product.Product

	if err := s.Scan(
		&p.ID, &p.Name, &p.SKU, &p.UnitPrice, &p.Stock,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &p, nil
}

const selectProductColumns = `id, name, sku, unit_price, stock, created_at, updated_at`

func (s *Store) CreateProduct(ctx context.Context, p *product.Product) error {
	query := `
		INSERT INTO products (name, sku, unit_price, stock, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		p.Name,
		p.SKU,
		p.UnitPrice,
		p.Stock,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating product: %w", err)
	}

	return nil
}

func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	query := `SELECT ` + selectProductColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, product.ErrNotFound
		}

		return nil, fmt.Errorf("getting product: %w", err)
	}

	return p, nil
}

func (s *Store) ListProducts(ctx context.Context, filter product.ListFilter) ([]*product.Product, error) {
	query := `SELECT ` + selectProductColumns + ` FROM products WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Search != nil {
		query += fmt.Sprintf(" AND (name ILIKE '%%' || $%d || '%%' OR sku ILIKE '%%' || $%d || '%%')", argIdx, argIdx)

		args = append(args, *filter.Search)
		argIdx++
	}

	if filter.InStock {
		query += " AND stock > 0"
	}

	query += " ORDER BY name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []*product.Product

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}

		products = append(products, p)
	}

	return products, rows.Err()
}

func (s *Store) UpdateProduct(ctx context.Context, p *product.Product) error {
	query := `
		UPDATE products
		SET name = $1, sku = $2, unit_price = $3, updated_at = NOW()
		WHERE id = $4
	`

	_, err := s.db.ExecContext(ctx, query,
		p.Name,
		p.SKU,
		p.UnitPrice,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating product: %w", err)
	}

	return nil
}

// AdjustStock applies the delta only when the result stays non-negative.
// The guard lives in the WHERE clause so concurrent adjustments cannot
// race the check.
func (s *Store) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*product.Product, error) {
	query := `
		UPDATE products
		SET stock = stock + $1, updated_at = NOW()
		WHERE id = $2 AND stock + $1 >= 0
		RETURNING ` + selectProductColumns

	p, err := scanProduct(s.db.QueryRowContext(ctx, query, delta, id))
	if err != nil {
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("adjusting stock: %w", err)
		}

		// No row updated: either the product is missing or the guard refused.
		if _, getErr := s.GetProduct(ctx, id); getErr != nil {
			return nil, getErr
		}

		return nil, product.ErrStockBelowZero
	}

	return p, nil
}
