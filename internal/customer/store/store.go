package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/enerjios/enerjios/internal/customer"
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

const selectCustomerColumns = `id, name, email, phone, company, city, address, created_at, updated_at, deleted_at`

func scanCustomer(s scanner) (*customer.Customer, error) {
	var c customer.Customer

	if err := s.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.City, &c.Address,
		&c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	); err != nil {
		return nil, err
	}

	return &c, nil
}

func (s *Store) CreateCustomer(ctx context.Context, c *customer.Customer) error {
	query := `
		INSERT INTO customers (name, email, phone, company, city, address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.Name, c.Email, c.Phone, c.Company, c.City, c.Address,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating customer: %w", err)
	}

	return nil
}

func (s *Store) GetCustomer(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	query := `SELECT ` + selectCustomerColumns + ` FROM customers WHERE id = $1 AND deleted_at IS NULL`

	c, err := scanCustomer(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, customer.ErrNotFound
		}

		return nil, fmt.Errorf("getting customer: %w", err)
	}

	return c, nil
}

func (s *Store) ListCustomers(ctx context.Context, filter customer.ListFilter) ([]*customer.Customer, error) {
	query := `SELECT ` + selectCustomerColumns + ` FROM customers WHERE deleted_at IS NULL`

	var args []any

	argIdx := 1

	if filter.City != nil {
		query += fmt.Sprintf(" AND city = $%d", argIdx)

		args = append(args, *filter.City)
		argIdx++
	}

	if filter.Search != nil {
		query += fmt.Sprintf(" AND (name ILIKE '%%' || $%d || '%%' OR company ILIKE '%%' || $%d || '%%' OR email ILIKE '%%' || $%d || '%%')", argIdx, argIdx, argIdx)

		args = append(args, *filter.Search)
		argIdx++
	}

	query += " ORDER BY name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	defer rows.Close()

	var customers []*customer.Customer

	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning customer: %w", err)
		}

		customers = append(customers, c)
	}

	return customers, rows.Err()
}

func (s *Store) UpdateCustomer(ctx context.Context, c *customer.Customer) error {
	query := `
		UPDATE customers
		SET name = $1, email = $2, phone = $3, company = $4, city = $5, address = $6, updated_at = NOW()
		WHERE id = $7 AND deleted_at IS NULL
	`

	_, err := s.db.ExecContext(ctx, query,
		c.Name, c.Email, c.Phone, c.Company, c.City, c.Address, c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating customer: %w", err)
	}

	return nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE customers
		SET deleted_at = NOW()
		WHERE id = $1
	`

	_, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting customer: %w", err)
	}

	return nil
}
