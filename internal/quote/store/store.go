package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/enerjios/enerjios/internal/quote"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectQuoteColumns = `
	q.id, q.customer_id, q.status, q.total, q.approved_at, q.approved_by, q.created_at, q.updated_at
`

// Expected column order: see selectQuoteColumns.
func scanQuote(s scanner) (*quote.Quote, error) {
	var q quote.Quote

	var statusStr string

	if err := s.Scan(
		&q.ID, &q.CustomerID, &statusStr, &q.Total,
		&q.ApprovedAt, &q.ApprovedBy, &q.CreatedAt, &q.UpdatedAt,
	); err != nil {
		return nil, err
	}

	q.Status = quote.Status(statusStr)

	return &q, nil
}

func (s *Store) CreateQuote(ctx context.Context, q *quote.Quote) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	quoteQuery := `
		INSERT INTO quotes (customer_id, status, total, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	err = dbTx.QueryRowContext(ctx, quoteQuery,
		q.CustomerID,
		q.Status,
		q.Total,
	).Scan(&q.ID, &q.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating quote: %w", err)
	}

	if err := insertItems(ctx, dbTx, q); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing quote: %w", err)
	}

	return nil
}

func insertItems(ctx context.Context, q querier, qt *quote.Quote) error {
	itemQuery := `
		INSERT INTO quote_items (quote_id, kind, product_id, description, quantity, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	for _, item := range qt.Items {
		item.QuoteID = qt.ID

		err := q.QueryRowContext(ctx, itemQuery,
			qt.ID,
			item.Kind,
			item.ProductID,
			item.Description,
			item.Quantity,
			item.UnitPrice,
			item.LineTotal,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("creating quote item: %w", err)
		}
	}

	return nil
}

// UpdateQuote rewrites an unapproved quote: header fields and the full
// item set, in one transaction.
func (s *Store) UpdateQuote(ctx context.Context, q *quote.Quote) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	quoteQuery := `
		UPDATE quotes
		SET customer_id = $1, total = $2, updated_at = NOW()
		WHERE id = $3
	`

	res, err := dbTx.ExecContext(ctx, quoteQuery, q.CustomerID, q.Total, q.ID)
	if err != nil {
		return fmt.Errorf("updating quote: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return quote.ErrNotFound
	}

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM quote_items WHERE quote_id = $1`, q.ID); err != nil {
		return fmt.Errorf("clearing quote items: %w", err)
	}

	if err := insertItems(ctx, dbTx, q); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing quote update: %w", err)
	}

	return nil
}

func (s *Store) GetQuote(ctx context.Context, id uuid.UUID) (*quote.Quote, error) {
	return getQuote(ctx, s.db, id, false)
}

func getQuote(ctx context.Context, q querier, id uuid.UUID, forUpdate bool) (*quote.Quote, error) {
	query := `SELECT ` + selectQuoteColumns + ` FROM quotes q WHERE q.id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	qt, err := scanQuote(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, quote.ErrNotFound
		}

		return nil, fmt.Errorf("getting quote: %w", err)
	}

	items, err := loadItems(ctx, q, id)
	if err != nil {
		return nil, err
	}

	qt.Items = items

	return qt, nil
}

func loadItems(ctx context.Context, q querier, quoteID uuid.UUID) ([]*quote.Item, error) {
	query := `
		SELECT i.id, i.quote_id, i.kind, i.product_id, COALESCE(p.name, ''),
		       i.description, i.quantity, i.unit_price, i.line_total
		FROM quote_items i
		LEFT JOIN products p ON i.product_id = p.id
		WHERE i.quote_id = $1
		ORDER BY i.id
	`

	rows, err := q.QueryContext(ctx, query, quoteID)
	if err != nil {
		return nil, fmt.Errorf("loading quote items: %w", err)
	}
	defer rows.Close()

	var items []*quote.Item

	for rows.Next() {
		var item quote.Item

		var kindStr string

		if err := rows.Scan(
			&item.ID, &item.QuoteID, &kindStr, &item.ProductID, &item.ProductName,
			&item.Description, &item.Quantity, &item.UnitPrice, &item.LineTotal,
		); err != nil {
			return nil, fmt.Errorf("scanning quote item: %w", err)
		}

		item.Kind = quote.ItemKind(kindStr)
		items = append(items, &item)
	}

	return items, rows.Err()
}

func (s *Store) ListQuotes(ctx context.Context, filter quote.ListFilter) ([]*quote.Quote, error) {
	query := `SELECT ` + selectQuoteColumns + ` FROM quotes q WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND q.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.CustomerID != nil {
		query += fmt.Sprintf(" AND q.customer_id = $%d", argIdx)

		args = append(args, *filter.CustomerID)
		argIdx++
	}

	query += " ORDER BY q.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing quotes: %w", err)
	}
	defer rows.Close()

	var quotes []*quote.Quote

	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning quote: %w", err)
		}

		quotes = append(quotes, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating quote rows: %w", err)
	}

	for _, q := range quotes {
		items, err := loadItems(ctx, s.db, q.ID)
		if err != nil {
			return nil, err
		}

		q.Items = items
	}

	return quotes, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status quote.Status) error {
	query := `
		UPDATE quotes
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	_, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("updating quote status: %w", err)
	}

	return nil
}

type approvalTx struct {
	tx      *sql.Tx
	quoteID uuid.UUID
}

// BeginApproval opens the transaction backing a single approval attempt.
// All stock checks and decrements happen on rows locked inside it.
func (s *Store) BeginApproval(ctx context.Context, quoteID uuid.UUID) (quote.ApprovalTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning approval tx: %w", err)
	}

	return &approvalTx{tx: dbTx, quoteID: quoteID}, nil
}

func (atx *approvalTx) Commit() error   { return atx.tx.Commit() }
func (atx *approvalTx) Rollback() error { return atx.tx.Rollback() }

func (atx *approvalTx) LockQuote(ctx context.Context) (*quote.Quote, error) {
	return getQuote(ctx, atx.tx, atx.quoteID, true)
}

func (atx *approvalTx) MarkApproved(ctx context.Context, actorID uuid.UUID, at time.Time) error {
	query := `
		UPDATE quotes
		SET status = $1, approved_at = $2, approved_by = $3, updated_at = NOW()
		WHERE id = $4
	`

	_, err := atx.tx.ExecContext(ctx, query, quote.StatusApproved, at, actorID, atx.quoteID)
	if err != nil {
		return fmt.Errorf("marking quote approved: %w", err)
	}

	return nil
}

// LockProductStock takes a row lock on the product so concurrent
// approvals touching the same product serialize their check-then-decrement.
func (atx *approvalTx) LockProductStock(ctx context.Context, productID uuid.UUID) (string, int, error) {
	query := `SELECT name, stock FROM products WHERE id = $1 FOR UPDATE`

	var (
		name  string
		stock int
	)

	if err := atx.tx.QueryRowContext(ctx, query, productID).Scan(&name, &stock); err != nil {
		if err == sql.ErrNoRows {
			return "", 0, fmt.Errorf("product %s does not exist", productID)
		}

		return "", 0, fmt.Errorf("locking product stock: %w", err)
	}

	return name, stock, nil
}

func (atx *approvalTx) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) error {
	query := `UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2`

	if _, err := atx.tx.ExecContext(ctx, query, qty, productID); err != nil {
		return fmt.Errorf("decrementing stock: %w", err)
	}

	return nil
}
