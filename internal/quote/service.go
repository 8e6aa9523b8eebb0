package quote

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=quote
type Repository interface {
	CreateQuote(ctx context.Context, q *Quote) error
	GetQuote(ctx context.Context, id uuid.UUID) (*Quote, error)
	ListQuotes(ctx context.Context, filter ListFilter) ([]*Quote, error)
	UpdateQuote(ctx context.Context, q *Quote) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error

	BeginApproval(ctx context.Context, quoteID uuid.UUID) (ApprovalTx, error)
}

// ApprovalTx is the unit of work backing a single approval attempt. All
// calls run inside one database transaction; nothing is visible to other
// readers until Commit.
type ApprovalTx interface {
	// LockQuote re-reads the quote and its items with a row lock, so a
	// concurrent approval of the same quote blocks here.
	LockQuote(ctx context.Context) (*Quote, error)
	MarkApproved(ctx context.Context, actorID uuid.UUID, at time.Time) error
	// LockProductStock locks the product row and returns its name and
	// current stock.
	LockProductStock(ctx context.Context, productID uuid.UUID) (name string, stock int, err error)
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type ItemParams struct {
	Kind        ItemKind
	ProductID   *uuid.UUID
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
}

type CreateParams struct {
	CustomerID uuid.UUID
	Items      []ItemParams
}

type ListFilter struct {
	Status     *Status
	CustomerID *uuid.UUID
}

// buildItems validates the line-item params and returns the priced items
// with their sum.
func buildItems(params []ItemParams) ([]*Item, decimal.Decimal, error) {
	if len(params) == 0 {
		return nil, decimal.Zero, fmt.Errorf("quote needs at least one item")
	}

	var items []*Item

	total := decimal.Zero

	for _, ip := range params {
		if ip.Quantity <= 0 {
			return nil, decimal.Zero, fmt.Errorf("item quantity must be positive")
		}

		if ip.Kind == ItemProduct && ip.ProductID == nil {
			return nil, decimal.Zero, fmt.Errorf("product item needs a product reference")
		}

		lineTotal := ip.UnitPrice.Mul(decimal.NewFromInt(int64(ip.Quantity)))

		items = append(items, &Item{
			Kind:        ip.Kind,
			ProductID:   ip.ProductID,
			Description: ip.Description,
			Quantity:    ip.Quantity,
			UnitPrice:   ip.UnitPrice,
			LineTotal:   lineTotal,
		})

		total = total.Add(lineTotal)
	}

	return items, total, nil
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Quote, error) {
	items, total, err := buildItems(params.Items)
	if err != nil {
		return nil, err
	}

	q := &Quote{
		CustomerID: params.CustomerID,
		Status:     StatusDraft,
		Total:      total,
		Items:      items,
	}

	if err := s.repo.CreateQuote(ctx, q); err != nil {
		return nil, err
	}

	return q, nil
}

// Update replaces the line items of an unapproved quote and recomputes
// its total. A zero CustomerID keeps the current customer.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params CreateParams) (*Quote, error) {
	q, err := s.repo.GetQuote(ctx, id)
	if err != nil {
		return nil, err
	}

	if q.Status == StatusApproved {
		return nil, ErrAlreadyApproved
	}

	items, total, err := buildItems(params.Items)
	if err != nil {
		return nil, err
	}

	if params.CustomerID != uuid.Nil {
		q.CustomerID = params.CustomerID
	}

	q.Items = items
	q.Total = total

	if err := s.repo.UpdateQuote(ctx, q); err != nil {
		return nil, err
	}

	return q, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Quote, error) {
	return s.repo.GetQuote(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Quote, error) {
	return s.repo.ListQuotes(ctx, filter)
}

// Send marks a draft quote as sent to the customer.
func (s *Service) Send(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, StatusSent)
}

// MarkViewed records that the customer opened the quote.
func (s *Service) MarkViewed(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, StatusViewed)
}

func (s *Service) Reject(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, StatusRejected)
}

// transition guards the simple status updates: an approved quote is
// immutable, including its items.
func (s *Service) transition(ctx context.Context, id uuid.UUID, status Status) error {
	q, err := s.repo.GetQuote(ctx, id)
	if err != nil {
		return err
	}

	if q.Status == StatusApproved {
		return ErrAlreadyApproved
	}

	return s.repo.UpdateStatus(ctx, id, status)
}

// Approve moves the quote to APPROVED and decrements stock for every
// product-backed line item, all inside one database transaction. Custom
// items are exempt from stock accounting. If any product lacks stock the
// whole transaction rolls back: the quote stays unapproved and no
// decrement survives.
func (s *Service) Approve(ctx context.Context, quoteID, actorID uuid.UUID) (*Quote, error) {
	atx, err := s.repo.BeginApproval(ctx, quoteID)
	if err != nil {
		return nil, fmt.Errorf("begin approval: %w", err)
	}
	defer atx.Rollback()

	q, err := atx.LockQuote(ctx)
	if err != nil {
		return nil, err
	}

	if q.Status == StatusApproved {
		return nil, ErrAlreadyApproved
	}

	now := time.Now().UTC()
	if err := atx.MarkApproved(ctx, actorID, now); err != nil {
		return nil, fmt.Errorf("marking approved: %w", err)
	}

	// Aggregate required quantities per product: a quote may reference
	// the same product on several lines.
	required := make(map[uuid.UUID]int)

	for _, item := range q.Items {
		if item.Kind != ItemProduct || item.ProductID == nil {
			continue
		}

		required[*item.ProductID] += item.Quantity
	}

	// Lock products in a stable order so two approvals sharing products
	// cannot deadlock on each other's row locks.
	productIDs := make([]uuid.UUID, 0, len(required))
	for id := range required {
		productIDs = append(productIDs, id)
	}

	sort.Slice(productIDs, func(i, j int) bool {
		return productIDs[i].String() < productIDs[j].String()
	})

	for _, productID := range productIDs {
		qty := required[productID]

		name, stock, err := atx.LockProductStock(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("locking product %s: %w", productID, err)
		}

		if stock < qty {
			return nil, &InsufficientStockError{
				ProductID:   productID,
				ProductName: name,
				Available:   stock,
				Required:    qty,
			}
		}

		if err := atx.DecrementStock(ctx, productID, qty); err != nil {
			return nil, fmt.Errorf("decrementing stock for %s: %w", productID, err)
		}
	}

	if err := atx.Commit(); err != nil {
		return nil, fmt.Errorf("commit approval: %w", err)
	}

	q.Status = StatusApproved
	q.ApprovedAt = &now
	q.ApprovedBy = &actorID

	return q, nil
}
