package quote

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a quote.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusViewed   Status = "viewed"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ItemKind distinguishes line items backed by an inventory product from
// ad-hoc custom entries that have no inventory row.
type ItemKind string

const (
	ItemProduct ItemKind = "product"
	ItemCustom  ItemKind = "custom"
)

var (
	ErrNotFound = errors.New("quote not found")

	// ErrAlreadyApproved is returned when an approval is attempted on a
	// quote that has already been approved.
	ErrAlreadyApproved = errors.New("quote already approved")
)

// InsufficientStockError reports a line item whose required quantity
// exceeds the product's available stock at approval time.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Available   int
	Required    int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: %d available, %d required",
		e.ProductName, e.Available, e.Required)
}

// Quote is a priced proposal sent to a customer.
type Quote struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Status     Status
	Total      decimal.Decimal
	Items      []*Item
	ApprovedAt *time.Time
	ApprovedBy *uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// Item is one row of a quote. ProductID is set only for ItemProduct rows;
// custom rows carry just a description and never touch stock.
type Item struct {
	ID          uuid.UUID
	QuoteID     uuid.UUID
	Kind        ItemKind
	ProductID   *uuid.UUID
	ProductName string // loaded via JOIN for product-backed items
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}
