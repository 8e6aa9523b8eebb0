package product

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("product not found")

	// ErrStockBelowZero is returned when an adjustment would drive stock negative.
	ErrStockBelowZero = errors.New("stock cannot go below zero")
)

// Product is an inventory item that quote line items can reference.
type Product struct {
	ID        uuid.UUID
	Name      string
	SKU       string
	UnitPrice decimal.Decimal
	Stock     int
	CreatedAt time.Time
	UpdatedAt *time.Time
}
