package customer

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("customer not found")

// Customer is a person or company that quotes and projects belong to.
type Customer struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	Company   string
	City      string
	Address   string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
}
