package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
)

// Role controls what a user may do; authorization checks happen at the
// HTTP boundary.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSales    Role = "sales"
	RoleEngineer Role = "engineer"
)

type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
}

// Actor is the authenticated identity attached to a request context.
type Actor struct {
	ID    uuid.UUID
	Email string
	Role  Role
}
