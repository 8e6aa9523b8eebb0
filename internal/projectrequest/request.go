package projectrequest

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("project request not found")

// InvalidTransitionError reports a rejected status move.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// ProjectRequest is an inbound sales lead prior to becoming a project.
// Requests are never hard-deleted; LOST is a reopenable end state.
type ProjectRequest struct {
	ID               uuid.UUID
	Name             string
	Email            string
	Phone            string
	City             string
	Source           string
	Status           Status
	AssignedEngineer *uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}

// HistoryEntry is one row of the append-only status audit trail.
type HistoryEntry struct {
	ID        uuid.UUID
	RequestID uuid.UUID
	Status    Status
	Note      string
	ActorID   *uuid.UUID
	CreatedAt time.Time
}

// Note is a free-form remark appended to a request by a user.
type Note struct {
	ID        uuid.UUID
	RequestID uuid.UUID
	ActorID   *uuid.UUID
	Body      string
	CreatedAt time.Time
}
