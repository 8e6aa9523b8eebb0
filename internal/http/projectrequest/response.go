package projectrequest

import (
	"time"

	"github.com/google/uuid"

	"github.com/enerjios/enerjios/internal/projectrequest"
)

type requestResponse struct {
	ID               uuid.UUID             `json:"id"`
	Name             string                `json:"name"`
	Email            string                `json:"email,omitempty"`
	Phone            string                `json:"phone,omitempty"`
	City             string                `json:"city,omitempty"`
	Source           string                `json:"source,omitempty"`
	Status           projectrequest.Status `json:"status"`
	AssignedEngineer *uuid.UUID            `json:"assigned_engineer,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        *time.Time            `json:"updated_at,omitempty"`
}

func toResponse(r *projectrequest.ProjectRequest) requestResponse {
	return requestResponse{
		ID:               r.ID,
		Name:             r.Name,
		Email:            r.Email,
		Phone:            r.Phone,
		City:             r.City,
		Source:           r.Source,
		Status:           r.Status,
		AssignedEngineer: r.AssignedEngineer,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func toResponseList(reqs []*projectrequest.ProjectRequest) []requestResponse {
	resp := make([]requestResponse, len(reqs))
	for i, r := range reqs {
		resp[i] = toResponse(r)
	}

	return resp
}

type historyResponse struct {
	ID        uuid.UUID             `json:"id"`
	Status    projectrequest.Status `json:"status"`
	Note      string                `json:"note,omitempty"`
	ActorID   *uuid.UUID            `json:"actor_id,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}

func toHistoryResponseList(entries []*projectrequest.HistoryEntry) []historyResponse {
	resp := make([]historyResponse, len(entries))
	for i, e := range entries {
		resp[i] = historyResponse{
			ID:        e.ID,
			Status:    e.Status,
			Note:      e.Note,
			ActorID:   e.ActorID,
			CreatedAt: e.CreatedAt,
		}
	}

	return resp
}

type noteResponse struct {
	ID        uuid.UUID  `json:"id"`
	ActorID   *uuid.UUID `json:"actor_id,omitempty"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
}

func toNoteResponse(n *projectrequest.Note) noteResponse {
	return noteResponse{
		ID:        n.ID,
		ActorID:   n.ActorID,
		Body:      n.Body,
		CreatedAt: n.CreatedAt,
	}
}
