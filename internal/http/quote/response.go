package quote

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/enerjios/enerjios/internal/quote"
)

type itemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Kind        quote.ItemKind  `json:"kind"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	ProductName string          `json:"product_name,omitempty"`
	Description string          `json:"description,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type quoteResponse struct {
	ID         uuid.UUID       `json:"id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Status     quote.Status    `json:"status"`
	Total      decimal.Decimal `json:"total"`
	Items      []itemResponse  `json:"items"`
	ApprovedAt *time.Time      `json:"approved_at,omitempty"`
	ApprovedBy *uuid.UUID      `json:"approved_by,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  *time.Time      `json:"updated_at,omitempty"`
}

func toResponse(q *quote.Quote) quoteResponse {
	resp := quoteResponse{
		ID:         q.ID,
		CustomerID: q.CustomerID,
		Status:     q.Status,
		Total:      q.Total,
		Items:      make([]itemResponse, 0, len(q.Items)),
		ApprovedAt: q.ApprovedAt,
		ApprovedBy: q.ApprovedBy,
		CreatedAt:  q.CreatedAt,
		UpdatedAt:  q.UpdatedAt,
	}

	for _, item := range q.Items {
		resp.Items = append(resp.Items, itemResponse{
			ID:          item.ID,
			Kind:        item.Kind,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}

	return resp
}

func toResponseList(quotes []*quote.Quote) []quoteResponse {
	resp := make([]quoteResponse, len(quotes))
	for i, q := range quotes {
		resp[i] = toResponse(q)
	}

	return resp
}
