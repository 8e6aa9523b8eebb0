package quote

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/enerjios/enerjios/internal/auth"
	"github.com/enerjios/enerjios/internal/notification"
	"github.com/enerjios/enerjios/internal/quote"
)

type Handler struct {
	svc      *quote.Service
	notifier notification.Dispatcher
}

func NewHandler(svc *quote.Service, notifier notification.Dispatcher) *Handler {
	return &Handler{svc: svc, notifier: notifier}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Post("/{id}/send", h.send)
	r.Post("/{id}/view", h.markViewed)
	r.Post("/{id}/approve", h.approve)
	r.Post("/{id}/reject", h.reject)
}

type createItemRequest struct {
	Kind        quote.ItemKind  `json:"kind"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	Description string          `json:"description,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type createQuoteRequest struct {
	CustomerID uuid.UUID           `json:"customer_id"`
	Items      []createItemRequest `json:"items"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := quote.CreateParams{CustomerID: req.CustomerID}
	for _, item := range req.Items {
		params.Items = append(params.Items, quote.ItemParams{
			Kind:        item.Kind,
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	q, err := h.svc.Create(r.Context(), params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(q)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req createQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := quote.CreateParams{CustomerID: req.CustomerID}
	for _, item := range req.Items {
		params.Items = append(params.Items, quote.ItemParams{
			Kind:        item.Kind,
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	q, err := h.svc.Update(r.Context(), id, params)
	if err != nil {
		switch {
		case errors.Is(err, quote.ErrNotFound):
			http.Error(w, "quote not found", http.StatusNotFound)
		case errors.Is(err, quote.ErrAlreadyApproved):
			http.Error(w, "quote already approved", http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusBadRequest)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(q)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := quote.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		filter.Status = new(quote.Status(s))
	}

	if s := r.URL.Query().Get("customer_id"); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			filter.CustomerID = new(id)
		}
	}

	quotes, err := h.svc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(quotes)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	q, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, quote.ErrNotFound) {
			http.Error(w, "quote not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(q)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// errorResponse is the structured error body for workflow failures.
type errorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`

	Product   string `json:"product,omitempty"`
	Available *int   `json:"available,omitempty"`
	Required  *int   `json:"required,omitempty"`
}

func writeError(w http.ResponseWriter, status int, resp errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	q, err := h.svc.Approve(r.Context(), id, actor.ID)
	if err != nil {
		var stockErr *quote.InsufficientStockError

		switch {
		case errors.Is(err, quote.ErrNotFound):
			writeError(w, http.StatusNotFound, errorResponse{
				Kind:    "not_found",
				Message: "quote not found",
			})
		case errors.Is(err, quote.ErrAlreadyApproved):
			writeError(w, http.StatusConflict, errorResponse{
				Kind:    "already_approved",
				Message: "quote already approved",
			})
		case errors.As(err, &stockErr):
			writeError(w, http.StatusUnprocessableEntity, errorResponse{
				Kind:      "insufficient_stock",
				Message:   stockErr.Error(),
				Product:   stockErr.ProductName,
				Available: &stockErr.Available,
				Required:  &stockErr.Required,
			})
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	if err := h.notifier.QuoteApproved(r.Context(), q); err != nil {
		slog.Error("failed to dispatch approval notification", "error", err, "quote_id", q.ID)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(q)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.svc.Send)
}

func (h *Handler) markViewed(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.svc.MarkViewed)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.svc.Reject)
}

func (h *Handler) simpleTransition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id uuid.UUID) error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := fn(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, quote.ErrNotFound):
			http.Error(w, "quote not found", http.StatusNotFound)
		case errors.Is(err, quote.ErrAlreadyApproved):
			http.Error(w, "quote already approved", http.StatusConflict)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
