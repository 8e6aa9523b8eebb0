package projectrequest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/enerjios/enerjios/internal/auth"
	"github.com/enerjios/enerjios/internal/notification"
	"github.com/enerjios/enerjios/internal/projectrequest"
)

type Handler struct {
	svc      *projectrequest.Service
	notifier notification.Dispatcher
}

func NewHandler(svc *projectrequest.Service, notifier notification.Dispatcher) *Handler {
	return &Handler{svc: svc, notifier: notifier}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/transitions", h.validTransitions)
	r.Get("/{id}", h.get)
	r.Post("/{id}/status", h.transition)
	r.Get("/{id}/history", h.history)
	r.Post("/{id}/assign", h.assign)
	r.Post("/{id}/notes", h.addNote)
	r.Get("/{id}/notes", h.listNotes)
}

type createRequestRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	City   string `json:"city"`
	Source string `json:"source"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var actorID *uuid.UUID
	if actor, ok := auth.ActorFrom(r.Context()); ok {
		actorID = &actor.ID
	}

	pr, err := h.svc.Create(r.Context(), projectrequest.CreateParams{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		City:   req.City,
		Source: req.Source,
	}, actorID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(pr)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := projectrequest.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		filter.Status = new(projectrequest.Status(s))
	}

	if s := r.URL.Query().Get("engineer"); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			filter.Engineer = new(id)
		}
	}

	if s := r.URL.Query().Get("search"); s != "" {
		filter.Search = new(s)
	}

	reqs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(reqs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	pr, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, projectrequest.ErrNotFound) {
			http.Error(w, "project request not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(pr)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// validTransitions lets the UI disable illegal actions; it reads the same
// table the server enforces.
func (h *Handler) validTransitions(w http.ResponseWriter, r *http.Request) {
	from := projectrequest.Status(r.URL.Query().Get("from"))
	if !from.Valid() {
		http.Error(w, "unknown status", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(projectrequest.ValidTransitions(from)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type transitionRequest struct {
	Status projectrequest.Status `json:"status"`
	Note   string                `json:"note,omitempty"`
}

type transitionErrorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var actorID *uuid.UUID
	if actor, ok := auth.ActorFrom(r.Context()); ok {
		actorID = &actor.ID
	}

	pr, err := h.svc.TransitionStatus(r.Context(), id, req.Status, actorID, req.Note)
	if err != nil {
		var transitionErr *projectrequest.InvalidTransitionError

		switch {
		case errors.Is(err, projectrequest.ErrNotFound):
			http.Error(w, "project request not found", http.StatusNotFound)
		case errors.As(err, &transitionErr):
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)

			resp := transitionErrorResponse{
				Kind:    "invalid_transition",
				Message: transitionErr.Error(),
				From:    string(transitionErr.From),
				To:      string(transitionErr.To),
			}
			if err := json.NewEncoder(w).Encode(resp); err != nil {
				slog.Error("failed to encode error response", "error", err)
			}
		default:
			http.Error(w, err.Error(), http.StatusBadRequest)
		}

		return
	}

	if err := h.notifier.RequestStatusChanged(r.Context(), pr); err != nil {
		slog.Error("failed to dispatch status notification", "error", err, "request_id", pr.ID)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(pr)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	entries, err := h.svc.History(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toHistoryResponseList(entries)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type assignRequest struct {
	EngineerID uuid.UUID `json:"engineer_id"`
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.Assign(r.Context(), id, req.EngineerID); err != nil {
		if errors.Is(err, projectrequest.ErrNotFound) {
			http.Error(w, "project request not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type addNoteRequest struct {
	Body string `json:"body"`
}

func (h *Handler) addNote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req addNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var actorID *uuid.UUID
	if actor, ok := auth.ActorFrom(r.Context()); ok {
		actorID = &actor.ID
	}

	note, err := h.svc.AddNote(r.Context(), id, actorID, req.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toNoteResponse(note)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) listNotes(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	notes, err := h.svc.Notes(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]noteResponse, len(notes))
	for i, n := range notes {
		resp[i] = toNoteResponse(n)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
