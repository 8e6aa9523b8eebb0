package leadimport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/enerjios/enerjios/internal/leadimport"
	"github.com/enerjios/enerjios/internal/projectrequest"
)

type Handler struct {
	requestSvc *projectrequest.Service
}

func NewHandler(requestSvc *projectrequest.Service) *Handler {
	return &Handler{requestSvc: requestSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/leads", h.importLeads)
}

type importedLead struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email,omitempty"`
	Phone  string    `json:"phone,omitempty"`
	City   string    `json:"city,omitempty"`
	Status string    `json:"status"`
}

type duplicateLead struct {
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	ExistingID uuid.UUID `json:"existing_id"`
}

type importResponse struct {
	Imported   []importedLead  `json:"imported"`
	Duplicates []duplicateLead `json:"duplicates,omitempty"`
}

func (h *Handler) importLeads(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	source := r.FormValue("source")
	if source == "" {
		source = "import"
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	params, err := leadimport.NewParser(source).Parse(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.requestSvc.ImportBatch(r.Context(), params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := importResponse{
		Imported:   make([]importedLead, 0, len(result.Imported)),
		Duplicates: make([]duplicateLead, 0, len(result.Duplicates)),
	}

	for _, pr := range result.Imported {
		resp.Imported = append(resp.Imported, importedLead{
			ID:     pr.ID,
			Name:   pr.Name,
			Email:  pr.Email,
			Phone:  pr.Phone,
			City:   pr.City,
			Status: string(pr.Status),
		})
	}

	for _, d := range result.Duplicates {
		resp.Duplicates = append(resp.Duplicates, duplicateLead{
			Name:       d.Incoming.Name,
			Email:      d.Incoming.Email,
			Phone:      d.Incoming.Phone,
			ExistingID: d.Existing.ID,
		})
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
