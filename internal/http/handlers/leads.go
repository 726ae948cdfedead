package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pioneerbroadband/leadtracker/internal/analytics"
	"github.com/pioneerbroadband/leadtracker/internal/audit"
	"github.com/pioneerbroadband/leadtracker/internal/leads"
	"github.com/pioneerbroadband/leadtracker/pkg/logging"
)

// LeadsHandler serves CRUD, refresh and the pipeline board view.
type LeadsHandler struct {
	store  *leads.Store
	audit  *audit.Log
	logger *logging.Logger
}

func NewLeadsHandler(store *leads.Store, auditLog *audit.Log, logger *logging.Logger) *LeadsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeadsHandler{store: store, audit: auditLog, logger: logger}
}

func filterFromQuery(r *http.Request) analytics.Filter {
	q := r.URL.Query()
	return analytics.Filter{
		Query:      q.Get("q"),
		Source:     q.Get("source"),
		Status:     q.Get("status"),
		Service:    q.Get("service"),
		LostReason: q.Get("lost_reason"),
	}
}

// List handles GET /leads.
func (h *LeadsHandler) List(w http.ResponseWriter, r *http.Request) {
	view := filterFromQuery(r).Apply(h.store.List())
	writeJSON(w, http.StatusOK, map[string]any{
		"leads": view,
		"count": len(view),
	})
}

// Get handles GET /leads/{id}.
func (h *LeadsHandler) Get(w http.ResponseWriter, r *http.Request) {
	lead, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// Create handles POST /leads.
func (h *LeadsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req leads.CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, &leads.ValidationError{Reason: "invalid json: " + err.Error()})
		return
	}
	lead, err := h.store.Create(r.Context(), &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.record("Create", lead.ID, lead.Name, "")
	writeJSON(w, http.StatusCreated, lead)
}

// Update handles PATCH /leads/{id}.
func (h *LeadsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req leads.UpdateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, &leads.ValidationError{Reason: "invalid json: " + err.Error()})
		return
	}

	var before leads.Status
	if prev, err := h.store.Get(id); err == nil {
		before = prev.Status
	}
	lead, err := h.store.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.Status != nil && *req.Status != before {
		h.record("Move (Pipeline)", id, lead.Name, fmt.Sprintf("%s → %s", before, lead.Status))
	} else {
		h.record("Edit", id, lead.Name, "")
	}
	writeJSON(w, http.StatusOK, lead)
}

// Delete handles DELETE /leads/{id}.
func (h *LeadsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	name := ""
	if prev, err := h.store.Get(id); err == nil {
		name = prev.Name
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.record("Delete", id, name, "")
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Refresh handles POST /leads/refresh: the explicit reload that ends the
// "stale until refreshed" window. There is no hidden auto-refresh.
func (h *LeadsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Refresh(r.Context()); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "refreshed",
		"count":  len(h.store.List()),
	})
}

// PipelineColumn is one status lane of the board.
type PipelineColumn struct {
	Status leads.Status `json:"status"`
	Count  int          `json:"count"`
	Leads  []leads.Lead `json:"leads"`
}

// Pipeline handles GET /pipeline: records grouped by status in display
// order. Records with a status outside the lifecycle set land in the
// first column, matching the board's historical behavior.
func (h *LeadsHandler) Pipeline(w http.ResponseWriter, r *http.Request) {
	view := filterFromQuery(r).Apply(h.store.List())
	columns := make([]PipelineColumn, len(leads.AllStatuses))
	index := map[leads.Status]int{}
	for i, s := range leads.AllStatuses {
		columns[i] = PipelineColumn{Status: s, Leads: []leads.Lead{}}
		index[s] = i
	}
	for _, l := range view {
		i, ok := index[l.Status]
		if !ok {
			i = 0
		}
		columns[i].Leads = append(columns[i].Leads, l)
		columns[i].Count++
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":   len(view),
		"columns": columns,
	})
}

func (h *LeadsHandler) record(action, id, name, details string) {
	if h.audit == nil {
		return
	}
	if err := h.audit.Record(action, id, name, details); err != nil {
		h.logger.Warn("audit append failed", "action", action, "error", err)
	}
}
