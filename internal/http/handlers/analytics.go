package handlers

import (
	"net/http"

	"github.com/pioneerbroadband/leadtracker/internal/analytics"
	"github.com/pioneerbroadband/leadtracker/internal/leads"
	"github.com/pioneerbroadband/leadtracker/pkg/logging"
)

// AnalyticsHandler serves the KPI report and the SLA breach table. Every
// request recomputes from the current snapshot; nothing is cached.
type AnalyticsHandler struct {
	store  *leads.Store
	engine *analytics.Engine
	logger *logging.Logger
}

func NewAnalyticsHandler(store *leads.Store, engine *analytics.Engine, logger *logging.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AnalyticsHandler{store: store, engine: engine, logger: logger}
}

// Report handles GET /kpi.
func (h *AnalyticsHandler) Report(w http.ResponseWriter, r *http.Request) {
	view := filterFromQuery(r).Apply(h.store.List())
	writeJSON(w, http.StatusOK, h.engine.Report(view))
}

// SLA handles GET /kpi/sla. With ?breached=true only breached records
// are returned.
func (h *AnalyticsHandler) SLA(w http.ResponseWriter, r *http.Request) {
	view := filterFromQuery(r).Apply(h.store.List())
	report := h.engine.Report(view)

	rows := report.SLA
	if r.URL.Query().Get("breached") == "true" {
		breached := make([]analytics.LeadSLA, 0, len(rows))
		for _, row := range rows {
			if row.AnyBreach {
				breached = append(breached, row)
			}
		}
		rows = breached
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"thresholds": h.engine.Thresholds(),
		"rows":       rows,
		"breached":   report.BreachedCount,
	})
}
