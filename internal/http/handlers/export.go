package handlers

import (
	"net/http"
	"time"

	"github.com/pioneerbroadband/leadtracker/internal/analytics"
	"github.com/pioneerbroadband/leadtracker/internal/export"
	"github.com/pioneerbroadband/leadtracker/internal/leads"
	"github.com/pioneerbroadband/leadtracker/pkg/logging"
)

// ExportHandler dumps the current filtered record set on demand.
type ExportHandler struct {
	store  *leads.Store
	engine *analytics.Engine
	logger *logging.Logger
}

func NewExportHandler(store *leads.Store, engine *analytics.Engine, logger *logging.Logger) *ExportHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ExportHandler{store: store, engine: engine, logger: logger}
}

// CSV handles GET /export/csv.
func (h *ExportHandler) CSV(w http.ResponseWriter, r *http.Request) {
	view := filterFromQuery(r).Apply(h.store.List())
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="leads_`+stamp()+`.csv"`)
	if err := export.WriteCSV(w, view); err != nil {
		h.logger.Error("csv export failed", "error", err)
	}
}

// Workbook handles GET /export/xlsx: raw records plus the KPI tables.
func (h *ExportHandler) Workbook(w http.ResponseWriter, r *http.Request) {
	view := filterFromQuery(r).Apply(h.store.List())
	report := h.engine.Report(view)
	f, err := export.Workbook(view, report)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	defer f.Close()
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="leads_`+stamp()+`.xlsx"`)
	if err := f.Write(w); err != nil {
		h.logger.Error("workbook export failed", "error", err)
	}
}

func stamp() string {
	return time.Now().UTC().Format("20060102_150405")
}
