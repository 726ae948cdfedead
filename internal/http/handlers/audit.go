package handlers

import (
	"net/http"

	"github.com/pioneerbroadband/leadtracker/internal/audit"
	"github.com/pioneerbroadband/leadtracker/pkg/logging"
)

// AuditHandler serves the operator action trail.
type AuditHandler struct {
	log    *audit.Log
	logger *logging.Logger
}

func NewAuditHandler(log *audit.Log, logger *logging.Logger) *AuditHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AuditHandler{log: log, logger: logger}
}

// List handles GET /audit.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.log.Entries()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}
