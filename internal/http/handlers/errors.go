package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pioneerbroadband/leadtracker/internal/leads"
	"github.com/pioneerbroadband/leadtracker/pkg/logging"
)

// writeError maps the error taxonomy onto HTTP statuses: validation
// failures are the caller's fault, unknown ids are 404, provider
// failures surface as 502 with the provider's message verbatim so the
// operator can retry manually.
func writeError(w http.ResponseWriter, logger *logging.Logger, err error) {
	var verr *leads.ValidationError
	var perr *leads.ProviderError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
	case errors.Is(err, leads.ErrLeadNotFound):
		status = http.StatusNotFound
	case errors.As(err, &perr):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
