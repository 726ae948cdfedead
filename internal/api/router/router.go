// Package router assembles the HTTP surface of the lead tracker.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pioneerbroadband/leadtracker/internal/http/handlers"
	httpmiddleware "github.com/pioneerbroadband/leadtracker/internal/http/middleware"
	"github.com/pioneerbroadband/leadtracker/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	Leads              *handlers.LeadsHandler
	Analytics          *handlers.AnalyticsHandler
	Export             *handlers.ExportHandler
	Audit              *handlers.AuditHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/leads", func(r chi.Router) {
		r.Get("/", cfg.Leads.List)
		r.Post("/", cfg.Leads.Create)
		r.Post("/refresh", cfg.Leads.Refresh)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", cfg.Leads.Get)
			r.Patch("/", cfg.Leads.Update)
			r.Delete("/", cfg.Leads.Delete)
		})
	})
	r.Get("/pipeline", cfg.Leads.Pipeline)

	r.Route("/kpi", func(r chi.Router) {
		r.Get("/", cfg.Analytics.Report)
		r.Get("/sla", cfg.Analytics.SLA)
	})

	r.Route("/export", func(r chi.Router) {
		r.Get("/csv", cfg.Export.CSV)
		r.Get("/xlsx", cfg.Export.Workbook)
	})

	if cfg.Audit != nil {
		r.Get("/audit", cfg.Audit.List)
	}

	return r
}
