// Package api exposes the billing and reporting services over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/contract-payments-engine/internal/billing"
	"github.com/sheikh-saqib/contract-payments-engine/internal/interfaces"
	"github.com/sheikh-saqib/contract-payments-engine/internal/reporting"
)

// Server holds the services behind the HTTP surface.
type Server struct {
	billing *billing.Service
	reports *reporting.Service
	store   interfaces.BillingStore // identity lookups for the auth middleware
	log     *zap.Logger
}

func NewServer(b *billing.Service, r *reporting.Service, store interfaces.BillingStore, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{billing: b, reports: r, store: store, log: log}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(requestLogger(s.log))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/balances/deposit/{userID}", s.handleDeposit)

		r.Route("/jobs", func(r chi.Router) {
			r.Use(s.requireProfile)
			r.Get("/unpaid", s.handleUnpaidJobs)
			r.Post("/{jobID}/pay", s.handlePayJob)
		})

		r.Route("/contracts", func(r chi.Router) {
			r.Use(s.requireProfile)
			r.Get("/", s.handleContracts)
			r.Get("/{contractID}", s.handleContractByID)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/best-profession", s.handleBestProfession)
			r.Get("/best-clients", s.handleBestClients)
		})
	})

	return r
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
