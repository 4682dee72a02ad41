package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/contract-payments-engine/internal/models"
)

// POST /api/balances/deposit/{userID}
// Body: {"amount": n}. No authentication, matching the upstream API:
// the target client is named in the path.
func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		depositsTotal.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusBadRequest, "invalid request: user ID must be a number and amount must be greater than 0")
		return
	}

	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		depositsTotal.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	newBalance, err := s.billing.Deposit(r.Context(), userID, req.Amount)
	depositsTotal.WithLabelValues(outcomeOf(err)).Inc()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":    "Deposit successful",
		"newBalance": newBalance.StringFixed(2),
	})
}

// POST /api/jobs/{jobID}/pay
func (s *Server) handlePayJob(w http.ResponseWriter, r *http.Request) {
	caller, ok := profileFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, models.ErrUnauthenticated.Error())
		return
	}
	jobID, err := strconv.ParseInt(chi.URLParam(r, "jobID"), 10, 64)
	if err != nil {
		paymentsTotal.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusBadRequest, "invalid job ID")
		return
	}

	err = s.billing.PayJob(r.Context(), caller, jobID)
	paymentsTotal.WithLabelValues(outcomeOf(err)).Inc()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Payment successful"})
}

// GET /api/jobs/unpaid
func (s *Server) handleUnpaidJobs(w http.ResponseWriter, r *http.Request) {
	caller, ok := profileFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, models.ErrUnauthenticated.Error())
		return
	}

	jobs, err := s.reports.UnpaidJobsForParty(r.Context(), caller.ID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// GET /api/contracts
func (s *Server) handleContracts(w http.ResponseWriter, r *http.Request) {
	caller, ok := profileFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, models.ErrUnauthenticated.Error())
		return
	}

	contracts, err := s.reports.ContractsForParty(r.Context(), caller.ID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contracts)
}

// GET /api/contracts/{contractID}
func (s *Server) handleContractByID(w http.ResponseWriter, r *http.Request) {
	caller, ok := profileFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, models.ErrUnauthenticated.Error())
		return
	}
	contractID, err := strconv.ParseInt(chi.URLParam(r, "contractID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contract ID")
		return
	}

	contract, err := s.reports.ContractByID(r.Context(), contractID, caller.ID)
	if errors.Is(err, models.ErrNoResults) {
		writeError(w, http.StatusNotFound, "contract not found")
		return
	}
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contract)
}

// GET /api/admin/best-profession?start&end
func (s *Server) handleBestProfession(w http.ResponseWriter, r *http.Request) {
	start, end, ok := s.dateRange(w, r)
	if !ok {
		return
	}

	best, err := s.reports.BestProfession(r.Context(), start, end)
	if errors.Is(err, models.ErrNoResults) {
		writeError(w, http.StatusNotFound, "no professions found in the specified date range")
		return
	}
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"profession":    best.Profession,
		"totalEarnings": best.TotalEarnings.StringFixed(2),
	})
}

// GET /api/admin/best-clients?start&end&limit
func (s *Server) handleBestClients(w http.ResponseWriter, r *http.Request) {
	start, end, ok := s.dateRange(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	clients, err := s.reports.BestClients(r.Context(), start, end, limit)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	type clientRow struct {
		ClientID  int64  `json:"clientId"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		TotalPaid string `json:"totalPaid"`
	}
	rows := make([]clientRow, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, clientRow{
			ClientID:  c.ClientID,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			TotalPaid: c.TotalPaid.StringFixed(2),
		})
	}
	writeJSON(w, http.StatusOK, rows)
}

// dateRange parses the start/end query parameters. Accepts
// YYYY-MM-DD or RFC3339; both bounds are inclusive.
func (s *Server) dateRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")
	if startStr == "" || endStr == "" {
		writeError(w, http.StatusBadRequest, "start and end dates are required")
		return time.Time{}, time.Time{}, false
	}

	start, err := parseDate(startStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format")
		return time.Time{}, time.Time{}, false
	}
	end, err := parseDate(endStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format")
		return time.Time{}, time.Time{}, false
	}
	if start.After(end) {
		writeError(w, http.StatusBadRequest, "start date must be before end date")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// writeDomainError maps the error taxonomy onto HTTP statuses.
// Operational failures stay generic so storage details never leak.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var capErr *models.DepositCapError
	switch {
	case errors.Is(err, models.ErrInvalidRequest),
		errors.Is(err, models.ErrAlreadyPaid),
		errors.Is(err, models.ErrInsufficientFunds),
		errors.As(err, &capErr):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, models.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrPartyNotFound),
		errors.Is(err, models.ErrJobNotFound),
		errors.Is(err, models.ErrNoResults):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.log.Error("operation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "an internal error occurred")
	}
}
