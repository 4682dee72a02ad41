package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sheikh-saqib/contract-payments-engine/internal/billing"
)

// Operation counters by outcome: "accepted", "rejected" (business
// rule) or "error" (operational failure).
var (
	depositsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "billing_deposits_total",
		Help: "Deposit attempts by outcome.",
	}, []string{"outcome"})

	paymentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "billing_payments_total",
		Help: "Job payment attempts by outcome.",
	}, []string{"outcome"})
)

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case billing.IsBusinessRejection(err):
		return "rejected"
	default:
		return "error"
	}
}
