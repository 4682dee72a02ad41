package interfaces

import (
	"context"
	"time"

	"github.com/sheikh-saqib/contract-payments-engine/internal/models"
)

// ReportingStore serves the read-only views. It only ever observes
// committed state: a job is either settled (paid with a payment date)
// or it is not, never something in between.
type ReportingStore interface {
	// BestProfession returns the contractor profession with the
	// highest sum of job prices settled in [start, end], or
	// models.ErrNoResults.
	BestProfession(ctx context.Context, start, end time.Time) (models.ProfessionEarnings, error)

	// BestClients returns up to limit clients ordered by total paid
	// in [start, end], highest first.
	BestClients(ctx context.Context, start, end time.Time, limit int) ([]models.ClientPayment, error)

	// ContractsForParty returns the active contracts the party is on,
	// on either side.
	ContractsForParty(ctx context.Context, partyID int64) ([]models.Contract, error)

	// ContractByID returns the contract only if the party is its
	// client or contractor. A missing contract and someone else's
	// contract both yield models.ErrNoResults.
	ContractByID(ctx context.Context, contractID, partyID int64) (models.Contract, error)

	// UnpaidJobsForParty returns unpaid jobs on active contracts the
	// party is on, on either side.
	UnpaidJobsForParty(ctx context.Context, partyID int64) ([]models.Job, error)
}
