// Package reporting serves the read-only views over committed state:
// admin earnings aggregations and per-party contract/job listings.
// Nothing here mutates anything.
package reporting

import (
	"context"
	"time"

	"github.com/sheikh-saqib/contract-payments-engine/internal/interfaces"
	"github.com/sheikh-saqib/contract-payments-engine/internal/models"
)

const defaultClientLimit = 2

type Service struct {
	store interfaces.ReportingStore
}

func NewService(store interfaces.ReportingStore) *Service {
	return &Service{store: store}
}

// BestProfession returns the top-earning contractor profession over
// jobs settled in [start, end].
func (s *Service) BestProfession(ctx context.Context, start, end time.Time) (models.ProfessionEarnings, error) {
	if err := validateRange(start, end); err != nil {
		return models.ProfessionEarnings{}, err
	}
	return s.store.BestProfession(ctx, start, end)
}

// BestClients returns the top-paying clients over jobs settled in
// [start, end]. limit <= 0 falls back to the default of 2.
func (s *Service) BestClients(ctx context.Context, start, end time.Time, limit int) ([]models.ClientPayment, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultClientLimit
	}
	return s.store.BestClients(ctx, start, end, limit)
}

// ContractsForParty lists the caller's active contracts.
func (s *Service) ContractsForParty(ctx context.Context, partyID int64) ([]models.Contract, error) {
	return s.store.ContractsForParty(ctx, partyID)
}

// ContractByID returns one contract, only to a party on it.
func (s *Service) ContractByID(ctx context.Context, contractID, partyID int64) (models.Contract, error) {
	if contractID <= 0 {
		return models.Contract{}, models.ErrInvalidRequest
	}
	return s.store.ContractByID(ctx, contractID, partyID)
}

// UnpaidJobsForParty lists the caller's unpaid jobs on active
// contracts.
func (s *Service) UnpaidJobsForParty(ctx context.Context, partyID int64) ([]models.Job, error) {
	return s.store.UnpaidJobsForParty(ctx, partyID)
}

func validateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() || start.After(end) {
		return models.ErrInvalidRequest
	}
	return nil
}
