// Package memory is an in-memory implementation of the billing and
// reporting stores. It backs the test suite and local development; a
// single mutex gives every operation the same all-or-nothing
// visibility the postgres store gets from transactions.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/contract-payments-engine/internal/interfaces"
	"github.com/sheikh-saqib/contract-payments-engine/internal/models"
)

// Store holds parties, contracts and jobs in maps guarded by one
// mutex. Reads copy values out so callers can never mutate internal
// state.
type Store struct {
	mu        sync.Mutex
	parties   map[int64]*models.Party
	contracts map[int64]*models.Contract
	jobs      map[int64]*models.Job
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		parties:   make(map[int64]*models.Party),
		contracts: make(map[int64]*models.Contract),
		jobs:      make(map[int64]*models.Job),
	}
}

// SeedParty inserts or replaces a party. Provisioning is outside the
// billing operations, so seeding bypasses all guards.
func (m *Store) SeedParty(p models.Party) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := p
	m.parties[p.ID] = &cp
}

// SeedContract inserts or replaces a contract.
func (m *Store) SeedContract(c models.Contract) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := c
	m.contracts[c.ID] = &cp
}

// SeedJob inserts or replaces a job.
func (m *Store) SeedJob(j models.Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := j
	m.jobs[j.ID] = &cp
}

func (m *Store) GetParty(ctx context.Context, id int64) (models.Party, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.parties[id]
	if !ok {
		return models.Party{}, models.ErrPartyNotFound
	}
	return *p, nil
}

func (m *Store) GetJobWithContract(ctx context.Context, jobID int64) (models.Job, models.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[jobID]
	if !ok {
		return models.Job{}, models.Contract{}, models.ErrJobNotFound
	}
	c, ok := m.contracts[j.ContractID]
	if !ok || c.Status != models.ContractActive {
		// Missing and non-active look identical to the caller.
		return models.Job{}, models.Contract{}, models.ErrJobNotFound
	}
	return *j, *c, nil
}

func (m *Store) UnpaidActiveTotal(ctx context.Context, clientID int64) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := decimal.Zero
	for _, j := range m.jobs {
		if j.Paid {
			continue
		}
		c, ok := m.contracts[j.ContractID]
		if !ok || c.Status != models.ContractActive || c.ClientID != clientID {
			continue
		}
		total = total.Add(j.Price)
	}
	return total, nil
}

func (m *Store) AddToBalance(ctx context.Context, clientID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.parties[clientID]
	if !ok || p.Role != models.RoleClient {
		return decimal.Zero, models.ErrPartyNotFound
	}
	p.Balance = p.Balance.Add(amount)
	return p.Balance, nil
}

// SettleJob performs the three settlement writes under the store
// mutex: nothing outside this method can observe a debited client
// without a credited contractor and a paid job.
func (m *Store) SettleJob(ctx context.Context, jobID, clientID, contractorID int64, price decimal.Decimal, settledAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[jobID]
	if !ok {
		return models.ErrJobNotFound
	}
	if j.Paid {
		return models.ErrAlreadyPaid
	}
	client, ok := m.parties[clientID]
	if !ok {
		return models.ErrPartyNotFound
	}
	contractor, ok := m.parties[contractorID]
	if !ok {
		return models.ErrPartyNotFound
	}
	if client.Balance.LessThan(price) {
		return models.ErrInsufficientFunds
	}

	client.Balance = client.Balance.Sub(price)
	contractor.Balance = contractor.Balance.Add(price)
	j.Paid = true
	ts := settledAt
	j.PaymentDate = &ts
	return nil
}

func (m *Store) BestProfession(ctx context.Context, start, end time.Time) (models.ProfessionEarnings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	totals := make(map[string]decimal.Decimal)
	for _, j := range m.jobs {
		if !m.settledInRange(j, start, end) {
			continue
		}
		c := m.contracts[j.ContractID]
		contractor, ok := m.parties[c.ContractorID]
		if !ok || contractor.Role != models.RoleContractor {
			continue
		}
		totals[contractor.Profession] = totals[contractor.Profession].Add(j.Price)
	}
	if len(totals) == 0 {
		return models.ProfessionEarnings{}, models.ErrNoResults
	}

	var best models.ProfessionEarnings
	for profession, total := range totals {
		if best.Profession == "" || total.GreaterThan(best.TotalEarnings) {
			best = models.ProfessionEarnings{Profession: profession, TotalEarnings: total}
		}
	}
	return best, nil
}

func (m *Store) BestClients(ctx context.Context, start, end time.Time, limit int) ([]models.ClientPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	totals := make(map[int64]decimal.Decimal)
	for _, j := range m.jobs {
		if !m.settledInRange(j, start, end) {
			continue
		}
		c := m.contracts[j.ContractID]
		totals[c.ClientID] = totals[c.ClientID].Add(j.Price)
	}

	result := make([]models.ClientPayment, 0, len(totals))
	for clientID, total := range totals {
		row := models.ClientPayment{ClientID: clientID, TotalPaid: total}
		if p, ok := m.parties[clientID]; ok {
			row.FirstName = p.FirstName
			row.LastName = p.LastName
		}
		result = append(result, row)
	}
	sort.Slice(result, func(i, k int) bool {
		return result[i].TotalPaid.GreaterThan(result[k].TotalPaid)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *Store) ContractsForParty(ctx context.Context, partyID int64) ([]models.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]models.Contract, 0)
	for _, c := range m.contracts {
		if c.Status != models.ContractActive {
			continue
		}
		if c.ClientID == partyID || c.ContractorID == partyID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, k int) bool { return result[i].ID < result[k].ID })
	return result, nil
}

func (m *Store) ContractByID(ctx context.Context, contractID, partyID int64) (models.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.contracts[contractID]
	if !ok || (c.ClientID != partyID && c.ContractorID != partyID) {
		return models.Contract{}, models.ErrNoResults
	}
	return *c, nil
}

func (m *Store) UnpaidJobsForParty(ctx context.Context, partyID int64) ([]models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]models.Job, 0)
	for _, j := range m.jobs {
		if j.Paid {
			continue
		}
		c, ok := m.contracts[j.ContractID]
		if !ok || c.Status != models.ContractActive {
			continue
		}
		if c.ClientID == partyID || c.ContractorID == partyID {
			result = append(result, *j)
		}
	}
	sort.Slice(result, func(i, k int) bool { return result[i].ID < result[k].ID })
	return result, nil
}

// settledInRange expects the mutex held. Range bounds are inclusive.
func (m *Store) settledInRange(j *models.Job, start, end time.Time) bool {
	if !j.Paid || j.PaymentDate == nil {
		return false
	}
	if _, ok := m.contracts[j.ContractID]; !ok {
		return false
	}
	return !j.PaymentDate.Before(start) && !j.PaymentDate.After(end)
}

// Compile-time checks: Store implements both store interfaces.
var (
	_ interfaces.BillingStore   = (*Store)(nil)
	_ interfaces.ReportingStore = (*Store)(nil)
)
