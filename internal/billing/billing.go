// Package billing implements the two financial operations of the
// system: client deposits (capped against outstanding unpaid work) and
// job payments (atomic client→contractor transfer with settlement).
package billing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/contract-payments-engine/internal/interfaces"
	"github.com/sheikh-saqib/contract-payments-engine/internal/models"
	"github.com/sheikh-saqib/contract-payments-engine/internal/models/events"
)

// depositCapRate caps a deposit at 25% of the client's unpaid job
// total across active contracts.
var depositCapRate = decimal.NewFromFloat(0.25)

// Service runs the deposit and payment operations against a
// BillingStore. Mutations to one party's balance serialize on a
// per-party mutex held across the whole check-then-act sequence, so
// two concurrent operations on the same party can never both pass
// their guards against the same stale snapshot.
type Service struct {
	store     interfaces.BillingStore
	publisher interfaces.EventPublisher // nil disables eventing
	log       *zap.Logger

	muMap map[int64]*sync.Mutex // per-party locks
	mapMu sync.Mutex            // protects muMap itself
}

// NewService creates the billing service. publisher may be nil.
func NewService(store interfaces.BillingStore, publisher interfaces.EventPublisher, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:     store,
		publisher: publisher,
		log:       log,
		muMap:     make(map[int64]*sync.Mutex),
	}
}

func (s *Service) partyLock(partyID int64) *sync.Mutex {
	s.mapMu.Lock()
	defer s.mapMu.Unlock()

	if _, exists := s.muMap[partyID]; !exists {
		s.muMap[partyID] = &sync.Mutex{}
	}
	return s.muMap[partyID]
}

// Deposit increases a client's balance by amount, provided amount is
// positive and does not exceed 25% of the client's outstanding unpaid
// job total on active contracts. Returns the new balance.
//
// Failure kinds: models.ErrInvalidRequest, models.ErrPartyNotFound,
// *models.DepositCapError.
func (s *Service) Deposit(ctx context.Context, clientID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	if clientID <= 0 || amount.Cmp(decimal.Zero) <= 0 {
		return decimal.Zero, models.ErrInvalidRequest
	}

	party, err := s.store.GetParty(ctx, clientID)
	if err != nil {
		return decimal.Zero, err
	}
	if party.Role != models.RoleClient {
		return decimal.Zero, models.ErrPartyNotFound
	}

	// The exposure check and the increment run under the client's
	// lock, so a racing deposit for the same client is evaluated
	// against post-commit state, never the same snapshot.
	mu := s.partyLock(clientID)
	mu.Lock()
	newBalance, err := s.depositLocked(ctx, clientID, amount)
	mu.Unlock()
	if err != nil {
		return decimal.Zero, err
	}

	s.log.Info("deposit accepted",
		zap.Int64("client_id", clientID),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("new_balance", newBalance.StringFixed(2)))
	s.publish(ctx, events.TopicDepositReceived, events.DepositReceived{
		EventID:    uuid.New().String(),
		ClientID:   clientID,
		Amount:     amount,
		NewBalance: newBalance,
		ReceivedAt: time.Now().UTC(),
	})
	return newBalance, nil
}

func (s *Service) depositLocked(ctx context.Context, clientID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	exposure, err := s.store.UnpaidActiveTotal(ctx, clientID)
	if err != nil {
		return decimal.Zero, err
	}

	maxDeposit := exposure.Mul(depositCapRate)
	if amount.GreaterThan(maxDeposit) {
		return decimal.Zero, &models.DepositCapError{Cap: maxDeposit.Round(2)}
	}
	return s.store.AddToBalance(ctx, clientID, amount)
}

// PayJob moves the job's price from the calling client's balance to
// the contractor's balance and marks the job paid, exactly once. The
// caller must already be an authenticated party.
//
// Failure kinds: models.ErrInvalidRequest, models.ErrJobNotFound,
// models.ErrAlreadyPaid, models.ErrNotAuthorized,
// models.ErrInsufficientFunds.
func (s *Service) PayJob(ctx context.Context, caller models.Party, jobID int64) error {
	if jobID <= 0 {
		return models.ErrInvalidRequest
	}

	job, contract, err := s.store.GetJobWithContract(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Paid {
		return models.ErrAlreadyPaid
	}
	if contract.ClientID != caller.ID {
		return models.ErrNotAuthorized
	}

	settledAt := time.Now().UTC()
	if err := s.settle(ctx, job, contract, settledAt); err != nil {
		return err
	}

	s.log.Info("job settled",
		zap.Int64("job_id", job.ID),
		zap.Int64("client_id", contract.ClientID),
		zap.Int64("contractor_id", contract.ContractorID),
		zap.String("price", job.Price.StringFixed(2)))
	s.publish(ctx, events.TopicJobSettled, events.JobSettled{
		EventID:      uuid.New().String(),
		JobID:        job.ID,
		ContractID:   contract.ID,
		ClientID:     contract.ClientID,
		ContractorID: contract.ContractorID,
		Amount:       job.Price,
		SettledAt:    settledAt,
	})
	return nil
}

// settle holds both party locks across the balance check and the
// atomic store transaction. Locks are taken in id order to avoid
// deadlocks and released before any event publishing.
func (s *Service) settle(ctx context.Context, job models.Job, contract models.Contract, settledAt time.Time) error {
	clientMu := s.partyLock(contract.ClientID)
	contractorMu := s.partyLock(contract.ContractorID)

	if contract.ClientID < contract.ContractorID {
		clientMu.Lock()
		contractorMu.Lock()
	} else {
		contractorMu.Lock()
		clientMu.Lock()
	}
	defer clientMu.Unlock()
	defer contractorMu.Unlock()

	client, err := s.store.GetParty(ctx, contract.ClientID)
	if err != nil {
		return err
	}
	if client.Balance.LessThan(job.Price) {
		return models.ErrInsufficientFunds
	}

	return s.store.SettleJob(ctx, job.ID, contract.ClientID, contract.ContractorID, job.Price, settledAt)
}

// publish emits an event after commit. Eventing is best-effort: the
// committed transfer is the source of truth, so a publish failure is
// logged and dropped.
func (s *Service) publish(ctx context.Context, topic string, event any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.log.Warn("event publish failed", zap.String("topic", topic), zap.Error(err))
	}
}

// IsBusinessRejection reports whether err is a policy rejection (the
// caller's request was refused) as opposed to an operational failure.
func IsBusinessRejection(err error) bool {
	var capErr *models.DepositCapError
	switch {
	case errors.Is(err, models.ErrInvalidRequest),
		errors.Is(err, models.ErrPartyNotFound),
		errors.Is(err, models.ErrJobNotFound),
		errors.Is(err, models.ErrUnauthenticated),
		errors.Is(err, models.ErrNotAuthorized),
		errors.Is(err, models.ErrAlreadyPaid),
		errors.Is(err, models.ErrInsufficientFunds),
		errors.As(err, &capErr):
		return true
	}
	return false
}
