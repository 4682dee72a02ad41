package interfaces

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/contract-payments-engine/internal/models"
)

// BillingStore is the persistence surface the billing operations run
// against. Implementations must make SettleJob a single atomic unit:
// the debit, the credit and the paid flip are all visible or none are,
// and the paid-flag and balance checks happen inside that same unit.
type BillingStore interface {
	// GetParty returns the party by id, or models.ErrPartyNotFound.
	GetParty(ctx context.Context, id int64) (models.Party, error)

	// GetJobWithContract returns the job and its contract, but only
	// when the contract is active. A missing job and a non-active
	// contract both yield models.ErrJobNotFound.
	GetJobWithContract(ctx context.Context, jobID int64) (models.Job, models.Contract, error)

	// UnpaidActiveTotal sums the prices of unpaid jobs on active
	// contracts where the given party is the client. Zero when none.
	UnpaidActiveTotal(ctx context.Context, clientID int64) (decimal.Decimal, error)

	// AddToBalance atomically increments a client's balance and
	// returns the new value. models.ErrPartyNotFound when the id does
	// not resolve to a party with the client role.
	AddToBalance(ctx context.Context, clientID int64, amount decimal.Decimal) (decimal.Decimal, error)

	// SettleJob atomically debits the client, credits the contractor
	// and marks the job paid at settledAt. It re-verifies the paid
	// flag (models.ErrAlreadyPaid) and the client balance
	// (models.ErrInsufficientFunds) under the same isolation that
	// protects the writes.
	SettleJob(ctx context.Context, jobID, clientID, contractorID int64, price decimal.Decimal, settledAt time.Time) error
}
