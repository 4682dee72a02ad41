package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Domain errors are pure — no infrastructure dependency. Every
// precondition failure maps to exactly one of these; storage faults
// are wrapped and surface as distinct operational errors.
var (
	// ErrInvalidRequest means the caller sent malformed input; no
	// state was examined.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrPartyNotFound means the target id does not resolve to a
	// party in the required role.
	ErrPartyNotFound = errors.New("client not found")

	// ErrJobNotFound covers both a missing job and a job whose
	// contract is not active. The two are deliberately
	// indistinguishable so callers cannot probe contract state.
	ErrJobNotFound = errors.New("job not found or contract not active")

	// ErrUnauthenticated means the identity token did not resolve.
	ErrUnauthenticated = errors.New("profile not available")

	// ErrNotAuthorized means the identity resolved but is not the
	// paying client on the job's contract.
	ErrNotAuthorized = errors.New("unauthorized to pay for this job")

	// ErrAlreadyPaid is the idempotence guard for repeated payment
	// attempts on a settled job.
	ErrAlreadyPaid = errors.New("job is already paid")

	// ErrInsufficientFunds means the client balance is below the job
	// price.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNoResults means a reporting query matched no paid jobs in
	// the requested range.
	ErrNoResults = errors.New("no paid jobs in the specified date range")
)

// DepositCapError rejects a deposit above 25% of the client's
// outstanding unpaid job total. Cap is rounded to money precision for
// display.
type DepositCapError struct {
	Cap decimal.Decimal
}

func (e *DepositCapError) Error() string {
	return fmt.Sprintf("deposit exceeds the maximum allowed limit of %s", e.Cap.StringFixed(2))
}
