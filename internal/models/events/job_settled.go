package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kafka topics the billing service publishes to.
const (
	TopicJobSettled      = "job_settled"
	TopicDepositReceived = "deposit_received"
)

// JobSettled is emitted after a payment commits: the job is paid, the
// client debited and the contractor credited by Amount.
type JobSettled struct {
	EventID      string          `json:"event_id"`
	JobID        int64           `json:"job_id"`
	ContractID   int64           `json:"contract_id"`
	ClientID     int64           `json:"client_id"`
	ContractorID int64           `json:"contractor_id"`
	Amount       decimal.Decimal `json:"amount"`
	SettledAt    time.Time       `json:"settled_at"`
}

// DepositReceived is emitted after a deposit commits.
type DepositReceived struct {
	EventID    string          `json:"event_id"`
	ClientID   int64           `json:"client_id"`
	Amount     decimal.Decimal `json:"amount"`
	NewBalance decimal.Decimal `json:"new_balance"`
	ReceivedAt time.Time       `json:"received_at"`
}
