package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Job is one billable unit of work under a contract. Paid flips
// false→true exactly once, together with PaymentDate, inside the same
// transaction that moves the money.
type Job struct {
	ID          int64           `json:"id"`
	ContractID  int64           `json:"contractId"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Paid        bool            `json:"paid"`
	PaymentDate *time.Time      `json:"paymentDate,omitempty"`
}
