package models

// ContractStatus gates whether a contract's jobs are payable.
type ContractStatus string

const (
	ContractNew        ContractStatus = "new"
	ContractActive     ContractStatus = "active"
	ContractTerminated ContractStatus = "terminated"
)

// Contract links exactly one client to one contractor. The billing
// operations treat contracts as read-only reference data: only jobs
// on an active contract can be paid or counted toward the deposit cap.
type Contract struct {
	ID           int64          `json:"id"`
	Terms        string         `json:"terms"`
	Status       ContractStatus `json:"status"`
	ClientID     int64          `json:"clientId"`
	ContractorID int64          `json:"contractorId"`
}
