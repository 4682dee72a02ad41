package models

import "github.com/shopspring/decimal"

// Role says which side of a contract a party can stand on.
type Role string

const (
	RoleClient     Role = "client"
	RoleContractor Role = "contractor"
)

// Party is a funding or earning account. Balance is money with two
// fractional digits; it is never negative in committed state and is
// only ever mutated by the billing operations.
type Party struct {
	ID         int64           `json:"id"`
	FirstName  string          `json:"firstName"`
	LastName   string          `json:"lastName"`
	Profession string          `json:"profession"`
	Balance    decimal.Decimal `json:"balance"`
	Role       Role            `json:"role"`
}
