package models

import "github.com/shopspring/decimal"

// ClientPayment is one row of the best-clients report: how much a
// client paid for jobs settled inside the requested range.
type ClientPayment struct {
	ClientID  int64           `json:"clientId"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	TotalPaid decimal.Decimal `json:"totalPaid"`
}

// ProfessionEarnings is the best-profession report result: the
// contractor profession that earned the most from jobs settled inside
// the requested range.
type ProfessionEarnings struct {
	Profession    string          `json:"profession"`
	TotalEarnings decimal.Decimal `json:"totalEarnings"`
}
