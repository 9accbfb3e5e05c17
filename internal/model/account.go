package model

import "github.com/shopspring/decimal"

// Account represents a row in accounts.csv.
type Account struct {
	ID             int64
	Name           string
	Bank           string
	InitialBalance decimal.Decimal
	CurrentBalance decimal.Decimal
}
