package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction classifies a transaction as money in or money out.
type Direction string

const (
	DirectionIncome  Direction = "income"
	DirectionExpense Direction = "expense"
)

// ParsedTransaction is a single statement row as extracted by a bank parser.
// Amount is always a non-negative magnitude; Direction carries the sign.
// Balance is the balance after the transaction as printed on the statement,
// zero when the statement has no balance column.
type ParsedTransaction struct {
	Date        time.Time
	ValueDate   time.Time // zero when the statement has no value-date column
	Description string
	Reference   string // cheque/reference number, empty when absent
	Amount      decimal.Decimal
	Direction   Direction
	Balance     decimal.Decimal
}

// Signed returns the amount with direction applied: negative for expenses.
func (t ParsedTransaction) Signed() decimal.Decimal {
	if t.Direction == DirectionExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Transaction is a persisted transaction record.
type Transaction struct {
	ID          string
	AccountID   int64
	Date        time.Time
	ValueDate   time.Time
	Description string
	Reference   string
	Amount      decimal.Decimal
	Direction   Direction
	Balance     decimal.Decimal
}

// Signed returns the amount with direction applied: negative for expenses.
func (t Transaction) Signed() decimal.Decimal {
	if t.Direction == DirectionExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}
