// Package store defines the persistence interfaces the import pipeline
// consumes, plus a CSV-file implementation used by the CLI and HTTP server.
// The pipeline itself never depends on the concrete store.
package store

import (
	"github.com/shopspring/decimal"

	"github.com/bankfeed-dev/bankfeed/internal/model"
)

// TransactionStore is the append-only transaction table for one or more
// accounts.
type TransactionStore interface {
	// AllForDeduplication returns every stored transaction of the account,
	// in insertion order.
	AllForDeduplication(accountID int64) ([]model.Transaction, error)
	// InsertBatch appends the parsed transactions as new records.
	InsertBatch(accountID int64, txns []model.ParsedTransaction) error
	// LatestBalance returns the recorded balance of the most recently
	// inserted transaction. ok is false when the account has no
	// transactions.
	LatestBalance(accountID int64) (balance decimal.Decimal, ok bool, err error)
	// CalculateBalance recomputes the balance as initial plus the signed
	// sum of all stored transactions.
	CalculateBalance(accountID int64, initial decimal.Decimal) (decimal.Decimal, error)
}

// AccountStore owns the per-account balance field.
type AccountStore interface {
	// Get returns the account. ok is false when it does not exist.
	Get(accountID int64) (account model.Account, ok bool, err error)
	// UpdateBalance writes the account's current balance.
	UpdateBalance(accountID int64, balance decimal.Decimal) error
}
