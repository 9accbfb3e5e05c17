package statement

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bankfeed-dev/bankfeed/internal/model"
)

// FileOrder is the chronological direction of a statement file, inferred
// once from the first and last transaction dates.
type FileOrder int

const (
	// OrderUnclear means the first and last dates are equal, so position
	// carries no ordering information.
	OrderUnclear FileOrder = iota
	// OrderAscending means oldest transaction first.
	OrderAscending
	// OrderDescending means newest transaction first.
	OrderDescending
)

// detectFileOrder compares the first and last transaction dates of the
// original, unfiltered list. Order is inferred from dates and array position
// only, never from amount magnitudes.
func detectFileOrder(txns []model.ParsedTransaction) FileOrder {
	if len(txns) < 2 {
		return OrderUnclear
	}
	first, last := txns[0].Date, txns[len(txns)-1].Date
	switch {
	case first.After(last):
		return OrderDescending
	case first.Before(last):
		return OrderAscending
	default:
		return OrderUnclear
	}
}

// openingBalanceMarkers tag rows that carry a period-start balance rather
// than a real transaction. Such rows must never win balance selection even
// when they hold the maximum date.
var openingBalanceMarkers = []string{
	"opening balance",
	"brought forward",
	"b/f",
}

func isOpeningBalanceRow(desc string) bool {
	lower := strings.ToLower(desc)
	for _, marker := range openingBalanceMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// DetectCurrentBalance picks the statement's current balance: the recorded
// balance of the chronologically last transaction, regardless of whether the
// file lists newest or oldest first. Opening-balance rows and rows without a
// positive recorded balance are not candidates. Returns zero when no
// candidate exists; the caller then falls back to a stored balance or a
// ledger recomputation.
func DetectCurrentBalance(txns []model.ParsedTransaction) decimal.Decimal {
	var candidates []model.ParsedTransaction
	for _, t := range txns {
		if t.Balance.IsPositive() && !isOpeningBalanceRow(t.Description) {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return decimal.Zero
	}

	latest := candidates[0].Date
	for _, t := range candidates[1:] {
		if t.Date.After(latest) {
			latest = t.Date
		}
	}

	var onLatest []model.ParsedTransaction
	for _, t := range candidates {
		if t.Date.Equal(latest) {
			onLatest = append(onLatest, t)
		}
	}

	switch detectFileOrder(txns) {
	case OrderDescending:
		return onLatest[0].Balance
	case OrderAscending:
		return onLatest[len(onLatest)-1].Balance
	default:
		// Same first/last date: position tells us nothing, so take the
		// largest recorded balance among the latest-date rows.
		best := onLatest[0].Balance
		for _, t := range onLatest[1:] {
			if t.Balance.GreaterThan(best) {
				best = t.Balance
			}
		}
		return best
	}
}
