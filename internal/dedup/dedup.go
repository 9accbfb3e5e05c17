// Package dedup detects whether a parsed statement row duplicates a
// transaction already stored for the account. Three strategies run in
// order of confidence: exact field match, matching reference numbers,
// and a fuzzy match for near-identical rows.
package dedup

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bankfeed-dev/bankfeed/internal/model"
)

// MatchType names the strategy that flagged a duplicate.
type MatchType string

const (
	MatchExact     MatchType = "exact"
	MatchReference MatchType = "reference"
	MatchClose     MatchType = "close"
)

// Result is the outcome of a duplicate check. Match and Confidence are only
// meaningful when Duplicate is true.
type Result struct {
	Duplicate  bool
	Match      MatchType
	Confidence float64
}

const (
	confidenceExact     = 1.0
	confidenceReference = 0.95
	confidenceClose     = 0.85

	closeAmountTolerance  = 0.01
	closeSimilarityCutoff = 0.8
)

// TransactionSource supplies the stored transactions to check against.
type TransactionSource interface {
	AllForDeduplication(accountID int64) ([]model.Transaction, error)
}

// Checker runs duplicate detection against stored transactions.
type Checker struct {
	source TransactionSource
}

func NewChecker(source TransactionSource) *Checker {
	return &Checker{source: source}
}

// Check tests a parsed row against every stored transaction of the account.
// The first strategy that matches wins; exact beats reference beats close.
func (c *Checker) Check(accountID int64, candidate model.ParsedTransaction) (Result, error) {
	existing, err := c.source.AllForDeduplication(accountID)
	if err != nil {
		return Result{}, fmt.Errorf("loading transactions for account %d: %w", accountID, err)
	}
	return CheckAgainst(candidate, existing), nil
}

// CheckAgainst tests a parsed row against an in-memory transaction list.
func CheckAgainst(candidate model.ParsedTransaction, existing []model.Transaction) Result {
	for _, t := range existing {
		if isExactMatch(candidate, t) {
			return Result{Duplicate: true, Match: MatchExact, Confidence: confidenceExact}
		}
	}
	for _, t := range existing {
		if isReferenceMatch(candidate, t) {
			return Result{Duplicate: true, Match: MatchReference, Confidence: confidenceReference}
		}
	}
	for _, t := range existing {
		if isCloseMatch(candidate, t) {
			return Result{Duplicate: true, Match: MatchClose, Confidence: confidenceClose}
		}
	}
	return Result{}
}

func isExactMatch(candidate model.ParsedTransaction, t model.Transaction) bool {
	return sameDay(candidate.Date, t.Date) &&
		candidate.Amount.Equal(t.Amount) &&
		candidate.Description == t.Description
}

func isReferenceMatch(candidate model.ParsedTransaction, t model.Transaction) bool {
	return candidate.Reference != "" &&
		strings.EqualFold(candidate.Reference, t.Reference)
}

func isCloseMatch(candidate model.ParsedTransaction, t model.Transaction) bool {
	dayDiff := candidate.Date.Sub(t.Date).Hours() / 24
	if dayDiff < -1 || dayDiff > 1 {
		return false
	}
	diff, _ := candidate.Amount.Sub(t.Amount).Abs().Float64()
	if diff >= closeAmountTolerance {
		return false
	}
	return Similarity(candidate.Description, t.Description) > closeSimilarityCutoff
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// ExactKey builds the lookup key used by batch imports to skip exact
// duplicates without rescanning the store per row.
func ExactKey(date time.Time, amount decimal.Decimal, description string) string {
	return date.Format("2006-01-02") + "|" + amount.String() + "|" + description
}

// BuildKeySet indexes stored transactions by their exact-match key.
func BuildKeySet(existing []model.Transaction) map[string]struct{} {
	keys := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		keys[ExactKey(t.Date, t.Amount, t.Description)] = struct{}{}
	}
	return keys
}

// Similarity is a normalized Levenshtein ratio over lowercased, trimmed
// strings: 1 means identical, 0 means entirely different.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1
	}
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(longest)
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
