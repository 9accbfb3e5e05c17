// Package statement turns raw bank statement exports (CSV/TSV, Excel, PDF)
// into transaction records. The pipeline is: NormalizeLines converts any
// supported container into text lines, a Registry picks the matching
// BankParser from header keywords, and the parser extracts transactions plus
// the statement's current balance.
package statement

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bankfeed-dev/bankfeed/internal/model"
)

// headerScanLimit is how many lines are inspected when locating a header row
// or detecting a format. Bank exports put preamble (account info, disclaimers)
// above the table, but never this much of it.
const headerScanLimit = 40

// BankParser extracts transactions from normalized statement lines.
// Implementations are stateless and safe for reuse across files.
type BankParser interface {
	// Name returns the human-readable format name.
	Name() string
	// Parse extracts transactions from normalized lines. Row-level problems
	// are skipped; a missing header or unresolvable columns fail the file.
	Parse(lines []string) (*ParseResult, error)
}

// ParseResult holds the transactions of one statement file, in file order,
// plus the reconciled current balance (zero when none could be determined).
// Format is the detecting parser's name, filled in by the registry.
type ParseResult struct {
	Transactions   []model.ParsedTransaction
	CurrentBalance decimal.Decimal
	Format         string
}

// UnknownFormatError is returned when no registered format matched a file.
type UnknownFormatError struct {
	Attempted []string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown statement format; supported formats: %s",
		strings.Join(e.Attempted, ", "))
}

// ParseError is a file-fatal parsing failure: the container was unreadable or
// a located header did not resolve the required columns.
type ParseError struct {
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ParseError) Unwrap() error { return e.Err }
