package statement

import "log/slog"

// SBIParser handles SBI-style exports whose table uses
// Txn Date | Description | Debit | Credit | Balance columns.
type SBIParser struct {
	tableParser
}

var sbiHeaderSets = [][]string{
	{"trans date", "debit"},
	{"txn date", "debit"},
	{"transaction date", "dr."},
	{"transaction date", "dr"},
	{"date", "debit(dr.)"},
	{"date", "debit"},
	{"txn date", "dr."},
	{"txn date", "dr"},
}

var sbiDateLayouts = []string{
	"2 Jan 2006",
	"02 Jan 2006",
	"2/1/2006",
	"02/01/2006",
	"2-1-2006",
	"02-01-2006",
	"2 Jan 06",
	"02 Jan 06",
	"2006-01-02",
}

// NewSBIParser returns a parser for the Txn Date/Debit/Credit layout.
// log may be nil.
func NewSBIParser(log *slog.Logger) *SBIParser {
	return &SBIParser{tableParser{
		name:        "SBI",
		headerSets:  sbiHeaderSets,
		dateLayouts: sbiDateLayouts,
		log:         log,
	}}
}
