package statement

import "log/slog"

// HDFCParser handles HDFC-style exports whose table uses
// Date | Particulars | Withdrawal | Deposit | Balance columns.
// Kotak and Axis exports use the same layout and parse identically.
type HDFCParser struct {
	tableParser
}

var hdfcHeaderSets = [][]string{
	{"particulars", "withdrawal"},
	{"particulars", "deposit"},
	{"description", "withdrawal"},
	{"narration", "withdrawal"},
}

var hdfcDateLayouts = []string{
	"2 Jan 2006",
	"02 Jan 2006",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2006-01-02",
	"2 Jan 06",
	"02 Jan 06",
	"02-Jan-06",
	"2-Jan-06",
}

// NewHDFCParser returns a parser for the Particulars/Withdrawal/Deposit
// layout. log may be nil.
func NewHDFCParser(log *slog.Logger) *HDFCParser {
	return &HDFCParser{tableParser{
		name:        "HDFC",
		headerSets:  hdfcHeaderSets,
		dateLayouts: hdfcDateLayouts,
		log:         log,
	}}
}
