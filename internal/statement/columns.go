package statement

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ColumnMapping is the resolved correspondence from logical fields to
// physical column indices for one file. -1 means the column is absent.
// At least one of Debit/Credit must resolve or parsing fails.
type ColumnMapping struct {
	Date        int
	ValueDate   int
	Description int
	Reference   int
	Debit       int
	Credit      int
	Balance     int
}

// resolveColumns scans header cells for known header-name variants and
// assigns the first match per logical column. A header cell naming both
// "debit" and "credit" (combined Dr/Cr columns) is excluded from both amount
// columns so it cannot be misread as a single-sided amount.
func resolveColumns(cells []string) ColumnMapping {
	m := ColumnMapping{
		Date:        -1,
		ValueDate:   -1,
		Description: -1,
		Reference:   -1,
		Debit:       -1,
		Credit:      -1,
		Balance:     -1,
	}

	for i, cell := range cells {
		col := strings.ToLower(strings.TrimSpace(cell))
		switch {
		case m.ValueDate == -1 && (strings.Contains(col, "value date") || strings.Contains(col, "value dt")):
			m.ValueDate = i

		case m.Date == -1 && strings.Contains(col, "date") && !strings.Contains(col, "value"):
			m.Date = i

		case m.Description == -1 && (strings.Contains(col, "description") ||
			strings.Contains(col, "narration") ||
			strings.Contains(col, "particulars") ||
			strings.Contains(col, "remark")):
			m.Description = i

		case m.Reference == -1 && (strings.Contains(col, "ref") ||
			strings.Contains(col, "cheque") ||
			strings.Contains(col, "chq") ||
			strings.Contains(col, "transaction id")):
			m.Reference = i

		case m.Debit == -1 && isDebitHeader(col):
			m.Debit = i

		case m.Credit == -1 && isCreditHeader(col):
			m.Credit = i

		case m.Balance == -1 && strings.Contains(col, "balance"):
			m.Balance = i
		}
	}

	return m
}

func isDebitHeader(col string) bool {
	if strings.Contains(col, "credit") {
		return false
	}
	return strings.Contains(col, "debit") ||
		strings.Contains(col, "withdrawal") ||
		strings.Contains(col, "dr.") ||
		col == "dr" ||
		strings.Contains(col, "paid")
}

func isCreditHeader(col string) bool {
	if strings.Contains(col, "debit") {
		return false
	}
	return strings.Contains(col, "credit") ||
		strings.Contains(col, "deposit") ||
		strings.Contains(col, "cr.") ||
		col == "cr" ||
		strings.Contains(col, "received")
}

// amountCleaner strips thousands separators, currency markers and whitespace
// from statement amount cells.
var amountCleaner = strings.NewReplacer(
	",", "",
	"₹", "",
	"Rs.", "",
	"INR", "",
	" ", "",
	" ", "",
)

// parseAmount converts a statement amount cell to a decimal. Blank cells and
// the placeholders "-", "0" and "0.00" all mean zero; so does anything that
// fails to parse after cleanup, since data rows mix dashes, footnote marks
// and blanks freely and a bad cell must not kill the row.
func parseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || s == "0" || s == "0.00" {
		return decimal.Zero
	}

	cleaned := amountCleaner.Replace(s)
	if cleaned == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// parseDate tries each layout in order and returns the first that parses.
func parseDate(s string, layouts []string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
