package statement

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bankfeed-dev/bankfeed/internal/model"
)

// tableParser is the shared row-extraction engine behind the concrete bank
// parsers. A concrete parser is a tableParser configured with its format
// name, the header keyword sets that identify its layout, and the date
// layouts its bank prints.
type tableParser struct {
	name        string
	headerSets  [][]string
	dateLayouts []string
	log         *slog.Logger
}

func (p *tableParser) Name() string { return p.name }

func (p *tableParser) Parse(lines []string) (*ParseResult, error) {
	headerIdx := p.findHeaderRow(lines)
	if headerIdx == -1 {
		return nil, &ParseError{Msg: fmt.Sprintf("%s: header not found in first %d lines", p.name, headerScanLimit)}
	}

	mapping := resolveColumns(SplitLine(lines[headerIdx]))
	if mapping.Date == -1 || mapping.Description == -1 {
		return nil, &ParseError{Msg: fmt.Sprintf("%s: required columns (date, description) not found", p.name)}
	}
	if mapping.Debit == -1 && mapping.Credit == -1 {
		return nil, &ParseError{Msg: fmt.Sprintf("%s: amount columns (debit/credit) not found", p.name)}
	}

	var txns []model.ParsedTransaction
	for i := headerIdx + 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		txn, ok := p.parseRow(line, mapping)
		if !ok {
			p.debugf("skipping row", "row", i+1)
			continue
		}
		txns = append(txns, txn)
	}

	return &ParseResult{
		Transactions:   txns,
		CurrentBalance: DetectCurrentBalance(txns),
	}, nil
}

// findHeaderRow locates the header within the scan window using this
// parser's own keyword rules. Parsers re-check independently of the registry
// because they may be invoked directly.
func (p *tableParser) findHeaderRow(lines []string) int {
	limit := min(headerScanLimit, len(lines))
	for i := 0; i < limit; i++ {
		line := strings.ToLower(lines[i])
		for _, set := range p.headerSets {
			if containsAll(line, set) {
				return i
			}
		}
	}
	return -1
}

// parseRow extracts one transaction. Rows missing a parseable date, a
// description, or any non-zero amount are skipped, not fatal.
func (p *tableParser) parseRow(line string, m ColumnMapping) (model.ParsedTransaction, bool) {
	cells := SplitLine(line)
	if len(cells) <= m.Date || len(cells) <= m.Description {
		return model.ParsedTransaction{}, false
	}

	dateStr := cells[m.Date]
	if dateStr == "" || dateStr == "-" || strings.EqualFold(dateStr, "date") {
		return model.ParsedTransaction{}, false
	}
	date, ok := parseDate(dateStr, p.dateLayouts)
	if !ok {
		p.debugf("unparseable date", "value", dateStr)
		return model.ParsedTransaction{}, false
	}

	desc := strings.TrimSpace(cells[m.Description])
	if desc == "" || strings.EqualFold(desc, "particulars") || strings.EqualFold(desc, "description") {
		return model.ParsedTransaction{}, false
	}

	valueDate := date
	if m.ValueDate != -1 && len(cells) > m.ValueDate {
		if vd, ok := parseDate(cells[m.ValueDate], p.dateLayouts); ok {
			valueDate = vd
		}
	}

	var ref string
	if m.Reference != -1 && len(cells) > m.Reference {
		if r := strings.TrimSpace(cells[m.Reference]); r != "" && r != "-" {
			ref = r
		}
	}

	var debit, credit decimal.Decimal
	if m.Debit != -1 && len(cells) > m.Debit {
		debit = parseAmount(cells[m.Debit])
	}
	if m.Credit != -1 && len(cells) > m.Credit {
		credit = parseAmount(cells[m.Credit])
	}

	var amount decimal.Decimal
	var dir model.Direction
	switch {
	case debit.IsPositive():
		amount, dir = debit, model.DirectionExpense
	case credit.IsPositive():
		amount, dir = credit, model.DirectionIncome
	default:
		// No-amount row (summary, carried-forward marker, etc).
		return model.ParsedTransaction{}, false
	}

	var balance decimal.Decimal
	if m.Balance != -1 && len(cells) > m.Balance {
		balance = parseAmount(cells[m.Balance])
	}

	return model.ParsedTransaction{
		Date:        date,
		ValueDate:   valueDate,
		Description: desc,
		Reference:   ref,
		Amount:      amount,
		Direction:   dir,
		Balance:     balance,
	}, true
}

func (p *tableParser) debugf(msg string, args ...any) {
	if p.log != nil {
		p.log.Debug(msg, append([]any{"parser", p.name}, args...)...)
	}
}

func containsAll(line string, keywords []string) bool {
	for _, kw := range keywords {
		if !strings.Contains(line, kw) {
			return false
		}
	}
	return true
}
