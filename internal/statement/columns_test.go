package statement

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveColumnsHDFCLayout(t *testing.T) {
	m := resolveColumns([]string{"Date", "Particulars", "Chq/Ref No", "Withdrawal Amt", "Deposit Amt", "Closing Balance"})

	assert.Equal(t, 0, m.Date)
	assert.Equal(t, 1, m.Description)
	assert.Equal(t, 2, m.Reference)
	assert.Equal(t, 3, m.Debit)
	assert.Equal(t, 4, m.Credit)
	assert.Equal(t, 5, m.Balance)
	assert.Equal(t, -1, m.ValueDate)
}

func TestResolveColumnsSBILayout(t *testing.T) {
	m := resolveColumns([]string{"Txn Date", "Value Date", "Description", "Ref No./Cheque No.", "Debit", "Credit", "Balance"})

	assert.Equal(t, 0, m.Date)
	assert.Equal(t, 1, m.ValueDate)
	assert.Equal(t, 2, m.Description)
	assert.Equal(t, 3, m.Reference)
	assert.Equal(t, 4, m.Debit)
	assert.Equal(t, 5, m.Credit)
	assert.Equal(t, 6, m.Balance)
}

func TestResolveColumnsValueDateNotMistakenForDate(t *testing.T) {
	m := resolveColumns([]string{"Value Date", "Txn Date", "Narration", "Debit", "Credit"})

	assert.Equal(t, 0, m.ValueDate)
	assert.Equal(t, 1, m.Date)
}

func TestResolveColumnsCombinedDebitCreditExcluded(t *testing.T) {
	// A single "Debit/Credit" column must map to neither amount column.
	m := resolveColumns([]string{"Date", "Description", "Debit/Credit", "Balance"})

	assert.Equal(t, -1, m.Debit)
	assert.Equal(t, -1, m.Credit)
}

func TestResolveColumnsFirstMatchWins(t *testing.T) {
	m := resolveColumns([]string{"Date", "Narration", "Transaction Remarks", "Debit"})

	assert.Equal(t, 1, m.Description)
}

func TestResolveColumnsAllAbsent(t *testing.T) {
	m := resolveColumns([]string{"foo", "bar"})

	assert.Equal(t, -1, m.Date)
	assert.Equal(t, -1, m.Description)
	assert.Equal(t, -1, m.Debit)
	assert.Equal(t, -1, m.Credit)
	assert.Equal(t, -1, m.Balance)
	assert.Equal(t, -1, m.Reference)
}

func TestParseAmountLocaleCleanup(t *testing.T) {
	expected := decimal.RequireFromString("1234.50")

	for _, in := range []string{"₹1,234.50", "1,234.50", " 1234.50 ", "INR1234.50", "Rs.1,234.50"} {
		assert.True(t, parseAmount(in).Equal(expected), "input %q gave %s", in, parseAmount(in))
	}
}

func TestParseAmountZeroPlaceholders(t *testing.T) {
	for _, in := range []string{"-", "", "0", "0.00", "   "} {
		assert.True(t, parseAmount(in).IsZero(), "input %q", in)
	}
}

func TestParseAmountUnparseableIsZero(t *testing.T) {
	assert.True(t, parseAmount("N/A").IsZero())
	assert.True(t, parseAmount("see note 3").IsZero())
}

func TestParseAmountNegative(t *testing.T) {
	assert.True(t, parseAmount("-250.00").Equal(decimal.RequireFromString("-250")))
}

func TestParseDateFirstLayoutWins(t *testing.T) {
	layouts := []string{"02/01/2006", "2006-01-02"}

	d, ok := parseDate("05/01/2024", layouts)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), d)

	d, ok = parseDate("2024-01-05", layouts)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), d)
}

func TestParseDateFailure(t *testing.T) {
	_, ok := parseDate("not a date", hdfcDateLayouts)
	assert.False(t, ok)

	_, ok = parseDate("", hdfcDateLayouts)
	assert.False(t, ok)
}
