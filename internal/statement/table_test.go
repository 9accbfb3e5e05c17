package statement

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankfeed-dev/bankfeed/internal/model"
)

func toLines(s string) []string {
	return strings.Split(s, "\n")
}

func TestHDFCParseBasic(t *testing.T) {
	lines := toLines(`Date,Particulars,Withdrawal,Deposit,Balance
01/01/2024,SALARY JAN,,"50,000.00","60,000.00"
05/01/2024,ATM WDL MUMBAI,"2,000.00",,"58,000.00"
09/01/2024,NETFLIX SUBSCRIPTION,499.00,,"57,501.00"`)

	res, err := NewHDFCParser(nil).Parse(lines)
	require.NoError(t, err)
	require.Len(t, res.Transactions, 3)

	first := res.Transactions[0]
	assert.Equal(t, "SALARY JAN", first.Description)
	assert.Equal(t, model.DirectionIncome, first.Direction)
	assert.True(t, first.Amount.Equal(decimal.NewFromInt(50000)))

	second := res.Transactions[1]
	assert.Equal(t, model.DirectionExpense, second.Direction)
	assert.True(t, second.Amount.Equal(decimal.NewFromInt(2000)))

	// Ascending file: current balance is the last row's.
	assert.True(t, res.CurrentBalance.Equal(decimal.NewFromInt(57501)))
}

func TestHDFCParseSkipsPreambleBeforeHeader(t *testing.T) {
	lines := toLines(`HDFC BANK LTD
Statement of account
Account No: XXXX1234

Date,Particulars,Withdrawal,Deposit,Balance
05/01/2024,ATM WDL,500.00,,"9,500.00"`)

	res, err := NewHDFCParser(nil).Parse(lines)
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "ATM WDL", res.Transactions[0].Description)
}

func TestHDFCParseSkipsBadRows(t *testing.T) {
	lines := toLines(`Date,Particulars,Withdrawal,Deposit,Balance
05/01/2024,ATM WDL,500.00,,"9,500.00"
not a date,garbage row,1,2,3
06/01/2024,,100.00,,"9,400.00"
07/01/2024,NO AMOUNT ROW,,,"9,400.00"

08/01/2024,POS PURCHASE,250.00,,"9,150.00"`)

	res, err := NewHDFCParser(nil).Parse(lines)
	require.NoError(t, err)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, "ATM WDL", res.Transactions[0].Description)
	assert.Equal(t, "POS PURCHASE", res.Transactions[1].Description)
}

func TestHDFCParseNoHeaderIsFatal(t *testing.T) {
	lines := toLines("some text\nmore text\n1,2,3")

	_, err := NewHDFCParser(nil).Parse(lines)
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, err.Error(), "header not found")
}

func TestHDFCParseDateVariants(t *testing.T) {
	lines := toLines(`Date,Particulars,Withdrawal,Deposit,Balance
02-Jan-24,RENT,15000.00,,"45,000.00"
5 Feb 2024,GROCERIES,2300.00,,"42,700.00"`)

	res, err := NewHDFCParser(nil).Parse(lines)
	require.NoError(t, err)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, 2024, res.Transactions[0].Date.Year())
	assert.Equal(t, 2, int(res.Transactions[1].Date.Month()))
}

func TestSBIParseBasic(t *testing.T) {
	lines := toLines(`Txn Date,Value Date,Description,Ref No./Cheque No.,Debit,Credit,Balance
05 Jan 2024,05 Jan 2024,UPI/grocery store,UPI401234,450.00,,"12,550.00"
07 Jan 2024,08 Jan 2024,NEFT SALARY,NEFT998877,,"55,000.00","67,550.00"`)

	res, err := NewSBIParser(nil).Parse(lines)
	require.NoError(t, err)
	require.Len(t, res.Transactions, 2)

	first := res.Transactions[0]
	assert.Equal(t, model.DirectionExpense, first.Direction)
	assert.Equal(t, "UPI401234", first.Reference)

	second := res.Transactions[1]
	assert.Equal(t, model.DirectionIncome, second.Direction)
	assert.Equal(t, 8, second.ValueDate.Day())

	assert.True(t, res.CurrentBalance.Equal(decimal.RequireFromString("67550")))
}

func TestSBIParseTabDelimited(t *testing.T) {
	lines := []string{
		"Txn Date\tDescription\tDebit\tCredit\tBalance",
		"05/01/2024\tATM WDL\t500.00\t\t9500.00",
	}

	res, err := NewSBIParser(nil).Parse(lines)
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "ATM WDL", res.Transactions[0].Description)
}

func TestSBIParseMissingDescriptionIsFatal(t *testing.T) {
	lines := toLines(`Txn Date,Debit Notes
05/01/2024,something`)

	_, err := NewSBIParser(nil).Parse(lines)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "date, description")
}

func TestSBIParseCombinedAmountColumnIsFatal(t *testing.T) {
	// A combined Debit/Credit header resolves to neither amount column.
	lines := toLines(`Txn Date,Description,Debit/Credit,Balance
05/01/2024,something,500.00,9500.00`)

	_, err := NewSBIParser(nil).Parse(lines)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount columns")
}

func TestGenericParserFallsBackToHDFCRules(t *testing.T) {
	lines := toLines(`Date,Narration,Withdrawal,Deposit,Balance
05/01/2024,ATM WDL,500.00,,"9,500.00"`)

	res, err := NewGenericParser(nil).Parse(lines)
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)
}

func TestGenericParserFailsWhenNothingMatches(t *testing.T) {
	lines := toLines("totally\nunrelated\ncontent")

	_, err := NewGenericParser(nil).Parse(lines)
	require.Error(t, err)

	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestParserNames(t *testing.T) {
	assert.Equal(t, "HDFC", NewHDFCParser(nil).Name())
	assert.Equal(t, "SBI", NewSBIParser(nil).Name())
	assert.Equal(t, "Generic", NewGenericParser(nil).Name())
}
