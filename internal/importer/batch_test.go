package importer

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankfeed-dev/bankfeed/internal/model"
	"github.com/bankfeed-dev/bankfeed/internal/statement"
	"github.com/bankfeed-dev/bankfeed/internal/store"
)

const hdfcStatement = `Date,Particulars,Withdrawal,Deposit,Balance
01/01/2024,OPENING BALANCE,,,"10,000.00"
02/01/2024,SALARY JAN,,"50,000.00","60,000.00"
05/01/2024,ATM WDL MUMBAI,"2,000.00",,"58,000.00"
09/01/2024,NETFLIX SUBSCRIPTION,499.00,,"57,501.00"
`

func newService(t *testing.T) (*Service, *store.CSVStore) {
	t.Helper()
	st := store.NewCSVStore(t.TempDir())
	require.NoError(t, st.SaveAccounts([]model.Account{{
		ID:             1,
		Name:           "Main",
		Bank:           "HDFC",
		InitialBalance: decimal.NewFromInt(10000),
		CurrentBalance: decimal.NewFromInt(10000),
	}}))
	return NewService(statement.DefaultRegistry(nil), st, st, nil), st
}

func TestImportBatchSingleFile(t *testing.T) {
	svc, st := newService(t)

	result, err := svc.ImportBatch(1, []File{{Name: "jan.csv", Data: []byte(hdfcStatement)}}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessfulFiles)
	assert.Equal(t, 0, result.FailedFiles)
	assert.Equal(t, 3, result.TotalImported)
	assert.Equal(t, 0, result.TotalDuplicates)
	assert.True(t, result.FinalBalance.Equal(decimal.RequireFromString("57501")),
		"final balance %s", result.FinalBalance)

	txns, err := st.AllForDeduplication(1)
	require.NoError(t, err)
	require.Len(t, txns, 3)
	assert.Equal(t, model.DirectionIncome, txns[0].Direction)
	assert.Equal(t, model.DirectionExpense, txns[1].Direction)
}

func TestImportBatchReimportIsAllDuplicates(t *testing.T) {
	svc, st := newService(t)

	_, err := svc.ImportBatch(1, []File{{Name: "jan.csv", Data: []byte(hdfcStatement)}}, nil)
	require.NoError(t, err)

	result, err := svc.ImportBatch(1, []File{{Name: "jan-again.csv", Data: []byte(hdfcStatement)}}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessfulFiles)
	assert.Equal(t, 3, result.TotalDuplicates)
	assert.Equal(t, 0, result.TotalImported)

	txns, err := st.AllForDeduplication(1)
	require.NoError(t, err)
	assert.Len(t, txns, 3)
}

func TestImportBatchIsolatesFailedFile(t *testing.T) {
	svc, st := newService(t)

	garbage := strings.Repeat("this is not a bank statement at all\n", 10)
	result, err := svc.ImportBatch(1, []File{
		{Name: "bad.csv", Data: []byte(garbage)},
		{Name: "good.csv", Data: []byte(hdfcStatement)},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.FailedFiles)
	assert.Equal(t, 1, result.SuccessfulFiles)
	require.Len(t, result.Files, 2)
	assert.Equal(t, StateFailed, result.Files[0].State)
	assert.NotEmpty(t, result.Files[0].Error)
	assert.Equal(t, StateCompleted, result.Files[1].State)

	txns, err := st.AllForDeduplication(1)
	require.NoError(t, err)
	assert.Len(t, txns, 3)
}

func TestImportBatchDuplicatesAcrossFilesInOneBatch(t *testing.T) {
	svc, _ := newService(t)

	result, err := svc.ImportBatch(1, []File{
		{Name: "a.csv", Data: []byte(hdfcStatement)},
		{Name: "b.csv", Data: []byte(hdfcStatement)},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.SuccessfulFiles)
	assert.Equal(t, 3, result.TotalImported)
	assert.Equal(t, 3, result.TotalDuplicates)
}

func TestImportBatchKeepsRepeatedRowsWithinOneFile(t *testing.T) {
	svc, st := newService(t)

	// Two identical same-day payments are distinct transactions; only
	// rows already in the store count as duplicates.
	repeated := `Date,Particulars,Withdrawal,Deposit,Balance
05/01/2024,UPI-CHAIWALA,20.00,,"9,980.00"
05/01/2024,UPI-CHAIWALA,20.00,,"9,960.00"
05/01/2024,UPI-CHAIWALA,20.00,,"9,940.00"
`
	result, err := svc.ImportBatch(1, []File{{Name: "day.csv", Data: []byte(repeated)}}, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalImported)
	assert.Equal(t, 0, result.TotalDuplicates)

	txns, err := st.AllForDeduplication(1)
	require.NoError(t, err)
	assert.Len(t, txns, 3)

	// A re-import of the same file now hits the stored rows.
	result, err = svc.ImportBatch(1, []File{{Name: "day-again.csv", Data: []byte(repeated)}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalImported)
	assert.Equal(t, 3, result.TotalDuplicates)
}

func TestImportBatchRecordsDetectedFormat(t *testing.T) {
	svc, _ := newService(t)

	result, err := svc.ImportBatch(1, []File{{Name: "jan.csv", Data: []byte(hdfcStatement)}}, nil)
	require.NoError(t, err)

	require.Len(t, result.Files, 1)
	assert.Equal(t, "HDFC", result.Files[0].Format)
}

func TestImportBatchFailedFileHasNoFormat(t *testing.T) {
	svc, _ := newService(t)

	garbage := strings.Repeat("this is not a bank statement at all\n", 10)
	result, err := svc.ImportBatch(1, []File{{Name: "bad.csv", Data: []byte(garbage)}}, nil)
	require.NoError(t, err)

	require.Len(t, result.Files, 1)
	assert.Empty(t, result.Files[0].Format)
}

func TestSetSizeBounds(t *testing.T) {
	svc, _ := newService(t)
	svc.SetSizeBounds(1<<20, 2<<20)

	result, err := svc.ImportBatch(1, []File{{Name: "jan.csv", Data: []byte(hdfcStatement)}}, nil)
	require.NoError(t, err)

	require.Len(t, result.Files, 1)
	assert.Equal(t, StateFailed, result.Files[0].State)
	assert.Contains(t, result.Files[0].Error, "too small")

	// Zero values keep the current bounds.
	svc.SetSizeBounds(0, 0)
	result, err = svc.ImportBatch(1, []File{{Name: "jan.csv", Data: []byte(hdfcStatement)}}, nil)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, result.Files[0].State)
}

func TestImportBatchUnknownAccount(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.ImportBatch(404, []File{{Name: "jan.csv", Data: []byte(hdfcStatement)}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestImportBatchRejectsUnsupportedExtension(t *testing.T) {
	svc, _ := newService(t)

	result, err := svc.ImportBatch(1, []File{{Name: "jan.docx", Data: []byte(hdfcStatement)}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.FailedFiles)
	assert.Contains(t, result.Files[0].Error, "unsupported file type")
}

func TestImportBatchProgressStates(t *testing.T) {
	svc, _ := newService(t)

	var states []FileState
	_, err := svc.ImportBatch(1, []File{{Name: "jan.csv", Data: []byte(hdfcStatement)}}, func(p Progress) {
		states = append(states, p.State)
	})
	require.NoError(t, err)

	assert.Equal(t, []FileState{StateParsing, StateCheckingDuplicates, StateImporting, StateCompleted}, states)
}

func TestValidator(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate("statement.csv", 500))
	assert.NoError(t, v.Validate("Statement.XLSX", 500))
	assert.Error(t, v.Validate("statement.exe", 500))
	assert.Error(t, v.Validate("statement.csv", 10))
	assert.Error(t, v.Validate("statement.csv", 11<<20))
}
