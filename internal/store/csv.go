package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bankfeed-dev/bankfeed/internal/model"
)

// CSVStore persists accounts and transactions as CSV files under a data
// directory:
//
//	<dataDir>/accounts.csv
//	<dataDir>/transactions/<accountID>.csv
//
// It implements both TransactionStore and AccountStore. The transaction
// files are append-only; accounts.csv is rewritten on balance updates.
type CSVStore struct {
	dataDir string
}

// NewCSVStore returns a store rooted at dataDir.
func NewCSVStore(dataDir string) *CSVStore {
	return &CSVStore{dataDir: dataDir}
}

const (
	txnNumFields = 9
	dateFormat   = "2006-01-02"

	txnColID        = 0
	txnColAccountID = 1
	txnColDate      = 2
	txnColValueDate = 3
	txnColDesc      = 4
	txnColRef       = 5
	txnColAmount    = 6
	txnColDirection = 7
	txnColBalance   = 8
)

// txnHeader is the CSV header for per-account transaction files.
const txnHeader = "id,account_id,date,value_date,description,reference,amount,direction,balance"

const (
	acctNumFields = 5

	acctColID      = 0
	acctColName    = 1
	acctColBank    = 2
	acctColInitial = 3
	acctColCurrent = 4
)

// acctHeader is the CSV header for accounts.csv.
const acctHeader = "id,name,bank,initial_balance,current_balance"

func (s *CSVStore) accountsPath() string {
	return filepath.Join(s.dataDir, "accounts.csv")
}

func (s *CSVStore) transactionsPath(accountID int64) string {
	return filepath.Join(s.dataDir, "transactions", fmt.Sprintf("%d.csv", accountID))
}

// AllForDeduplication returns every stored transaction of the account in
// insertion order. A missing file means no transactions yet.
func (s *CSVStore) AllForDeduplication(accountID int64) ([]model.Transaction, error) {
	f, err := os.Open(s.transactionsPath(accountID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening transactions file: %w", err)
	}
	defer f.Close()

	return readTransactions(f)
}

// InsertBatch appends parsed transactions to the account's file, assigning
// each a fresh ID. The header is written when the file is new.
func (s *CSVStore) InsertBatch(accountID int64, txns []model.ParsedTransaction) error {
	if len(txns) == 0 {
		return nil
	}

	path := s.transactionsPath(accountID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating transactions dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening transactions file: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, txnHeader); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	cw := csv.NewWriter(f)
	for _, parsed := range txns {
		record := model.Transaction{
			ID:          uuid.NewString(),
			AccountID:   accountID,
			Date:        parsed.Date,
			ValueDate:   parsed.ValueDate,
			Description: parsed.Description,
			Reference:   parsed.Reference,
			Amount:      parsed.Amount,
			Direction:   parsed.Direction,
			Balance:     parsed.Balance,
		}
		if err := cw.Write(marshalTransaction(record)); err != nil {
			return fmt.Errorf("writing transaction: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// LatestBalance returns the recorded balance of the last inserted
// transaction.
func (s *CSVStore) LatestBalance(accountID int64) (decimal.Decimal, bool, error) {
	txns, err := s.AllForDeduplication(accountID)
	if err != nil {
		return decimal.Zero, false, err
	}
	if len(txns) == 0 {
		return decimal.Zero, false, nil
	}
	return txns[len(txns)-1].Balance, true, nil
}

// CalculateBalance recomputes the balance from the initial balance plus the
// signed sum of all stored transactions.
func (s *CSVStore) CalculateBalance(accountID int64, initial decimal.Decimal) (decimal.Decimal, error) {
	txns, err := s.AllForDeduplication(accountID)
	if err != nil {
		return decimal.Zero, err
	}

	balance := initial
	for _, t := range txns {
		balance = balance.Add(t.Signed())
	}
	return balance, nil
}

// Get returns an account from accounts.csv.
func (s *CSVStore) Get(accountID int64) (model.Account, bool, error) {
	accounts, err := s.Accounts()
	if err != nil {
		return model.Account{}, false, err
	}
	for _, a := range accounts {
		if a.ID == accountID {
			return a, true, nil
		}
	}
	return model.Account{}, false, nil
}

// UpdateBalance rewrites accounts.csv with the account's new balance.
func (s *CSVStore) UpdateBalance(accountID int64, balance decimal.Decimal) error {
	accounts, err := s.Accounts()
	if err != nil {
		return err
	}

	found := false
	for i := range accounts {
		if accounts[i].ID == accountID {
			accounts[i].CurrentBalance = balance
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("account %d not found", accountID)
	}

	return s.SaveAccounts(accounts)
}

// Accounts reads all accounts. A missing accounts.csv means none yet.
func (s *CSVStore) Accounts() ([]model.Account, error) {
	f, err := os.Open(s.accountsPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening accounts file: %w", err)
	}
	defer f.Close()

	return readAccounts(f)
}

// SaveAccounts writes accounts.csv, creating the data directory if needed.
func (s *CSVStore) SaveAccounts(accounts []model.Account) error {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	f, err := os.Create(s.accountsPath())
	if err != nil {
		return fmt.Errorf("creating accounts file: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, acctHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	cw := csv.NewWriter(f)
	for _, a := range accounts {
		if err := cw.Write(marshalAccount(a)); err != nil {
			return fmt.Errorf("writing account %d: %w", a.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func readTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = txnNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var txns []model.Transaction
	for i, rec := range records[1:] {
		t, err := unmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

func marshalTransaction(t model.Transaction) []string {
	row := make([]string, txnNumFields)
	row[txnColID] = t.ID
	row[txnColAccountID] = strconv.FormatInt(t.AccountID, 10)
	row[txnColDate] = t.Date.Format(dateFormat)
	if !t.ValueDate.IsZero() {
		row[txnColValueDate] = t.ValueDate.Format(dateFormat)
	}
	row[txnColDesc] = t.Description
	row[txnColRef] = t.Reference
	row[txnColAmount] = t.Amount.StringFixed(2)
	row[txnColDirection] = string(t.Direction)
	if !t.Balance.IsZero() {
		row[txnColBalance] = t.Balance.StringFixed(2)
	}
	return row
}

func unmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != txnNumFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", txnNumFields, len(record))
	}

	accountID, err := strconv.ParseInt(record[txnColAccountID], 10, 64)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing account_id %q: %w", record[txnColAccountID], err)
	}

	date, err := time.Parse(dateFormat, record[txnColDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[txnColDate], err)
	}

	var valueDate time.Time
	if record[txnColValueDate] != "" {
		valueDate, err = time.Parse(dateFormat, record[txnColValueDate])
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing value_date %q: %w", record[txnColValueDate], err)
		}
	}

	amount, err := decimal.NewFromString(record[txnColAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[txnColAmount], err)
	}

	var balance decimal.Decimal
	if record[txnColBalance] != "" {
		balance, err = decimal.NewFromString(record[txnColBalance])
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing balance %q: %w", record[txnColBalance], err)
		}
	}

	return model.Transaction{
		ID:          record[txnColID],
		AccountID:   accountID,
		Date:        date,
		ValueDate:   valueDate,
		Description: record[txnColDesc],
		Reference:   record[txnColRef],
		Amount:      amount,
		Direction:   model.Direction(record[txnColDirection]),
		Balance:     balance,
	}, nil
}

func readAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = acctNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		a, err := unmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func marshalAccount(a model.Account) []string {
	row := make([]string, acctNumFields)
	row[acctColID] = strconv.FormatInt(a.ID, 10)
	row[acctColName] = a.Name
	row[acctColBank] = a.Bank
	row[acctColInitial] = a.InitialBalance.StringFixed(2)
	row[acctColCurrent] = a.CurrentBalance.StringFixed(2)
	return row
}

func unmarshalAccount(record []string) (model.Account, error) {
	if len(record) != acctNumFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", acctNumFields, len(record))
	}

	id, err := strconv.ParseInt(record[acctColID], 10, 64)
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing id %q: %w", record[acctColID], err)
	}

	initial, err := decimal.NewFromString(record[acctColInitial])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing initial_balance %q: %w", record[acctColInitial], err)
	}

	current, err := decimal.NewFromString(record[acctColCurrent])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing current_balance %q: %w", record[acctColCurrent], err)
	}

	return model.Account{
		ID:             id,
		Name:           record[acctColName],
		Bank:           record[acctColBank],
		InitialBalance: initial,
		CurrentBalance: current,
	}, nil
}
