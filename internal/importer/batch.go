// Package importer orchestrates statement imports: parse each uploaded
// file, filter out duplicates against the account's history, persist the
// survivors, and bring the account balance up to date.
package importer

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/bankfeed-dev/bankfeed/internal/dedup"
	"github.com/bankfeed-dev/bankfeed/internal/model"
	"github.com/bankfeed-dev/bankfeed/internal/statement"
	"github.com/bankfeed-dev/bankfeed/internal/store"
)

// FileState tracks where a file is in the import pipeline.
type FileState string

const (
	StateParsing            FileState = "parsing"
	StateCheckingDuplicates FileState = "checking_duplicates"
	StateImporting          FileState = "importing"
	StateCompleted          FileState = "completed"
	StateFailed             FileState = "failed"
)

// progressInterval bounds callback overhead during large imports.
const progressInterval = 50

// File is one uploaded statement.
type File struct {
	Name string
	Data []byte
}

// Progress is a snapshot surfaced to the caller as a file moves through
// the pipeline. Processed and Total are only set during importing.
type Progress struct {
	FileName  string
	State     FileState
	Processed int
	Total     int
}

// ProgressFunc receives progress snapshots. It runs synchronously on the
// import worker and must return quickly.
type ProgressFunc func(Progress)

// FileResult records the outcome of one file. Format is the detected
// statement format name, empty when parsing never got that far.
type FileResult struct {
	FileName   string
	Format     string
	State      FileState
	Parsed     int
	Imported   int
	Duplicates int
	Error      string
}

// BatchResult aggregates a whole import run.
type BatchResult struct {
	Files           []FileResult
	SuccessfulFiles int
	FailedFiles     int
	TotalParsed     int
	TotalImported   int
	TotalDuplicates int
	FinalBalance    decimal.Decimal
}

// Service runs batch imports. Files are processed strictly sequentially:
// duplicate detection for a later file must see transactions inserted by
// earlier files in the same batch. Callers must not run two imports
// against the same account concurrently.
type Service struct {
	registry  *statement.Registry
	txns      store.TransactionStore
	accounts  store.AccountStore
	validator *Validator
	log       *slog.Logger
}

// NewService wires the import pipeline together.
func NewService(registry *statement.Registry, txns store.TransactionStore, accounts store.AccountStore, log *slog.Logger) *Service {
	return &Service{
		registry:  registry,
		txns:      txns,
		accounts:  accounts,
		validator: NewValidator(),
		log:       log,
	}
}

// SetSizeBounds overrides the validator's file size limits. Zero or
// negative values keep the current bound.
func (s *Service) SetSizeBounds(minSize, maxSize int64) {
	if minSize > 0 {
		s.validator.MinSize = minSize
	}
	if maxSize > 0 {
		s.validator.MaxSize = maxSize
	}
}

// ImportFile imports a single statement file.
func (s *Service) ImportFile(accountID int64, file File, onProgress ProgressFunc) (BatchResult, error) {
	return s.ImportBatch(accountID, []File{file}, onProgress)
}

// ImportBatch imports a set of statement files into one account. A file
// that fails to parse is recorded as failed and the batch moves on; only
// account-level problems abort the whole call.
func (s *Service) ImportBatch(accountID int64, files []File, onProgress ProgressFunc) (BatchResult, error) {
	account, ok, err := s.accounts.Get(accountID)
	if err != nil {
		return BatchResult{}, fmt.Errorf("loading account %d: %w", accountID, err)
	}
	if !ok {
		return BatchResult{}, fmt.Errorf("account %d not found", accountID)
	}

	builder := newResultBuilder()
	for _, file := range files {
		result := s.importOne(account, file, onProgress)
		builder.add(result)
		s.logf(result)
	}

	balance, err := s.finalBalance(account)
	if err != nil {
		return BatchResult{}, err
	}
	return builder.finalize(balance), nil
}

func (s *Service) importOne(account model.Account, file File, onProgress ProgressFunc) FileResult {
	result := FileResult{FileName: file.Name}

	fail := func(err error) FileResult {
		result.State = StateFailed
		result.Error = err.Error()
		notify(onProgress, Progress{FileName: file.Name, State: StateFailed})
		return result
	}

	notify(onProgress, Progress{FileName: file.Name, State: StateParsing})
	if err := s.validator.Validate(file.Name, int64(len(file.Data))); err != nil {
		return fail(err)
	}
	parsed, err := s.registry.ParseStatement(file.Data)
	if err != nil {
		return fail(err)
	}
	result.Format = parsed.Format
	result.Parsed = len(parsed.Transactions)

	notify(onProgress, Progress{FileName: file.Name, State: StateCheckingDuplicates})
	existing, err := s.txns.AllForDeduplication(account.ID)
	if err != nil {
		return fail(err)
	}
	keys := dedup.BuildKeySet(existing)

	notify(onProgress, Progress{FileName: file.Name, State: StateImporting, Total: result.Parsed})
	// The key set is built from stored transactions only and never grows
	// mid-file: a statement legitimately repeats identical rows (same-day
	// repeated UPI/POS payments) and both must import. Later files in the
	// batch still see this file's rows through the per-file reload above.
	var accepted []model.ParsedTransaction
	for i, txn := range parsed.Transactions {
		key := dedup.ExactKey(txn.Date, txn.Amount, txn.Description)
		if _, dup := keys[key]; dup {
			result.Duplicates++
		} else {
			accepted = append(accepted, txn)
		}
		if (i+1)%progressInterval == 0 {
			notify(onProgress, Progress{FileName: file.Name, State: StateImporting, Processed: i + 1, Total: result.Parsed})
		}
	}

	if len(accepted) > 0 {
		if err := s.txns.InsertBatch(account.ID, accepted); err != nil {
			return fail(err)
		}
	}
	result.Imported = len(accepted)

	if err := s.updateBalance(account, parsed.CurrentBalance); err != nil {
		return fail(err)
	}

	result.State = StateCompleted
	notify(onProgress, Progress{FileName: file.Name, State: StateCompleted, Processed: result.Parsed, Total: result.Parsed})
	return result
}

// updateBalance writes the account's new balance, trusting sources in
// order: the balance detected in the statement itself, then the last
// stored transaction's recorded balance, then a recomputation from the
// initial balance plus the signed sum of all transactions.
func (s *Service) updateBalance(account model.Account, detected decimal.Decimal) error {
	balance := detected
	if balance.IsZero() {
		latest, ok, err := s.txns.LatestBalance(account.ID)
		if err != nil {
			return fmt.Errorf("reading latest balance: %w", err)
		}
		if ok && !latest.IsZero() {
			balance = latest
		} else {
			balance, err = s.txns.CalculateBalance(account.ID, account.InitialBalance)
			if err != nil {
				return fmt.Errorf("recomputing balance: %w", err)
			}
		}
	}
	if err := s.accounts.UpdateBalance(account.ID, balance); err != nil {
		return fmt.Errorf("updating balance: %w", err)
	}
	return nil
}

func (s *Service) finalBalance(account model.Account) (decimal.Decimal, error) {
	refreshed, ok, err := s.accounts.Get(account.ID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("reloading account %d: %w", account.ID, err)
	}
	if !ok {
		return decimal.Zero, fmt.Errorf("account %d disappeared during import", account.ID)
	}
	return refreshed.CurrentBalance, nil
}

func (s *Service) logf(result FileResult) {
	if s.log == nil {
		return
	}
	if result.State == StateFailed {
		s.log.Warn("file import failed", "file", result.FileName, "error", result.Error)
		return
	}
	s.log.Info("file imported",
		"file", result.FileName,
		"format", result.Format,
		"parsed", result.Parsed,
		"imported", result.Imported,
		"duplicates", result.Duplicates)
}

func notify(onProgress ProgressFunc, p Progress) {
	if onProgress != nil {
		onProgress(p)
	}
}

// resultBuilder accumulates per-file outcomes and produces the immutable
// batch summary in one finalize step.
type resultBuilder struct {
	files           []FileResult
	successful      int
	failed          int
	totalParsed     int
	totalImported   int
	totalDuplicates int
}

func newResultBuilder() *resultBuilder {
	return &resultBuilder{}
}

func (b *resultBuilder) add(r FileResult) {
	b.files = append(b.files, r)
	if r.State == StateFailed {
		b.failed++
		return
	}
	b.successful++
	b.totalParsed += r.Parsed
	b.totalImported += r.Imported
	b.totalDuplicates += r.Duplicates
}

func (b *resultBuilder) finalize(balance decimal.Decimal) BatchResult {
	return BatchResult{
		Files:           b.files,
		SuccessfulFiles: b.successful,
		FailedFiles:     b.failed,
		TotalParsed:     b.totalParsed,
		TotalImported:   b.totalImported,
		TotalDuplicates: b.totalDuplicates,
		FinalBalance:    balance,
	}
}
