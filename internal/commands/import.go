package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/bankfeed-dev/bankfeed/internal/gitops"
	"github.com/bankfeed-dev/bankfeed/internal/importer"
	"github.com/bankfeed-dev/bankfeed/internal/importlog"
	"github.com/bankfeed-dev/bankfeed/internal/statement"
	"github.com/bankfeed-dev/bankfeed/internal/store"
)

func newImportCommand(dataDir *string, verbose *bool) *cobra.Command {
	var accountID int64

	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import statement files into an account",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(*dataDir)
			log := newLogger(*verbose)

			files := make([]importer.File, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				files = append(files, importer.File{Name: filepath.Base(path), Data: data})
			}

			st := store.NewCSVStore(cfg.DataDir)
			svc := importer.NewService(statement.DefaultRegistry(log), st, st, log)
			svc.SetSizeBounds(cfg.Import.MinFileSize, cfg.Import.MaxFileSize)

			result, err := svc.ImportBatch(accountID, files, func(p importer.Progress) {
				if p.State == importer.StateImporting && p.Processed > 0 {
					fmt.Printf("  %s: %d/%d\n", p.FileName, p.Processed, p.Total)
				}
			})
			if err != nil {
				return err
			}

			if err := appendImportLog(cfg.DataDir, accountID, result); err != nil {
				log.Warn("writing import log", "error", err)
			}

			printBatchResult(result)

			if cfg.Git.AutoCommit && gitops.IsRepo(cfg.DataDir) {
				dirty, err := gitops.HasChanges(cfg.DataDir)
				if err != nil {
					log.Warn("git status failed", "error", err)
				} else if dirty {
					message := fmt.Sprintf("import: %d transactions into account %d", result.TotalImported, accountID)
					hash, err := gitops.CommitAll(cfg.DataDir, message, cfg.Git.AuthorName, cfg.Git.AuthorEmail)
					if err != nil {
						log.Warn("auto-commit failed", "error", err)
					} else {
						fmt.Printf("Committed %s\n", hash)
					}
				}
			}

			if result.FailedFiles > 0 {
				return fmt.Errorf("%d of %d files failed", result.FailedFiles, len(files))
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&accountID, "account", 0, "account ID (required)")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func appendImportLog(dataDir string, accountID int64, result importer.BatchResult) error {
	entries := make([]importlog.Entry, 0, len(result.Files))
	for _, f := range result.Files {
		entries = append(entries, importlog.Entry{
			Timestamp:  time.Now().UTC(),
			AccountID:  accountID,
			FileName:   f.FileName,
			Format:     f.Format,
			Outcome:    string(f.State),
			Parsed:     f.Parsed,
			Imported:   f.Imported,
			Duplicates: f.Duplicates,
			Detail:     f.Error,
		})
	}
	return importlog.Append(dataDir, entries)
}

func printBatchResult(result importer.BatchResult) {
	for _, f := range result.Files {
		if f.State == importer.StateFailed {
			fmt.Printf("  %s: FAILED (%s)\n", f.FileName, f.Error)
			continue
		}
		fmt.Printf("  %s: %d imported, %d duplicates\n", f.FileName, f.Imported, f.Duplicates)
	}
	fmt.Printf("Imported %d transactions (%d duplicates skipped), balance %s\n",
		result.TotalImported, result.TotalDuplicates, result.FinalBalance.StringFixed(2))
}
