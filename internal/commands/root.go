package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bankfeed-dev/bankfeed/internal/buildinfo"
	"github.com/bankfeed-dev/bankfeed/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var dataDir string
	var verbose bool

	rootCmd := &cobra.Command{
		Use:     "bankfeed",
		Short:   "Bank statement import pipeline",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", ".", "data directory")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newAccountCommand(&dataDir))
	rootCmd.AddCommand(newImportCommand(&dataDir, &verbose))
	rootCmd.AddCommand(newServeCommand(&dataDir, &verbose))

	return rootCmd
}

// loadConfig reads <dataDir>/bankfeed.yaml, falling back to defaults when
// the data directory was never initialized.
func loadConfig(dataDir string) *config.Config {
	cfg, err := config.Load(filepath.Join(dataDir, config.FileName))
	if err != nil {
		return config.Default(dataDir)
	}
	cfg.DataDir = dataDir
	return cfg
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
