package commands

import (
	"github.com/spf13/cobra"

	"github.com/bankfeed-dev/bankfeed/internal/api"
	"github.com/bankfeed-dev/bankfeed/internal/importer"
	"github.com/bankfeed-dev/bankfeed/internal/statement"
	"github.com/bankfeed-dev/bankfeed/internal/store"
)

func newServeCommand(dataDir *string, verbose *bool) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the import API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(*dataDir)
			log := newLogger(*verbose)

			if listen == "" {
				listen = cfg.Listen
			}

			st := store.NewCSVStore(cfg.DataDir)
			svc := importer.NewService(statement.DefaultRegistry(log), st, st, log)
			svc.SetSizeBounds(cfg.Import.MinFileSize, cfg.Import.MaxFileSize)
			server := api.NewServer(svc, st, log)

			log.Info("listening", "addr", listen, "data_dir", cfg.DataDir)
			return server.Listen(listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config)")

	return cmd
}
