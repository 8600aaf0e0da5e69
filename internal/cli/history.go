package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qeforge/qeforge/internal/config"
	"github.com/qeforge/qeforge/internal/history"
	"github.com/qeforge/qeforge/internal/report"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent solver runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadSettings(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			dbPath := cfg.HistoryDB
			if dbPath == "" {
				dbPath = history.DefaultPath()
			}

			store, err := history.Open(dbPath)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer func() { _ = store.Close() }()

			recs, err := store.Recent(limit)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			report.NewTextReporter(os.Stdout, isTerminal()).PrintHistory(recs)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")

	return cmd
}
