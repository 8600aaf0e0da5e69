// Package cli wires the qeforge subcommands.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Version, Commit, and BuildDate are set via LDFLAGS at build time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

var (
	verbose    bool
	configFile string
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "qeforge",
		Short: "Quantum ESPRESSO workflow runner",
		Long:  "qeforge fetches crystal structures and pseudopotentials, generates pw.x input decks, and supervises solver runs with timeout escalation and output classification.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&configFile, "config", ".qeforge.yml", "path to config file")

	root.AddCommand(newRunCmd())
	root.AddCommand(newFetchCmd())
	root.AddCommand(newGenerateCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
