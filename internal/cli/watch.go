package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/qeforge/qeforge/internal/classify"
	"github.com/qeforge/qeforge/internal/config"
	"github.com/qeforge/qeforge/internal/metrics"
	"github.com/qeforge/qeforge/internal/watch"
)

func newWatchCmd() *cobra.Command {
	var (
		incoming      string
		stateDir      string
		metricsListen string
		poll          bool
		pw            string
		mpi           string
		timeout       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a directory and run every input deck dropped into it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadSettings(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if ws := cfg.Watch; ws != nil {
				if !cmd.Flags().Changed("incoming") && ws.Incoming != "" {
					incoming = ws.Incoming
				}
				if !cmd.Flags().Changed("state-dir") && ws.StateDir != "" {
					stateDir = ws.StateDir
				}
				if !cmd.Flags().Changed("metrics-listen") && ws.MetricsListen != "" {
					metricsListen = ws.MetricsListen
				}
				if !cmd.Flags().Changed("poll") && ws.Poll {
					poll = ws.Poll
				}
			}
			if !cmd.Flags().Changed("pw") && cfg.Solver != "" {
				pw = cfg.Solver
			}
			if !cmd.Flags().Changed("mpi") && len(cfg.MPI) > 0 {
				mpi = strings.Join(cfg.MPI, " ")
			}
			if !cmd.Flags().Changed("timeout") && cfg.Timeout > 0 {
				timeout = cfg.Timeout
			}
			if incoming == "" {
				return &ExitError{Code: 1, Msg: "--incoming directory is required"}
			}

			opts := runOptions{
				solver:    pw,
				mpi:       strings.Fields(mpi),
				timeout:   timeout,
				runDir:    filepath.Join(stateDir, "runs"),
				policy:    classify.Policy{ErrorDominant: !cfg.SuccessDominant},
				historyDB: cfg.HistoryDB,
			}
			return runWatch(incoming, stateDir, metricsListen, poll, opts)
		},
	}

	cmd.Flags().StringVar(&incoming, "incoming", "", "directory to watch for *.in decks")
	cmd.Flags().StringVar(&stateDir, "state-dir", ".qeforge/watch", "daemon state directory")
	cmd.Flags().StringVar(&metricsListen, "metrics-listen", "", "serve Prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().BoolVar(&poll, "poll", false, "poll the directory instead of using fsnotify")
	cmd.Flags().StringVar(&pw, "pw", "pw.x", "pw.x executable name or path")
	cmd.Flags().StringVar(&mpi, "mpi", "", `MPI launcher prefix, e.g. "mpirun -np 4"`)
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per-deck wall-clock timeout (0 = unlimited)")

	return cmd
}

func runWatch(incoming, stateDir, metricsListen string, poll bool, opts runOptions) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\ninterrupted, finishing current deck...")
		cancel()
	}()

	if metricsListen != "" {
		metrics.Register(prometheus.DefaultRegisterer)
		metrics.NewServer(metricsListen).Start(ctx)
	}

	w, err := watch.New(watch.Config{
		IncomingDir: incoming,
		StateDir:    stateDir,
		PollMode:    poll,
		ExecFn: func(ctx context.Context, inputPath string) watch.Result {
			outcome, rep, err := executeDeck(ctx, inputPath, opts)
			if err != nil {
				return watch.Result{Err: err}
			}
			verdict := opts.policy.Judge(rep)
			recordHistory(opts.historyDB, inputPath, outcome, verdict)
			if metricsListen != "" {
				metrics.RecordRun(verdict.String(), outcome.Elapsed, outcome.TimedOut)
			}
			return watch.Result{
				ExitCode: outcome.ExitCode,
				Verdict:  verdict.String(),
				TimedOut: outcome.TimedOut,
				Elapsed:  outcome.Elapsed,
			}
		},
	})
	if err != nil {
		return err
	}

	return w.Run(ctx)
}
