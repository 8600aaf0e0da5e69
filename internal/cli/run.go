package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/qeforge/qeforge/internal/classify"
	"github.com/qeforge/qeforge/internal/config"
	"github.com/qeforge/qeforge/internal/deck"
	"github.com/qeforge/qeforge/internal/history"
	"github.com/qeforge/qeforge/internal/report"
	"github.com/qeforge/qeforge/internal/solver"
)

func newRunCmd() *cobra.Command {
	var (
		pw          string
		mpi         string
		timeout     time.Duration
		runDir      string
		outName     string
		noTimestamp bool
	)

	cmd := &cobra.Command{
		Use:   "run <input.in>",
		Short: "Run pw.x on an input deck with supervision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadSettings(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			opts := runOptions{
				solver:      pw,
				mpi:         strings.Fields(mpi),
				timeout:     timeout,
				runDir:      runDir,
				outName:     outName,
				noTimestamp: noTimestamp,
				policy:      classify.Policy{ErrorDominant: !cfg.SuccessDominant},
				historyDB:   cfg.HistoryDB,
			}
			if !cmd.Flags().Changed("pw") && cfg.Solver != "" {
				opts.solver = cfg.Solver
			}
			if !cmd.Flags().Changed("mpi") && len(cfg.MPI) > 0 {
				opts.mpi = cfg.MPI
			}
			if !cmd.Flags().Changed("timeout") && cfg.Timeout > 0 {
				opts.timeout = cfg.Timeout
			}
			if !cmd.Flags().Changed("run-dir") && cfg.RunDir != "" {
				opts.runDir = cfg.RunDir
			}
			if !cmd.Flags().Changed("no-timestamp") && cfg.NoTimestamp {
				opts.noTimestamp = cfg.NoTimestamp
			}

			return runDeck(args[0], opts)
		},
	}

	cmd.Flags().StringVar(&pw, "pw", "pw.x", "pw.x executable name or path")
	cmd.Flags().StringVar(&mpi, "mpi", "", `MPI launcher prefix, e.g. "mpirun -np 4"`)
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "wall-clock timeout (0 = unlimited)")
	cmd.Flags().StringVar(&runDir, "run-dir", "qe_runs", "base directory for run outputs")
	cmd.Flags().StringVar(&outName, "out", "", "output file name (default: <input>.out)")
	cmd.Flags().BoolVar(&noTimestamp, "no-timestamp", false, "write outputs directly into run-dir")

	return cmd
}

// runOptions collects everything one solver run needs; shared by the
// run command and the watch daemon.
type runOptions struct {
	solver      string
	mpi         []string
	timeout     time.Duration
	runDir      string
	outName     string
	noTimestamp bool
	policy      classify.Policy
	historyDB   string
}

func runDeck(input string, opts runOptions) error {
	// ctrl-C funnels into the supervisor's termination escalation via
	// context cancellation.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\ninterrupted, terminating solver...")
		cancel()
	}()

	outcome, rep, err := executeDeck(ctx, input, opts)
	if err != nil {
		return err
	}

	verdict := opts.policy.Judge(rep)
	report.NewTextReporter(os.Stdout, isTerminal()).PrintRunResult(input, outcome, verdict)

	recordHistory(opts.historyDB, input, outcome, verdict)

	if !outcome.TimedOut && !rep.HasError && !rep.HasSuccess {
		slog.Warn("no clear success marker in solver output", "output", outcome.OutputPath)
	}
	return mapExit(outcome, verdict)
}

// executeDeck resolves, prepares, supervises, and classifies one run.
// Precondition failures surface as *ExitError with code 1 before any
// process is spawned or sink file created.
func executeDeck(ctx context.Context, input string, opts runOptions) (solver.ProcessOutcome, classify.Report, error) {
	inputPath, err := filepath.Abs(input)
	if err != nil {
		return solver.ProcessOutcome{}, classify.Report{}, fmt.Errorf("resolve input path: %w", err)
	}
	if _, err := os.Stat(inputPath); err != nil {
		return solver.ProcessOutcome{}, classify.Report{}, &ExitError{Code: 1, Msg: fmt.Sprintf("input file not found: %s", inputPath)}
	}

	exe, err := solver.ResolveExecutable(opts.solver)
	if err != nil {
		return solver.ProcessOutcome{}, classify.Report{}, &ExitError{Code: 1, Msg: err.Error()}
	}

	deck.EnsureDirs(inputPath)

	dirs, err := solver.PrepareRunDirs(inputPath, opts.runDir, opts.outName, !opts.noTimestamp, time.Now())
	if err != nil {
		return solver.ProcessOutcome{}, classify.Report{}, err
	}

	outcome, err := solver.Run(ctx, solver.RunRequest{
		InputPath:      inputPath,
		Executable:     exe,
		LauncherPrefix: opts.mpi,
		Timeout:        opts.timeout,
		WorkDir:        filepath.Dir(inputPath),
		OutputPath:     dirs.OutputPath,
		ErrorPath:      dirs.ErrorPath,
	})
	if err != nil {
		return solver.ProcessOutcome{}, classify.Report{}, err
	}

	return outcome, classify.Scan(outcome.OutputPath), nil
}

// mapExit maps a completed run to the command's exit status. Timeout
// dominates everything; a failed verdict maps to 2; an indeterminate
// or succeeded result propagates the solver's own exit code. The
// verdict already reflects the configured classification policy, so
// contradictory output follows whichever marker the policy makes
// dominant.
func mapExit(outcome solver.ProcessOutcome, verdict classify.Verdict) error {
	switch {
	case outcome.TimedOut:
		return &ExitError{Code: solver.ExitTimeout, Msg: "solver run timed out"}
	case verdict == classify.Failed:
		return &ExitError{Code: 2, Msg: fmt.Sprintf("solver output indicates an error, see %s", outcome.OutputPath)}
	case outcome.ExitCode != 0:
		return &ExitError{Code: outcome.ExitCode, Msg: fmt.Sprintf("solver exited with code %d", outcome.ExitCode)}
	default:
		return nil
	}
}

// recordHistory is best effort: a broken history database never fails a
// completed run.
func recordHistory(dbPath, input string, outcome solver.ProcessOutcome, verdict classify.Verdict) {
	if dbPath == "" {
		dbPath = history.DefaultPath()
	}
	store, err := history.Open(dbPath)
	if err != nil {
		slog.Warn("history unavailable", "error", err)
		return
	}
	defer func() { _ = store.Close() }()

	err = store.Add(history.Record{
		ID:        uuid.NewString(),
		Input:     input,
		ExitCode:  outcome.ExitCode,
		Verdict:   verdict.String(),
		Elapsed:   outcome.Elapsed,
		RunDir:    filepath.Dir(outcome.OutputPath),
		StartedAt: time.Now().Add(-outcome.Elapsed),
	})
	if err != nil {
		slog.Warn("history insert failed", "error", err)
	}
}
