package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDefault is the debounce interval for file events, so a deck
// still being written is not picked up mid-copy.
const debounceDefault = 200 * time.Millisecond

// pollDefault is the polling interval when fsnotify is unavailable.
const pollDefault = 5 * time.Second

// Result is what the injected executor reports for one deck.
type Result struct {
	ExitCode int
	Verdict  string
	TimedOut bool
	Elapsed  time.Duration
	Err      error
}

// ExecFunc executes one input deck. Injected by the cli layer to avoid
// an import cycle with the run pipeline.
type ExecFunc func(ctx context.Context, inputPath string) Result

// Config holds watch daemon configuration.
type Config struct {
	IncomingDir string
	StateDir    string
	PollMode    bool // skip fsnotify and poll the directory
	ExecFn      ExecFunc
}

// Watcher picks up dropped decks and executes them sequentially.
type Watcher struct {
	cfg  Config
	dirs Dirs

	mu       sync.Mutex
	debounce map[string]*time.Timer
	pending  chan string
}

// New creates a watcher with validated configuration.
func New(cfg Config) (*Watcher, error) {
	if cfg.IncomingDir == "" {
		return nil, fmt.Errorf("incoming directory is required")
	}
	if cfg.StateDir == "" {
		return nil, fmt.Errorf("state directory is required")
	}
	if cfg.ExecFn == nil {
		return nil, fmt.Errorf("execution function is required")
	}
	return &Watcher{
		cfg:      cfg,
		dirs:     NewDirs(cfg.IncomingDir, cfg.StateDir),
		debounce: make(map[string]*time.Timer),
		pending:  make(chan string, 64),
	}, nil
}

// Run blocks until ctx is cancelled. Decks already present in the
// incoming directory are processed first, then new arrivals as events
// (or polls) report them.
func (w *Watcher) Run(ctx context.Context) error {
	if err := EnsureDirs(w.dirs); err != nil {
		return fmt.Errorf("prepare watch dirs: %w", err)
	}

	slog.Info("watching for input decks", "incoming", w.dirs.Incoming, "poll", w.cfg.PollMode)

	// The backlog can exceed the pending queue's capacity, so the
	// producer must not share a goroutine with the consume loop below.
	go w.enqueueExisting(ctx)

	if w.cfg.PollMode {
		go w.pollLoop(ctx)
	} else if err := w.notifyLoop(ctx); err != nil {
		slog.Warn("fsnotify unavailable, falling back to polling", "error", err)
		go w.pollLoop(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case path := <-w.pending:
			if err := w.process(ctx, path); err != nil {
				slog.Error("deck processing failed", "deck", path, "error", err)
			}
		}
	}
}

// enqueueExisting queues decks that were dropped while the daemon was
// down. Blocking sends give up once ctx is cancelled so the goroutine
// never outlives Run.
func (w *Watcher) enqueueExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.dirs.Incoming)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() || !isDeck(e.Name()) {
			continue
		}
		select {
		case w.pending <- filepath.Join(w.dirs.Incoming, e.Name()):
		case <-ctx.Done():
			return
		}
	}
}

// notifyLoop starts the fsnotify watcher. Returns an error only when the
// watcher cannot be set up; event handling runs in a goroutine.
func (w *Watcher) notifyLoop(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(w.dirs.Incoming); err != nil {
		_ = fw.Close()
		return err
	}

	go func() {
		defer func() { _ = fw.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Rename) {
					if isDeck(ev.Name) {
						w.debounceEnqueue(ev.Name)
					}
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				slog.Warn("fsnotify error", "error", err)
			}
		}
	}()
	return nil
}

// pollLoop scans the incoming directory on a fixed interval.
func (w *Watcher) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(pollDefault)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.enqueueExisting(ctx)
		}
	}
}

// debounceEnqueue delays the enqueue until events for the path settle.
func (w *Watcher) debounceEnqueue(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounce[path]; ok {
		t.Reset(debounceDefault)
		return
	}
	w.debounce[path] = time.AfterFunc(debounceDefault, func() {
		w.mu.Lock()
		delete(w.debounce, path)
		w.mu.Unlock()
		w.pending <- path
	})
}

// processResult is the JSON record written next to each filed deck.
type processResult struct {
	Input     string        `json:"input"`
	ExitCode  int           `json:"exit_code"`
	Verdict   string        `json:"verdict"`
	TimedOut  bool          `json:"timed_out"`
	Elapsed   time.Duration `json:"elapsed"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
}

// process moves the deck through processing and files it with a result
// record under completed or failed.
func (w *Watcher) process(ctx context.Context, path string) error {
	name := filepath.Base(path)
	procPath := filepath.Join(w.dirs.Processing, name)
	if err := os.Rename(path, procPath); err != nil {
		// Already taken by an earlier event for the same deck.
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("move to processing: %w", err)
	}

	slog.Info("processing deck", "deck", name)
	start := time.Now()
	res := w.cfg.ExecFn(ctx, procPath)
	end := time.Now()

	pr := processResult{
		Input:     name,
		ExitCode:  res.ExitCode,
		Verdict:   res.Verdict,
		TimedOut:  res.TimedOut,
		Elapsed:   res.Elapsed,
		StartedAt: start,
		EndedAt:   end,
	}
	if res.Err != nil {
		pr.Error = res.Err.Error()
	}

	destDir := w.dirs.Completed
	if res.Err != nil || res.TimedOut || res.Verdict == "failed" {
		destDir = w.dirs.Failed
	}

	if err := writeResult(destDir, name, pr); err != nil {
		return err
	}
	if err := os.Rename(procPath, filepath.Join(destDir, name)); err != nil {
		return fmt.Errorf("file deck: %w", err)
	}

	slog.Info("deck filed", "deck", name, "verdict", res.Verdict, "dir", destDir)
	return nil
}

func writeResult(dir, deckName string, pr processResult) error {
	data, err := json.MarshalIndent(pr, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	name := strings.TrimSuffix(deckName, filepath.Ext(deckName)) + ".result.json"
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

func isDeck(name string) bool {
	return strings.HasSuffix(name, ".in")
}
