package solver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeHandle simulates a process for exercising the escalation state
// machine without spawning anything.
type fakeHandle struct {
	mu         sync.Mutex
	done       chan struct{}
	closeOnce  sync.Once
	exitCode   int
	termed     bool
	killed     bool
	ignoreTerm bool // simulates a process that ignores SIGTERM
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{done: make(chan struct{})}
}

func (f *fakeHandle) Done() <-chan struct{} { return f.done }

func (f *fakeHandle) ExitCode() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exitCode
}

func (f *fakeHandle) Terminate() error {
	f.mu.Lock()
	f.termed = true
	ignore := f.ignoreTerm
	f.mu.Unlock()
	if !ignore {
		f.exit(143)
	}
	return nil
}

func (f *fakeHandle) Kill() error {
	f.mu.Lock()
	f.killed = true
	f.mu.Unlock()
	f.exit(137)
	return nil
}

func (f *fakeHandle) exit(code int) {
	f.closeOnce.Do(func() {
		f.mu.Lock()
		f.exitCode = code
		f.mu.Unlock()
		close(f.done)
	})
}

func (f *fakeHandle) signalled() (termed, killed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.termed, f.killed
}

func TestSupervise_NormalExit(t *testing.T) {
	h := newFakeHandle()
	go func() {
		time.Sleep(10 * time.Millisecond)
		h.exit(0)
	}()

	code, timedOut := supervise(context.Background(), h, time.Minute, time.Second)
	if timedOut {
		t.Fatal("unexpected timeout")
	}
	if code != 0 {
		t.Errorf("exit code: got %d, want 0", code)
	}
	if termed, killed := h.signalled(); termed || killed {
		t.Error("no signal should be sent on normal exit")
	}
}

func TestSupervise_TimeoutGracefulExit(t *testing.T) {
	h := newFakeHandle()

	code, timedOut := supervise(context.Background(), h, 20*time.Millisecond, time.Second)
	if !timedOut {
		t.Fatal("expected timeout")
	}
	if code != ExitTimeout {
		t.Errorf("exit code: got %d, want %d", code, ExitTimeout)
	}
	termed, killed := h.signalled()
	if !termed {
		t.Error("graceful signal should have been sent")
	}
	if killed {
		t.Error("kill should not fire when the process honors SIGTERM")
	}
}

func TestSupervise_TimeoutEscalatesToKill(t *testing.T) {
	h := newFakeHandle()
	h.ignoreTerm = true

	start := time.Now()
	code, timedOut := supervise(context.Background(), h, 20*time.Millisecond, 30*time.Millisecond)
	elapsed := time.Since(start)

	if !timedOut || code != ExitTimeout {
		t.Fatalf("expected timeout sentinel, got code=%d timedOut=%v", code, timedOut)
	}
	termed, killed := h.signalled()
	if !termed || !killed {
		t.Errorf("expected term then kill, got termed=%v killed=%v", termed, killed)
	}
	if elapsed > 5*time.Second {
		t.Errorf("supervise took too long: %v", elapsed)
	}
}

func TestSupervise_ContextCancelUsesEscalationPath(t *testing.T) {
	h := newFakeHandle()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	code, timedOut := supervise(ctx, h, 0, time.Second)
	if timedOut {
		t.Fatal("cancellation is not a timeout")
	}
	if termed, _ := h.signalled(); !termed {
		t.Error("cancellation should send the graceful signal")
	}
	if code != 143 {
		t.Errorf("exit code: got %d, want 143", code)
	}
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "solver.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestRequest(t *testing.T, exe string) RunRequest {
	t.Helper()
	dir := t.TempDir()
	return RunRequest{
		InputPath:  filepath.Join(dir, "deck.in"),
		Executable: exe,
		WorkDir:    dir,
		OutputPath: filepath.Join(dir, "deck.out"),
		ErrorPath:  filepath.Join(dir, "deck.err"),
	}
}

func TestRun_Success(t *testing.T) {
	exe := writeScript(t, "echo 'JOB DONE.'\n")
	req := newTestRequest(t, exe)

	outcome, err := Run(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.TimedOut || outcome.ExitCode != 0 {
		t.Fatalf("got %+v, want clean exit", outcome)
	}

	data, err := os.ReadFile(req.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "JOB DONE.") {
		t.Errorf("stdout not captured: %q", data)
	}
}

func TestRun_ExitCodePassthrough(t *testing.T) {
	exe := writeScript(t, "exit 3\n")
	outcome, err := Run(context.Background(), newTestRequest(t, exe))
	if err != nil {
		t.Fatal(err)
	}
	if outcome.ExitCode != 3 {
		t.Errorf("exit code: got %d, want 3", outcome.ExitCode)
	}
}

func TestRun_StderrCapture(t *testing.T) {
	exe := writeScript(t, "echo 'forrtl: severe' >&2\nexit 1\n")
	req := newTestRequest(t, exe)

	outcome, err := Run(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.ExitCode != 1 {
		t.Errorf("exit code: got %d, want 1", outcome.ExitCode)
	}
	data, err := os.ReadFile(req.ErrorPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "forrtl: severe") {
		t.Errorf("stderr not captured: %q", data)
	}
}

func TestRun_SpawnFailure(t *testing.T) {
	req := newTestRequest(t, filepath.Join(t.TempDir(), "missing-binary"))
	if _, err := Run(context.Background(), req); err == nil {
		t.Fatal("expected spawn error")
	}
}
