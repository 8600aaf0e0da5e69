package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "qeforge.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSettings_Valid(t *testing.T) {
	content := `
solver: /opt/qe/bin/pw.x
mpi: [mpirun, -np, "4"]
timeout: 2h
run_dir: scf_runs
pseudo_dir: ./upf
no_timestamp: true
`
	s, err := LoadSettings(writeTemp(t, content))
	if err != nil {
		t.Fatal(err)
	}

	if s.Solver != "/opt/qe/bin/pw.x" {
		t.Errorf("solver: got %q", s.Solver)
	}
	if len(s.MPI) != 3 || s.MPI[0] != "mpirun" || s.MPI[2] != "4" {
		t.Errorf("mpi: got %v", s.MPI)
	}
	if s.Timeout != 2*time.Hour {
		t.Errorf("timeout: got %v", s.Timeout)
	}
	if s.RunDir != "scf_runs" {
		t.Errorf("run_dir: got %q", s.RunDir)
	}
	if !s.NoTimestamp {
		t.Error("no_timestamp: got false")
	}
}

func TestLoadSettings_WatchSection(t *testing.T) {
	content := `
watch:
  incoming: /srv/decks
  state_dir: /srv/qeforge
  metrics_listen: ":9090"
  poll: true
`
	s, err := LoadSettings(writeTemp(t, content))
	if err != nil {
		t.Fatal(err)
	}
	if s.Watch == nil {
		t.Fatal("watch section missing")
	}
	if s.Watch.Incoming != "/srv/decks" || s.Watch.MetricsListen != ":9090" || !s.Watch.Poll {
		t.Errorf("watch: got %+v", s.Watch)
	}
}

func TestLoadSettings_MissingFile(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "nonexistent.yml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if s.Solver != "" || s.Timeout != 0 {
		t.Errorf("expected zero-value settings, got %+v", s)
	}
}

func TestLoadSettings_Malformed(t *testing.T) {
	if _, err := LoadSettings(writeTemp(t, "solver: [unclosed")); err == nil {
		t.Fatal("malformed yaml should error")
	}
}
