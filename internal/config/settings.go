// Package config loads persistent CLI defaults from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings holds persistent CLI defaults loaded from a config file.
// Flags override these only when explicitly set.
type Settings struct {
	Solver      string        `yaml:"solver"`       // pw.x name or path
	MPI         []string      `yaml:"mpi"`          // launcher prefix tokens, e.g. [mpirun, -np, "4"]
	Timeout     time.Duration `yaml:"timeout"`      // 0 = unlimited
	RunDir      string        `yaml:"run_dir"`      // base directory for run outputs
	NoTimestamp bool          `yaml:"no_timestamp"` // write sinks directly into run_dir
	PseudoDir   string        `yaml:"pseudo_dir"`   // default pseudopotential directory
	HistoryDB   string        `yaml:"history_db"`   // run history database path
	APIKey      string        `yaml:"api_key,omitempty"`

	// SuccessDominant inverts the error-dominant classification policy
	// for logs carrying both marker kinds.
	SuccessDominant bool `yaml:"success_dominant"`

	Watch *WatchSettings `yaml:"watch,omitempty"`
}

// WatchSettings configures the watch daemon.
type WatchSettings struct {
	Incoming      string `yaml:"incoming"`
	StateDir      string `yaml:"state_dir"`
	MetricsListen string `yaml:"metrics_listen,omitempty"`
	Poll          bool   `yaml:"poll"`
}

// LoadSettings reads a YAML config file into Settings.
// If the file does not exist, it returns zero-value Settings and nil error.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &s, nil
}
