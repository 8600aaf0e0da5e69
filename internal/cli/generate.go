package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/qeforge/qeforge/internal/config"
	"github.com/qeforge/qeforge/internal/deck"
	"github.com/qeforge/qeforge/internal/structure"
)

func newGenerateCmd() *cobra.Command {
	var (
		out         string
		calculation string
		pseudoDir   string
		ecutwfc     float64
		ecutrho     float64
		kpoints     []int
	)

	cmd := &cobra.Command{
		Use:   "generate <structure.json|POSCAR>",
		Short: "Generate a pw.x input deck from a crystal structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadSettings(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if !cmd.Flags().Changed("pseudo-dir") && cfg.PseudoDir != "" {
				pseudoDir = cfg.PseudoDir
			}
			if len(kpoints) != 3 {
				return fmt.Errorf("--kpoints needs exactly 3 values")
			}
			return runGenerate(args[0], out, deck.Params{
				Calculation: calculation,
				PseudoDir:   pseudoDir,
				ECutWfc:     ecutwfc,
				ECutRho:     ecutrho,
				KPoints:     [3]int{kpoints[0], kpoints[1], kpoints[2]},
			})
		},
	}

	cmd.Flags().StringVar(&out, "out", "generated_inputs/pwscf.in", "output deck path")
	cmd.Flags().StringVar(&calculation, "calculation", "scf", "calculation type: scf, relax, vc-relax, nscf")
	cmd.Flags().StringVar(&pseudoDir, "pseudo-dir", "./pseudopotentials", "pseudopotential directory")
	cmd.Flags().Float64Var(&ecutwfc, "ecutwfc", 50.0, "wavefunction cutoff (Ry)")
	cmd.Flags().Float64Var(&ecutrho, "ecutrho", 0, "charge density cutoff (Ry, default 4x ecutwfc)")
	cmd.Flags().IntSliceVar(&kpoints, "kpoints", []int{4, 4, 4}, "k-point grid")

	return cmd
}

func runGenerate(structPath, out string, params deck.Params) error {
	s, err := structure.FromFile(structPath)
	if err != nil {
		return &ExitError{Code: 1, Msg: err.Error()}
	}
	slog.Info("loaded structure", "formula", s.Formula(), "sites", len(s.Sites))

	// Match each species to a UPF file when the pseudo directory is
	// available; the deck falls back to <El>.UPF names otherwise.
	params.Pseudos = make(map[string]string)
	for _, sp := range s.Species() {
		upf, err := deck.FindPseudo(params.PseudoDir, sp)
		if err != nil {
			slog.Warn("pseudopotential not found, using placeholder name", "element", sp, "dir", params.PseudoDir)
			continue
		}
		params.Pseudos[sp] = upf
	}

	data, err := deck.Generate(s, params)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write deck: %w", err)
	}

	fmt.Fprintf(os.Stdout, "wrote %s\n", out)
	return nil
}
