package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/qeforge/qeforge/internal/config"
	"github.com/qeforge/qeforge/internal/fetch"
	"github.com/qeforge/qeforge/internal/structure"
)

func newFetchCmd() *cobra.Command {
	var (
		apiKey string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "fetch <formula>",
		Short: "Fetch the most stable structure and its pseudopotentials",
		Long:  "Fetch queries the Materials Project for the most stable structure matching the formula, saves it as JSON, and downloads a UPF pseudopotential for each element.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadSettings(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			key := apiKey
			if key == "" {
				key = os.Getenv("MP_API_KEY")
			}
			if key == "" {
				key = cfg.APIKey
			}
			if key == "" {
				return &ExitError{Code: 1, Msg: "Materials Project API key required (--api-key or MP_API_KEY)"}
			}
			return runFetch(cmd.Context(), args[0], key, outDir)
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "Materials Project API key (default: MP_API_KEY env)")
	cmd.Flags().StringVar(&outDir, "out-dir", ".", "directory for the structure file and pseudopotentials")

	return cmd
}

func runFetch(ctx context.Context, formula, apiKey, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	client := fetch.NewClient(apiKey)
	doc, err := client.MostStable(ctx, formula)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "selected %s (energy above hull: %.4f eV/atom)\n", doc.MaterialID, doc.EnergyAboveHull)

	s, err := structure.FromJSON(doc.Structure)
	if err != nil {
		return fmt.Errorf("parse fetched structure: %w", err)
	}

	structPath := filepath.Join(outDir, formula+".json")
	data, err := s.ToJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(structPath, data, 0o644); err != nil {
		return fmt.Errorf("write structure: %w", err)
	}
	fmt.Fprintf(os.Stdout, "wrote %s\n", structPath)

	pseudoDir := filepath.Join(outDir, "pseudopotentials")
	if err := os.MkdirAll(pseudoDir, 0o755); err != nil {
		return fmt.Errorf("create pseudo dir: %w", err)
	}

	dl := fetch.NewDownloader()
	var missing []string
	for _, element := range s.Species() {
		path, err := dl.Download(ctx, element, pseudoDir)
		if err != nil {
			missing = append(missing, element)
			continue
		}
		fmt.Fprintf(os.Stdout, "wrote %s\n", path)
	}
	if len(missing) > 0 {
		return fmt.Errorf("no pseudopotential found for: %v; download manually into %s", missing, pseudoDir)
	}
	return nil
}
