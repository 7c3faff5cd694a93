package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	domprofile "github.com/kailas-cloud/profilematch/internal/domain/profile"
	profileuc "github.com/kailas-cloud/profilematch/internal/usecase/profile"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Bulk-load profiles from a YAML or JSON file",
	Long: `Reads a list of profiles (name, description, age, location) and adds
them in batches. JSON input is accepted as it is a subset of YAML.`,
	RunE: runSeed,
}

var (
	seedFile  string
	seedBatch int
)

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Profiles file (YAML or JSON list)")
	seedCmd.Flags().IntVar(&seedBatch, "batch", 0, "Profiles per batch (default: limits.max_batch_size)")
	_ = seedCmd.MarkFlagRequired("file")
}

// seedProfile is one entry of a seed file.
type seedProfile struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Age         *int    `yaml:"age"`
	Location    *string `yaml:"location"`
}

func runSeed(cmd *cobra.Command, _ []string) error {
	f, err := os.Open(seedFile)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	inputs, err := parseSeed(f)
	if err != nil {
		return err
	}

	cfg := globalConfig
	a, err := buildApp(cmd.Context(), &cfg, globalLogger)
	if err != nil {
		return err
	}
	defer a.Close()

	size := seedBatch
	if size <= 0 {
		size = cfg.Limits.MaxBatchSize
	}
	ids, err := seedProfiles(cmd.Context(), a.profiles, inputs, size)
	if err != nil {
		return err
	}

	globalLogger.Info("Seed complete", zap.String("file", seedFile), zap.Int("profiles", len(ids)))
	for _, id := range ids {
		fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	return nil
}

// parseSeed decodes and validates every entry before anything is stored.
func parseSeed(r io.Reader) ([]domprofile.Input, error) {
	var raw []seedProfile
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("seed file is empty")
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("seed file is empty")
	}

	inputs := make([]domprofile.Input, len(raw))
	for i, p := range raw {
		in, err := domprofile.NewInput(p.Name, p.Description, p.Age, p.Location)
		if err != nil {
			return nil, fmt.Errorf("profile %d (%q): %w", i, p.Name, err)
		}
		inputs[i] = in
	}
	return inputs, nil
}

// adder is the slice of the matching service seed needs.
type adder interface {
	AddBatch(ctx context.Context, inputs []domprofile.Input) ([]string, error)
}

var _ adder = (*profileuc.Service)(nil)

func seedProfiles(ctx context.Context, svc adder, inputs []domprofile.Input, size int) ([]string, error) {
	if size <= 0 {
		size = len(inputs)
	}
	ids := make([]string, 0, len(inputs))
	for start := 0; start < len(inputs); start += size {
		end := min(start+size, len(inputs))
		batch, err := svc.AddBatch(ctx, inputs[start:end])
		if err != nil {
			return ids, fmt.Errorf("add profiles %d-%d: %w", start, end-1, err)
		}
		ids = append(ids, batch...)
	}
	return ids, nil
}
