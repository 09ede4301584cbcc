package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"helix-api/internal/genetics"
	"helix-api/internal/localstore"
	"helix-api/internal/report"
	"helix-api/internal/service"
)

// runInput es el archivo opcional de --input.
type runInput struct {
	Traits      []string              `yaml:"traits"`
	Seed        *int64                `yaml:"seed"`
	Parents     *genetics.ParentPair  `yaml:"parents"`
	Environment *genetics.Environment `yaml:"environment"`
}

func loadRunInput(path string) (runInput, error) {
	var in runInput
	data, err := os.ReadFile(path)
	if err != nil {
		return in, fmt.Errorf("read input file: %w", err)
	}
	if err := yaml.Unmarshal(data, &in); err != nil {
		return in, fmt.Errorf("parse input file: %w", err)
	}
	return in, nil
}

func newRunCmd(app *cliApp) *cobra.Command {
	var (
		traits    []string
		seed      int64
		format    string
		storePath string
		inputPath string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one offspring simulation",
		Example: `  helixctl run --traits eye-color,height --seed 42
  helixctl run --input couple.yaml --format yaml --store history.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			var in runInput
			if inputPath != "" {
				if in, err = loadRunInput(inputPath); err != nil {
					return err
				}
			}
			// los flags explicitos pisan al archivo
			if cmd.Flags().Changed("traits") || len(in.Traits) == 0 {
				in.Traits = traits
			}
			if cmd.Flags().Changed("seed") {
				in.Seed = &seed
			}

			keys, err := service.NormalizeTraits(in.Traits)
			if err != nil {
				return err
			}
			for _, k := range keys {
				if !genetics.IsKnownTrait(k) {
					app.logger.Warn("unknown trait, using fallback outcome", zap.String("trait", k))
				}
			}

			var (
				src      genetics.Source
				usedSeed int64
			)
			if in.Seed != nil {
				usedSeed = *in.Seed
				src = genetics.NewSource(usedSeed)
			} else {
				src, usedSeed = genetics.NewTimeSource()
			}

			rs := genetics.NewSimulator().Run(genetics.Request{
				Traits:      keys,
				Parents:     in.Parents,
				Environment: in.Environment,
			}, src)
			app.logger.Debug("simulation finished",
				zap.String("simulation_id", rs.SimulationID),
				zap.Int64("seed", usedSeed),
				zap.Int("offspring", len(rs.Offspring)),
			)

			if storePath != "" {
				store, err := localstore.Open(storePath)
				if err != nil {
					return err
				}
				defer store.Close()
				if err := store.Save(cmd.Context(), localstore.NewRun(rs, usedSeed)); err != nil {
					return err
				}
				app.logger.Debug("simulation stored", zap.String("path", storePath))
			}

			if err := report.RenderResult(cmd.OutOrStdout(), rs, outFormat); err != nil {
				return err
			}
			if outFormat == report.FormatTable {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Seed: %d\n", usedSeed)
			}
			return err
		},
	}

	cmd.Flags().StringSliceVarP(&traits, "traits", "t", []string{"eye-color", "height"}, "trait keys to simulate")
	cmd.Flags().Int64Var(&seed, "seed", 0, "seed for a reproducible run (random when omitted)")
	cmd.Flags().StringVarP(&format, "format", "f", string(report.FormatTable), "output format: table, json or yaml")
	cmd.Flags().StringVar(&storePath, "store", "", "sqlite file where the run is recorded")
	cmd.Flags().StringVar(&inputPath, "input", "", "yaml file with traits, seed, parents and environment")
	return cmd
}
