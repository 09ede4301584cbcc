package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"helix-api/internal/localstore"
	"helix-api/internal/report"
)

func newHistoryCmd(app *cliApp) *cobra.Command {
	var (
		storePath string
		limit     int
		format    string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List simulations recorded with run --store",
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			if storePath == "" {
				return fmt.Errorf("--store is required")
			}
			store, err := localstore.Open(storePath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			entries := make([]report.HistoryEntry, 0, len(runs))
			for _, r := range runs {
				entries = append(entries, report.HistoryEntry{
					ID:        r.ID,
					CreatedAt: r.CreatedAt.Format(time.RFC3339),
					Seed:      r.Seed,
					Traits:    r.Traits,
					Accuracy:  r.Accuracy,
					Offspring: r.Offspring,
				})
			}
			return report.RenderHistory(cmd.OutOrStdout(), entries, outFormat)
		},
	}

	cmd.Flags().StringVar(&storePath, "store", "", "sqlite file written by run --store")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum runs to show (0 shows all)")
	cmd.Flags().StringVarP(&format, "format", "f", string(report.FormatTable), "output format: table, json or yaml")
	return cmd
}

func newShowCmd() *cobra.Command {
	var (
		storePath string
		format    string
	)
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored simulation in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			if storePath == "" {
				return fmt.Errorf("--store is required")
			}
			store, err := localstore.Open(storePath)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("simulation %s: %w", args[0], err)
			}
			return report.RenderResult(cmd.OutOrStdout(), run.Result, outFormat)
		},
	}
	cmd.Flags().StringVar(&storePath, "store", "", "sqlite file written by run --store")
	cmd.Flags().StringVarP(&format, "format", "f", string(report.FormatTable), "output format: table, json or yaml")
	return cmd
}
