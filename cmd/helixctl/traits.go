package main

import (
	"github.com/spf13/cobra"

	"helix-api/internal/report"
	"helix-api/internal/service"
)

func newTraitsCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "traits",
		Short: "List the built-in trait catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			return report.RenderCatalog(cmd.OutOrStdout(), service.DefaultTraitCatalog(), outFormat)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(report.FormatTable), "output format: table, json or yaml")
	return cmd
}

func newFrequenciesCmd() *cobra.Command {
	var (
		trait      string
		population string
		format     string
	)
	cmd := &cobra.Command{
		Use:   "frequencies",
		Short: "Show allele frequencies of a categorical trait adjusted to a population",
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			return report.RenderFrequencies(cmd.OutOrStdout(), trait, population, outFormat)
		},
	}
	cmd.Flags().StringVar(&trait, "trait", "eye-color", "categorical trait key")
	cmd.Flags().StringVar(&population, "population", "european", "population name")
	cmd.Flags().StringVarP(&format, "format", "f", string(report.FormatTable), "output format: table, json or yaml")
	return cmd
}
