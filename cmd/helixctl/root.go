package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cliApp es el estado compartido entre subcomandos.
type cliApp struct {
	verbose bool
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	app := &cliApp{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "helixctl",
		Short:         "Offspring trait simulations from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !app.verbose {
				return nil
			}
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			app.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = app.logger.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newRunCmd(app),
		newHistoryCmd(app),
		newShowCmd(),
		newMigrateCmd(app),
		newTraitsCmd(),
		newFrequenciesCmd(),
	)
	return root
}
