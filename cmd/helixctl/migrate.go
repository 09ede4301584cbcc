package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"helix-api/internal/db"
)

func newMigrateCmd(app *cliApp) *cobra.Command {
	var (
		databaseURL string
		version     int
		list        bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply Postgres migrations (latest by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list {
				names, err := db.MigrationNames()
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			if strings.TrimSpace(databaseURL) == "" {
				_ = godotenv.Load()
				databaseURL = os.Getenv("DATABASE_URL")
			}
			if strings.TrimSpace(databaseURL) == "" {
				return fmt.Errorf("database url is required (--database-url or DATABASE_URL)")
			}

			res, err := db.Migrate(databaseURL, version)
			if err != nil {
				return err
			}
			app.logger.Debug("migration finished",
				zap.Uint("from", res.From),
				zap.Uint("to", res.To),
				zap.Bool("changed", res.Changed),
			)
			if !res.Changed {
				_, err = fmt.Fprintf(out, "Schema already at version %d\n", res.To)
				return err
			}
			_, err = fmt.Fprintf(out, "Schema migrated from version %d to %d\n", res.From, res.To)
			return err
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "", "postgres url (defaults to DATABASE_URL)")
	cmd.Flags().IntVar(&version, "version", -1, "target version, -1 applies every pending migration")
	cmd.Flags().BoolVar(&list, "list", false, "print the embedded migration files and exit")
	return cmd
}
