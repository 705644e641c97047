package cli

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chicommerce/catalog-api/internal/database"
)

// NewMigrateCommand creates the migrate command and its up/down/version subcommands.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:          "up",
		Short:        "Apply all pending migrations",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, source, err := rootOpts.OpenDB()
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "connect database", Err: err}
			}
			defer db.Close()

			if err := database.RunMigrations(db.DB, source); err != nil {
				return err
			}
			return printVersion(cmd, rootOpts, db.DB, source)
		},
	})

	var steps int
	down := &cobra.Command{
		Use:          "down",
		Short:        "Roll back migrations",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, source, err := rootOpts.OpenDB()
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "connect database", Err: err}
			}
			defer db.Close()

			if err := database.RollbackMigrations(db.DB, source, steps); err != nil {
				return err
			}
			return printVersion(cmd, rootOpts, db.DB, source)
		},
	}
	down.Flags().IntVarP(&steps, "steps", "n", 1, "number of migrations to roll back")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:          "version",
		Short:        "Print the current schema version",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, source, err := rootOpts.OpenDB()
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "connect database", Err: err}
			}
			defer db.Close()
			return printVersion(cmd, rootOpts, db.DB, source)
		},
	})

	return cmd
}

type versionResult struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

func printVersion(cmd *cobra.Command, opts *RootOptions, db *sql.DB, source string) error {
	v, dirty, err := database.MigrationVersion(db, source)
	if err != nil {
		return err
	}
	text := fmt.Sprintf("schema version %d\n", v)
	if dirty {
		text = fmt.Sprintf("schema version %d (dirty)\n", v)
	}
	return newPrinter(opts, cmd.OutOrStdout()).print(text, versionResult{Version: v, Dirty: dirty})
}
