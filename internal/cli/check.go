package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chicommerce/catalog-api/internal/repository"
)

type checkResult struct {
	Database               string         `json:"database"`
	Tables                 map[string]int `json:"tables"`
	ProductsWithoutDefault int            `json:"products_without_default"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "check",
		Short:        "Ping the database and report catalog table sizes",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := rootOpts.OpenDB()
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "connect database", Err: err}
			}
			defer db.Close()

			ctx := cmd.Context()
			stats := repository.NewStatsRepository(db)
			if err := stats.Ping(ctx); err != nil {
				return &ExitError{Code: ExitCommandError, Message: "database unreachable", Err: err}
			}
			counts, err := stats.TableCounts(ctx)
			if err != nil {
				return err
			}
			orphans, err := stats.ProductsWithoutDefault(ctx)
			if err != nil {
				return err
			}

			result := checkResult{Database: "ok", Tables: make(map[string]int, len(counts)), ProductsWithoutDefault: orphans}
			var b strings.Builder
			b.WriteString("database: ok\n")
			for _, c := range counts {
				result.Tables[c.Table] = c.Rows
				fmt.Fprintf(&b, "  %-24s %d\n", c.Table, c.Rows)
			}
			fmt.Fprintf(&b, "products without default template: %d\n", orphans)

			if err := newPrinter(rootOpts, cmd.OutOrStdout()).print(b.String(), result); err != nil {
				return err
			}
			if orphans > 0 {
				return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("%d products have templates but no default", orphans)}
			}
			return nil
		},
	}
}
