package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chicommerce/catalog-api/internal/repository"
	"github.com/chicommerce/catalog-api/internal/service"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load products, templates and option sets from a YAML file",
		Long: `Load a catalog fixture through the regular services, so names, prices,
template definitions and the default-template rules are enforced exactly as
they are for API writes. When REDIS_HOST is set, the product cache of the
running server is invalidated for every product written.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "open seed file", Err: err}
			}
			defer f.Close()

			seed, err := service.ParseSeed(f)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "read seed file", Err: err}
			}

			db, _, err := rootOpts.OpenDB()
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "connect database", Err: err}
			}
			defer db.Close()

			var productCache service.ProductDetailCache
			if rootOpts.OpenCache != nil {
				c, release, err := rootOpts.OpenCache()
				if err != nil {
					return &ExitError{Code: ExitCommandError, Message: "connect redis", Err: err}
				}
				defer release()
				productCache = c
			}

			productRepo := repository.NewProductRepository(db)
			templateRepo := repository.NewTemplateRepository(db)
			svc := service.NewSeedService(
				service.NewProductService(productRepo, templateRepo, productCache),
				service.NewTemplateService(templateRepo, productCache),
				service.NewOptionSetService(repository.NewOptionSetRepository(db)),
			)

			report, err := svc.Apply(cmd.Context(), seed)
			if err != nil {
				return &ExitError{Code: ExitFailure, Message: "seed failed", Err: err}
			}

			text := fmt.Sprintf("seeded %d products, %d templates, %d option sets, %d options\n",
				report.Products, report.Templates, report.OptionSets, report.Options)
			return newPrinter(rootOpts, cmd.OutOrStdout()).print(text, map[string]int{
				"products":    report.Products,
				"templates":   report.Templates,
				"option_sets": report.OptionSets,
				"options":     report.Options,
			})
		},
	}
}
