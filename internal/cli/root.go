package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/chicommerce/catalog-api/internal/cache"
	"github.com/chicommerce/catalog-api/internal/config"
	"github.com/chicommerce/catalog-api/internal/database"
	"github.com/chicommerce/catalog-api/internal/service"
)

// RootOptions holds global flags and the database opener shared by all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// OpenDB returns a connected database and the migrations source URL.
	// Tests replace it with an in-memory database.
	OpenDB func() (*sqlx.DB, string, error)

	// OpenCache returns the product cache of a running deployment, or nil
	// when none is configured. The returned func releases it.
	OpenCache func() (service.ProductDetailCache, func(), error)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for catalogctl.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{OpenDB: openDatabase, OpenCache: openCache})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalogctl",
		Short: "Catalog administration tool",
		Long:  "Administration tool for the customizable product catalog: migrations, seeding, health checks and template definition validation.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			setupLogger(opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewValidateDefinitionCommand(opts))
	cmd.AddCommand(NewGenKeyCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func openDatabase() (*sqlx.DB, string, error) {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return nil, "", err
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, "", err
	}
	return db, cfg.MigrationsPath, nil
}

func openCache() (service.ProductDetailCache, func(), error) {
	cfg, err := config.LoadRedis()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.Enabled() {
		return nil, func() {}, nil
	}
	client, err := cache.NewRedisClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cache.NewProductCache(client, cfg.ProductTTL), func() { _ = client.Close() }, nil
}

// setupLogger sends logs to stderr so they never mix with command output.
func setupLogger(verbose bool) {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
}
