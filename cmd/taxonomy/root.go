package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	env "github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/josh-kwaku/ledger-mapping-engine/internal/logging"
	"github.com/josh-kwaku/ledger-mapping-engine/internal/repository"
)

type cliConfig struct {
	DatabaseURL  string `env:"DATABASE_URL"`
	TaxonomyFile string `env:"TAXONOMY_FILE"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"warn"`
	AppEnv       string `env:"APP_ENV" envDefault:"development"`
}

type rootOptions struct {
	cfg         cliConfig
	databaseURL string
	file        string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Manage the reporting taxonomy registry",
		Long: `taxonomy validates taxonomy files and loads them into the mapping database.

Without --file the taxonomy bundled with the service is used.

Examples:
  taxonomy validate --file taxonomy.yaml
  taxonomy sync --database-url postgres://localhost/ledger
  taxonomy list`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.ParseAs[cliConfig]()
			if err != nil {
				return fmt.Errorf("read environment: %w", err)
			}
			opts.cfg = cfg
			if opts.databaseURL == "" {
				opts.databaseURL = cfg.DatabaseURL
			}
			if opts.file == "" {
				opts.file = cfg.TaxonomyFile
			}
			logging.InitWriter(os.Stderr, "taxonomy-cli", cfg.LogLevel, cfg.AppEnv)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.file, "file", "f", "", "taxonomy YAML file (default: bundled taxonomy, or $TAXONOMY_FILE)")
	cmd.PersistentFlags().StringVar(&opts.databaseURL, "database-url", "", "Postgres connection string (default: $DATABASE_URL)")

	cmd.AddCommand(
		newValidateCmd(opts),
		newSyncCmd(opts),
		newListCmd(opts),
	)
	return cmd
}

func (o *rootOptions) openDB(ctx context.Context) (*sql.DB, error) {
	if o.databaseURL == "" {
		return nil, fmt.Errorf("no database configured: set --database-url or DATABASE_URL")
	}
	return repository.NewPostgresDB(ctx, o.databaseURL, repository.PoolConfig{
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnectAttempts: 5,
	})
}
