package migrator

import (
	"context"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/openkcm/common-sdk/pkg/logger"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/flocktrack/flocktrack/internal/config"
	"github.com/flocktrack/flocktrack/internal/constants"
	"github.com/flocktrack/flocktrack/internal/db"
)

var (
	version  int64
	rollback bool
)

func run(ctx context.Context, cfg *config.Config) error {
	err := logger.InitAsDefault(cfg.Logger, cfg.Application)
	if err != nil {
		return oops.In("main").
			Wrapf(err, "Failed to initialise the logger")
	}

	m, err := db.NewMigrator(cfg)
	if err != nil {
		return err
	}

	if version != 0 {
		return m.MigrateTo(ctx, rollback, version)
	}

	return m.MigrateToLatest(ctx, rollback)
}

func loadConfig(buildInfo string) (*config.Config, error) {
	cfg := &config.Config{}

	loader := commoncfg.NewLoader(
		cfg,
		commoncfg.WithPaths(
			constants.DefaultConfigPath1,
			constants.DefaultConfigPath2,
			".",
		),
		commoncfg.WithEnvOverride(constants.AppName),
	)

	err := loader.LoadConfig()
	if err != nil {
		return nil, oops.In("main").Wrapf(err, "failed to load config")
	}

	err = commoncfg.UpdateConfigVersion(&cfg.BaseConfig, buildInfo)
	if err != nil {
		return nil, oops.In("main").
			Wrapf(err, "Failed to update the version configuration")
	}

	return cfg, nil
}

func Cmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "FlockTrack DB Migrator",
		Long:  "Applies the schema migrations, including the row-level security policies, to the configured database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(buildInfo)
			if err != nil {
				return oops.In("main").Wrapf(err, "failed to load config")
			}

			err = run(cmd.Context(), cfg)
			if err != nil {
				return oops.In("main").Wrapf(err, "failed to run migrations")
			}

			return nil
		},
	}

	cmd.Flags().Int64Var(&version, "version", 0, "run migration until targeted version")
	cmd.Flags().BoolVar(&rollback, "rollback", false, "run down migrations")

	return cmd
}
