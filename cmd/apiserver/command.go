package apiserver

import (
	"context"
	"log/slog"
	"syscall"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/openkcm/common-sdk/pkg/health"
	"github.com/openkcm/common-sdk/pkg/logger"
	"github.com/openkcm/common-sdk/pkg/otlp"
	"github.com/openkcm/common-sdk/pkg/status"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/flocktrack/flocktrack/internal/config"
	"github.com/flocktrack/flocktrack/internal/constants"
	"github.com/flocktrack/flocktrack/internal/daemon"
	"github.com/flocktrack/flocktrack/internal/db"
	"github.com/flocktrack/flocktrack/internal/db/dsn"
	"github.com/flocktrack/flocktrack/internal/log"
	"github.com/flocktrack/flocktrack/internal/manager"
	"github.com/flocktrack/flocktrack/internal/repo/sql"
)

const (
	healthStatusTimeoutS = 5 * time.Second
	postgresDriverName   = "pgx"
)

// - Starts the status server
// - Starts the FlockTrack API Server
func run(ctx context.Context, cfg *config.Config) error {
	// LoggerConfig initialisation
	err := logger.InitAsDefault(cfg.Logger, cfg.Application)
	if err != nil {
		return oops.In("main").
			Wrapf(err, "Failed to initialise the logger")
	}

	log.Debug(ctx, "Starting the application", slog.Any("config", cfg))

	// OpenTelemetry initialisation
	err = otlp.Init(ctx, &cfg.Application, &cfg.Telemetry, &cfg.Logger)
	if err != nil {
		return oops.In("main").
			Wrapf(err, "Failed to load the telemetry")
	}

	// Start status server
	startStatusServer(ctx, cfg)

	go monitorTenantCount(ctx, cfg)

	// Create and start the API server
	s, err := daemon.NewServer(ctx, cfg)
	if err != nil {
		return oops.In("main").Wrapf(err, "creating server")
	}

	err = s.Start(ctx)
	if err != nil {
		return oops.In("main").Wrapf(err, "starting api server")
	}

	<-ctx.Done()

	err = s.Close(ctx)
	if err != nil {
		return oops.In("main").Wrapf(err, "closing server")
	}

	return nil
}

func monitorTenantCount(ctx context.Context, cfg *config.Config) {
	gauge := promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flocktrack_tenants_total",
			Help: "The number of tenant records currently known",
		},
	)

	log.Debug(ctx, "Registering tenant count gauge metric")

	dbCon, err := db.StartDBConnection(ctx, cfg.Database, cfg.DatabaseReplicas)
	if err != nil {
		log.Error(ctx, "failed to initialize DB Connection", err)
		return
	}

	tenants := manager.NewTenantManager(sql.NewRepository(dbCon))

	ticker := time.NewTicker(cfg.Tenancy.CountInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info(ctx, "stopping tenant count monitoring")
			return
		case <-ticker.C:
			count, err := tenants.CountTenants(ctx)
			if err != nil {
				log.Error(ctx, "failed to count tenants", err)
			} else {
				gauge.Set(float64(count))
				log.Debug(ctx, "tenant count", slog.Int("count", count))
			}
		}
	}
}

func startStatusServer(ctx context.Context, cfg *config.Config) {
	liveness := status.WithLiveness(
		health.NewHandler(
			health.NewChecker(health.WithDisabledAutostart()),
		),
	)

	healthOptions := make([]health.Option, 0)
	healthOptions = append(healthOptions,
		health.WithDisabledAutostart(),
		health.WithTimeout(healthStatusTimeoutS),
		health.WithStatusListener(func(ctx context.Context, state health.State) {
			log.Info(ctx, "readiness status changed", slog.String("status", string(state.Status)))
		}),
	)

	dsnFromConfig, err := dsn.FromDBConfig(cfg.Database)
	if err != nil {
		log.Error(ctx, "Could not load DSN from database config", err)
	}

	healthOptions = append(healthOptions,
		health.WithDatabaseChecker(
			postgresDriverName,
			dsnFromConfig,
		),
	)

	readiness := status.WithReadiness(
		health.NewHandler(
			health.NewChecker(healthOptions...),
		),
	)

	go func() {
		err := status.Start(ctx, &cfg.BaseConfig, liveness, readiness)
		if err != nil {
			log.Error(ctx, "Failure on the status server", err)

			_ = syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
		}
	}()
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

	// Update Version
	err = commoncfg.UpdateConfigVersion(&cfg.BaseConfig, buildInfo)
	if err != nil {
		return nil, oops.In("main").
			Wrapf(err, "Failed to update the version configuration")
	}

	err = cfg.Validate()
	if err != nil {
		return nil, oops.In("main").Wrapf(err, "failed to validate config")
	}

	return cfg, nil
}

func Cmd(buildInfo string) *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "api-server",
		Short: "FlockTrack API Server",
		Long:  "FlockTrack API Server serves the tenant-scoped farm API and ingests identity-provider webhooks.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(buildInfo)
			if err != nil {
				return oops.In("main").Wrapf(err, "failed to load config")
			}

			err = run(cmd.Context(), cfg)
			if err != nil {
				return oops.In("main").Wrapf(err, "failed to run the api server")
			}

			return err
		},
	}

	return cmd
}
