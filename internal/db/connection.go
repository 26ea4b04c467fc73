package db

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"github.com/flocktrack/flocktrack/internal/config"
	"github.com/flocktrack/flocktrack/internal/db/dsn"
	"github.com/flocktrack/flocktrack/internal/errs"
)

var (
	ErrStartingDBCon          = errors.New("error starting db connection")
	ErrDBResolver             = errors.New("error starting db resolver")
	ErrLoadingDsnFromDBConfig = errors.New("error loading dsn from db config")
)

const (
	connectAttempts = 5
	connectDelay    = 2 * time.Second
)

// NewDialector returns a postgres dialector for the given DSN.
// PreferSimpleProtocol is enabled to disable prepared statement caching, which
// prevents "cached plan must not change result type" errors across migrations.
func NewDialector(dsnString string) gorm.Dialector {
	return postgres.New(postgres.Config{
		DSN:                  dsnString,
		PreferSimpleProtocol: true,
	})
}

// StartDBConnection opens DB connection using data from `config.Database`.
// Transient startup failures (database still coming up) are retried at the
// client level before being surfaced.
func StartDBConnection(
	ctx context.Context,
	conf config.Database,
	replicas []config.Database,
) (*gorm.DB, error) {
	dsnFromConfig, err := dsn.FromDBConfig(conf)
	if err != nil {
		return nil, errs.Wrap(ErrLoadingDsnFromDBConfig, err)
	}

	dialector := NewDialector(dsnFromConfig)

	db, err := retry.DoWithData(func() (*gorm.DB, error) {
		return gorm.Open(dialector, &gorm.Config{
			TranslateError: true,
		})
	},
		retry.Context(ctx),
		retry.Attempts(connectAttempts),
		retry.Delay(connectDelay),
	)
	if err != nil {
		return nil, errs.Wrap(ErrStartingDBCon, err)
	}

	db = db.WithContext(ctx)

	if len(replicas) == 0 {
		return db, nil
	}

	replicaDialectorsFromReplicas, err := replicaDialectors(replicas)
	if err != nil {
		return nil, errs.Wrap(ErrLoadingDsnFromDBConfig, err)
	}

	err = db.Use(dbresolver.Register(dbresolver.Config{
		Sources:  []gorm.Dialector{dialector},
		Replicas: replicaDialectorsFromReplicas,
		Policy:   dbresolver.RandomPolicy{},
	}))
	if err != nil {
		return nil, errs.Wrap(ErrDBResolver, err)
	}

	return db, nil
}

func replicaDialectors(replicas []config.Database) ([]gorm.Dialector, error) {
	dialects := make([]gorm.Dialector, 0, len(replicas))

	for _, r := range replicas {
		dsnFromConfig, err := dsn.FromDBConfig(r)
		if err != nil {
			return nil, err
		}

		dialects = append(dialects, NewDialector(dsnFromConfig))
	}

	return dialects, nil
}
