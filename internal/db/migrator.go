package db

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/flocktrack/flocktrack/internal/config"
	"github.com/flocktrack/flocktrack/internal/db/dsn"
)

var ErrUnsupportedMigration = errors.New("unsupported migration")

const (
	migrationTable     = "goose_db_schema_version"
	postgresDriverName = "pgx"
)

type migrateFunc func(ctx context.Context, db *sql.DB, dir string) error

type migrator struct {
	dsn string
	dir string
}

type Migrator interface {
	MigrateToLatest(ctx context.Context, downgrade bool) error
	MigrateTo(ctx context.Context, downgrade bool, version int64) error
}

func NewMigrator(cfg *config.Config) (Migrator, error) {
	dsnString, err := dsn.FromDBConfig(cfg.Database)
	if err != nil {
		return nil, err
	}

	return &migrator{
		dsn: dsnString,
		dir: cfg.Database.Migrations,
	}, nil
}

// MigrateToLatest runs migrations onto the latest version.
// With downgrade true it rolls back the most recent version instead.
func (m *migrator) MigrateToLatest(ctx context.Context, downgrade bool) error {
	return m.run(ctx, func(ctx context.Context, db *sql.DB, dir string) error {
		if downgrade {
			return goose.DownContext(ctx, db, dir)
		}
		return goose.UpContext(ctx, db, dir)
	})
}

// MigrateTo migrates up-to (or, with downgrade true, down-to) a specific version.
func (m *migrator) MigrateTo(ctx context.Context, downgrade bool, version int64) error {
	return m.run(ctx, func(ctx context.Context, db *sql.DB, dir string) error {
		if downgrade {
			return goose.DownToContext(ctx, db, dir, version)
		}
		return goose.UpToContext(ctx, db, dir, version)
	})
}

func (m *migrator) run(ctx context.Context, f migrateFunc) error {
	dbCon, err := goose.OpenDBWithDriver(postgresDriverName, m.dsn)
	if err != nil {
		return err
	}
	defer dbCon.Close()

	goose.SetTableName(migrationTable)

	return f(ctx, dbCon, m.dir)
}
