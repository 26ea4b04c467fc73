package testutils

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"testing"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/flocktrack/flocktrack/internal/config"
	"github.com/flocktrack/flocktrack/internal/db"
	"github.com/flocktrack/flocktrack/internal/repo"
)

var TestDB = config.Database{
	Host: commoncfg.SourceRef{
		Source: commoncfg.EmbeddedSourceValue,
		Value:  "localhost",
	},
	User: commoncfg.SourceRef{
		Source: commoncfg.EmbeddedSourceValue,
		Value:  "postgres",
	},
	Secret: commoncfg.SourceRef{
		Source: commoncfg.EmbeddedSourceValue,
		Value:  "secret",
	},
	Name: "flocktrack",
	Port: "5433",
}

// appRole is the login the repository tests connect with. The container user
// is a superuser and superusers bypass row-level security entirely, so every
// test that exercises tenant isolation has to go through this role instead.
const (
	appRole       = "flocktrack_app"
	appRoleSecret = "app-secret"
)

type TestDBConfig struct {
	// MaxOpenConns caps the connection pool of the returned handle. A cap of
	// one forces every query through the same pooled connection, which is
	// the hostile case for leftover session state.
	MaxOpenConns int
}

// NewTestDB provisions a dedicated database for the test, migrates it, and
// returns a handle connected as the non-superuser application role.
func NewTestDB(tb testing.TB, cfg TestDBConfig) *gorm.DB {
	tb.Helper()

	dbCfg := TestDB
	StartPostgresSQL(tb, &dbCfg)

	admin, err := db.StartDBConnection(tb.Context(), dbCfg, nil)
	require.NoError(tb, err)

	name := processNameForDB(tb.Name())

	require.NoError(tb, admin.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s;", name)).Error)
	require.NoError(tb, admin.Exec(fmt.Sprintf("CREATE DATABASE %s;", name)).Error)
	closeDB(tb, admin)

	dbCfg.Name = name
	migrate(tb, dbCfg)

	appCfg := dbCfg
	appCfg.User = commoncfg.SourceRef{Source: commoncfg.EmbeddedSourceValue, Value: appRole}
	appCfg.Secret = commoncfg.SourceRef{Source: commoncfg.EmbeddedSourceValue, Value: appRoleSecret}

	con, err := db.StartDBConnection(tb.Context(), appCfg, nil)
	require.NoError(tb, err)

	if cfg.MaxOpenConns > 0 {
		sqlDB, err := con.DB()
		require.NoError(tb, err)
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	tb.Cleanup(func() {
		sqlDB, _ := con.DB()
		_ = sqlDB.Close()
	})

	return con
}

// migrate applies all migrations to the test database and grants the
// application role access to the resulting schema.
func migrate(tb testing.TB, dbCfg config.Database) {
	tb.Helper()

	m, err := db.NewMigrator(&config.Config{Database: config.Database{
		Name:       dbCfg.Name,
		Port:       dbCfg.Port,
		Host:       dbCfg.Host,
		User:       dbCfg.User,
		Secret:     dbCfg.Secret,
		Migrations: migrationsDir(tb),
	}})
	require.NoError(tb, err)

	require.NoError(tb, m.MigrateToLatest(tb.Context(), false))

	admin, err := db.StartDBConnection(tb.Context(), dbCfg, nil)
	require.NoError(tb, err)

	statements := []string{
		fmt.Sprintf(`DO $$ BEGIN
			CREATE ROLE %s LOGIN PASSWORD '%s' NOBYPASSRLS;
		EXCEPTION WHEN duplicate_object THEN NULL; END $$;`, appRole, appRoleSecret),
		fmt.Sprintf("GRANT USAGE ON SCHEMA public TO %s;", appRole),
		fmt.Sprintf("GRANT ALL PRIVILEGES ON ALL TABLES IN SCHEMA public TO %s;", appRole),
		fmt.Sprintf("GRANT EXECUTE ON ALL FUNCTIONS IN SCHEMA public TO %s;", appRole),
	}

	for _, stmt := range statements {
		require.NoError(tb, admin.Exec(stmt).Error)
	}

	closeDB(tb, admin)
}

func migrationsDir(tb testing.TB) string {
	tb.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	require.True(tb, ok)

	return filepath.Join(filepath.Dir(thisFile), "..", "..", "migrations")
}

func closeDB(tb testing.TB, con *gorm.DB) {
	tb.Helper()

	sqlDB, err := con.DB()
	assert.NoError(tb, err)
	assert.NoError(tb, sqlDB.Close())
}

func CreateTestEntities(ctx context.Context, tb testing.TB, r repo.Repo, entities ...repo.Resource) {
	tb.Helper()

	for _, e := range entities {
		err := r.Create(ctx, e)
		assert.NoError(tb, err)
	}
}

const maxPSQLNameLen = 64

// tb.Name() returns following format TESTA/SUBTESTB
// Postgres does not support names with "/" character and has max len 63 char
func processNameForDB(n string) string {
	name := strings.ToLower(n)
	name = strings.ReplaceAll(name, "/", "_")

	name = regexp.MustCompile(`[^a-z0-9_]+`).ReplaceAllString(name, "")
	if len(name) >= maxPSQLNameLen {
		name = name[:maxPSQLNameLen-1]
	}

	return name
}
