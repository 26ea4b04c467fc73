package sql_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flocktrack/flocktrack/internal/model"
	"github.com/flocktrack/flocktrack/internal/repo"
	"github.com/flocktrack/flocktrack/internal/repo/sql"
	"github.com/flocktrack/flocktrack/internal/testutils"
)

func newTenant(t *testing.T, r repo.Repo, subject string) *model.Tenant {
	t.Helper()

	tenant := &model.Tenant{
		ID:                uuid.New(),
		ExternalSubjectID: subject,
		Email:             subject + "@example.com",
	}
	require.NoError(t, r.Create(context.Background(), tenant))

	return tenant
}

func TestTenantIsolation(t *testing.T) {
	// A pool of one forces every query through the same connection. If any
	// tenant state survived a transaction, the interleaved reads below would
	// see it.
	con := testutils.NewTestDB(t, testutils.TestDBConfig{MaxOpenConns: 1})
	r := sql.NewRepository(con)

	tenantA := newTenant(t, r, "user_a")
	tenantB := newTenant(t, r, "user_b")

	ctxA := testutils.CreateCtxWithTenant(tenantA.ID.String())
	ctxB := testutils.CreateCtxWithTenant(tenantB.ID.String())

	coopA := &model.Coop{ID: uuid.New(), Name: "A Barn"}
	require.NoError(t, r.Create(ctxA, coopA))

	for range 10 {
		var coopsA []*model.Coop

		countA, err := r.List(ctxA, model.Coop{}, &coopsA, *repo.NewQuery())
		require.NoError(t, err)
		assert.Equal(t, 1, countA)

		var coopsB []*model.Coop

		countB, err := r.List(ctxB, model.Coop{}, &coopsB, *repo.NewQuery())
		require.NoError(t, err)
		assert.Zero(t, countB)
		assert.Empty(t, coopsB)
	}

	t.Run("cross-tenant read by id misses", func(t *testing.T) {
		found, err := r.First(ctxB, &model.Coop{}, *repo.NewQuery().Where(repo.IDField, coopA.ID))
		assert.ErrorIs(t, err, repo.ErrNotFound)
		assert.False(t, found)
	})

	t.Run("cross-tenant patch affects nothing", func(t *testing.T) {
		patched, err := r.Patch(ctxB, &model.Coop{Name: "Stolen"}, *repo.NewQuery().Where(repo.IDField, coopA.ID))
		require.NoError(t, err)
		assert.False(t, patched)

		loaded := &model.Coop{}
		_, err = r.First(ctxA, loaded, *repo.NewQuery().Where(repo.IDField, coopA.ID))
		require.NoError(t, err)
		assert.Equal(t, "A Barn", loaded.Name)
	})

	t.Run("cross-tenant delete affects nothing", func(t *testing.T) {
		deleted, err := r.Delete(ctxB, &model.Coop{}, *repo.NewQuery().Where(repo.IDField, coopA.ID))
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestTenantContextRequired(t *testing.T) {
	con := testutils.NewTestDB(t, testutils.TestDBConfig{})
	r := sql.NewRepository(con)

	t.Run("write without tenant context fails closed", func(t *testing.T) {
		err := r.Create(context.Background(), &model.Coop{ID: uuid.New(), Name: "Orphan"})
		assert.ErrorIs(t, err, repo.ErrTenantContextMissing)
	})

	t.Run("read without tenant context fails closed", func(t *testing.T) {
		var coops []*model.Coop

		_, err := r.List(context.Background(), model.Coop{}, &coops, *repo.NewQuery())
		assert.ErrorIs(t, err, repo.ErrTenantContextMissing)
	})

	t.Run("malformed tenant id is rejected", func(t *testing.T) {
		ctx := testutils.CreateCtxWithTenant("not-a-uuid")

		err := r.Create(ctx, &model.Coop{ID: uuid.New(), Name: "Orphan"})
		assert.ErrorIs(t, err, repo.ErrInvalidTenantID)
	})

	t.Run("shared models need no tenant context", func(t *testing.T) {
		tenant := newTenant(t, r, "user_shared")

		found, err := r.First(context.Background(), &model.Tenant{},
			*repo.NewQuery().Where(repo.IDField, tenant.ID))
		require.NoError(t, err)
		assert.True(t, found)
	})
}

func TestUniqueSubjectConstraint(t *testing.T) {
	con := testutils.NewTestDB(t, testutils.TestDBConfig{})
	r := sql.NewRepository(con)

	first := &model.Tenant{ID: uuid.New(), ExternalSubjectID: "user_dup"}
	require.NoError(t, r.Create(context.Background(), first))

	second := &model.Tenant{ID: uuid.New(), ExternalSubjectID: "user_dup"}
	err := r.Create(context.Background(), second)
	assert.ErrorIs(t, err, repo.ErrUniqueConstraint)
}

func TestResourceLifecycle(t *testing.T) {
	con := testutils.NewTestDB(t, testutils.TestDBConfig{})
	r := sql.NewRepository(con)

	tenant := newTenant(t, r, "user_crud")
	ctx := testutils.CreateCtxWithTenant(tenant.ID.String())

	coop := &model.Coop{ID: uuid.New(), Name: "Barn", Capacity: 100}
	require.NoError(t, r.Create(ctx, coop))

	t.Run("create stamps the owner", func(t *testing.T) {
		loaded := &model.Coop{}

		found, err := r.First(ctx, loaded, *repo.NewQuery().Where(repo.IDField, coop.ID))
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, tenant.ID, loaded.Owner())
		assert.False(t, loaded.CreatedAt.IsZero())
	})

	t.Run("patch updates matching rows", func(t *testing.T) {
		patched, err := r.Patch(ctx, &model.Coop{Capacity: 150}, *repo.NewQuery().Where(repo.IDField, coop.ID))
		require.NoError(t, err)
		assert.True(t, patched)

		loaded := &model.Coop{}
		_, err = r.First(ctx, loaded, *repo.NewQuery().Where(repo.IDField, coop.ID))
		require.NoError(t, err)
		assert.Equal(t, 150, loaded.Capacity)
	})

	t.Run("list paginates and counts", func(t *testing.T) {
		for i := range 5 {
			require.NoError(t, r.Create(ctx, &model.Coop{
				ID:   uuid.New(),
				Name: string(rune('b' + i)),
			}))
		}

		var page []*model.Coop

		count, err := r.List(ctx, model.Coop{}, &page,
			*repo.NewQuery().Order(repo.NameField, repo.Asc).SetLimit(2).SetOffset(0))
		require.NoError(t, err)
		assert.Equal(t, 6, count)
		assert.Len(t, page, 2)
	})

	t.Run("delete reports affected rows", func(t *testing.T) {
		deleted, err := r.Delete(ctx, &model.Coop{}, *repo.NewQuery().Where(repo.IDField, coop.ID))
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = r.Delete(ctx, &model.Coop{}, *repo.NewQuery().Where(repo.IDField, coop.ID))
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestTransactionRollback(t *testing.T) {
	con := testutils.NewTestDB(t, testutils.TestDBConfig{})
	r := sql.NewRepository(con)

	tenant := newTenant(t, r, "user_tx")
	ctx := testutils.CreateCtxWithTenant(tenant.ID.String())

	errBoom := errors.New("boom")

	coopID := uuid.New()

	err := r.Transaction(ctx, func(ctx context.Context, txRepo repo.Repo) error {
		err := txRepo.Create(ctx, &model.Coop{ID: coopID, Name: "Short-lived"})
		if err != nil {
			return err
		}

		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)

	found, err := r.First(ctx, &model.Coop{}, *repo.NewQuery().Where(repo.IDField, coopID))
	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.False(t, found)
}
