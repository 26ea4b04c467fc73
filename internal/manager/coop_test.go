package manager_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flocktrack/flocktrack/internal/manager"
	"github.com/flocktrack/flocktrack/internal/model"
	"github.com/flocktrack/flocktrack/internal/repo"
	"github.com/flocktrack/flocktrack/internal/repo/mock"
	"github.com/flocktrack/flocktrack/internal/testutils"
)

var testTenantID = uuid.MustParse("11111111-1111-1111-1111-111111111111")

func TestCoopLifecycle(t *testing.T) {
	ctx := testutils.CreateCtxWithTenant(testTenantID.String())
	repository := mock.NewInMemoryRepository()
	cm := manager.NewCoopManager(repository)

	coop := &model.Coop{Name: "North Barn", Capacity: 120}
	require.NoError(t, cm.CreateCoop(ctx, coop))
	assert.NotEqual(t, uuid.Nil, coop.ID)

	loaded, err := cm.GetCoop(ctx, coop.ID)
	require.NoError(t, err)
	assert.Equal(t, "North Barn", loaded.Name)

	loaded.Capacity = 150
	found, err := cm.UpdateCoop(ctx, loaded)
	require.NoError(t, err)
	assert.True(t, found)

	coops, count, err := cm.ListCoops(ctx, repo.DefaultLimit, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 150, coops[0].Capacity)

	deleted, err := cm.DeleteCoop(ctx, coop.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = cm.GetCoop(ctx, coop.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestCreateFlockRequiresVisibleCoop(t *testing.T) {
	ctx := testutils.CreateCtxWithTenant(testTenantID.String())
	repository := mock.NewInMemoryRepository()
	cm := manager.NewCoopManager(repository)
	fm := manager.NewFlockManager(repository)

	t.Run("rejects a flock for a missing coop", func(t *testing.T) {
		err := fm.CreateFlock(ctx, &model.Flock{CoopID: uuid.New(), Breed: "Leghorn"})
		assert.ErrorIs(t, err, repo.ErrNotFound)
	})

	t.Run("rejects a flock for another tenant's coop", func(t *testing.T) {
		otherCtx := testutils.CreateCtxWithTenant(uuid.NewString())

		coop := &model.Coop{Name: "Foreign Barn"}
		require.NoError(t, cm.CreateCoop(otherCtx, coop))

		err := fm.CreateFlock(ctx, &model.Flock{CoopID: coop.ID, Breed: "Leghorn"})
		assert.ErrorIs(t, err, repo.ErrNotFound)
	})

	t.Run("creates a flock in an owned coop", func(t *testing.T) {
		coop := &model.Coop{Name: "Home Barn"}
		require.NoError(t, cm.CreateCoop(ctx, coop))

		flock := &model.Flock{CoopID: coop.ID, Breed: "Leghorn", BirdCount: 40}
		require.NoError(t, fm.CreateFlock(ctx, flock))

		flocks, count, err := fm.ListFlocks(ctx, &coop.ID, repo.DefaultLimit, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		assert.Equal(t, "Leghorn", flocks[0].Breed)
	})
}

func TestCreateDailyRecordRequiresVisibleFlock(t *testing.T) {
	ctx := testutils.CreateCtxWithTenant(testTenantID.String())
	repository := mock.NewInMemoryRepository()
	dm := manager.NewDailyRecordManager(repository)

	err := dm.CreateRecord(ctx, &model.DailyRecord{
		FlockID:    uuid.New(),
		RecordDate: time.Now(),
	})
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
