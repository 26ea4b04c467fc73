package manager

import (
	"context"

	"github.com/google/uuid"

	"github.com/flocktrack/flocktrack/internal/model"
	"github.com/flocktrack/flocktrack/internal/repo"
)

type FlockManager struct {
	repo repo.Repo
}

func NewFlockManager(r repo.Repo) *FlockManager {
	return &FlockManager{repo: r}
}

func (m *FlockManager) CreateFlock(ctx context.Context, flock *model.Flock) error {
	if flock.ID == uuid.Nil {
		flock.ID = uuid.New()
	}

	// The referenced coop must exist within this tenant's scope; the RLS
	// policy makes another tenant's coop indistinguishable from a missing one.
	found, err := m.repo.First(ctx, &model.Coop{}, *repo.NewQuery().Where(repo.IDField, flock.CoopID))
	if err != nil {
		return err
	}

	if !found {
		return repo.ErrNotFound
	}

	return m.repo.Create(ctx, flock)
}

func (m *FlockManager) GetFlock(ctx context.Context, id uuid.UUID) (*model.Flock, error) {
	flock := &model.Flock{}

	found, err := m.repo.First(ctx, flock, *repo.NewQuery().Where(repo.IDField, id))
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, repo.ErrNotFound
	}

	return flock, nil
}

func (m *FlockManager) ListFlocks(ctx context.Context, coopID *uuid.UUID, limit, offset int) ([]*model.Flock, int, error) {
	var flocks []*model.Flock

	query := repo.NewQuery().SetLimit(limit).SetOffset(offset)
	if coopID != nil {
		query = query.Where(repo.CoopIDField, *coopID)
	}

	count, err := m.repo.List(ctx, model.Flock{}, &flocks, *query)
	if err != nil {
		return nil, 0, ErrListResources
	}

	return flocks, count, nil
}

func (m *FlockManager) UpdateFlock(ctx context.Context, flock *model.Flock) (bool, error) {
	return m.repo.Patch(ctx, flock, *repo.NewQuery().Where(repo.IDField, flock.ID))
}

func (m *FlockManager) DeleteFlock(ctx context.Context, id uuid.UUID) (bool, error) {
	return m.repo.Delete(ctx, &model.Flock{}, *repo.NewQuery().Where(repo.IDField, id))
}
