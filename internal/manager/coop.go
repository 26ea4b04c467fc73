package manager

import (
	"context"

	"github.com/google/uuid"

	"github.com/flocktrack/flocktrack/internal/model"
	"github.com/flocktrack/flocktrack/internal/repo"
)

type CoopManager struct {
	repo repo.Repo
}

func NewCoopManager(r repo.Repo) *CoopManager {
	return &CoopManager{repo: r}
}

func (m *CoopManager) CreateCoop(ctx context.Context, coop *model.Coop) error {
	if coop.ID == uuid.Nil {
		coop.ID = uuid.New()
	}

	return m.repo.Create(ctx, coop)
}

func (m *CoopManager) GetCoop(ctx context.Context, id uuid.UUID) (*model.Coop, error) {
	coop := &model.Coop{}

	found, err := m.repo.First(ctx, coop, *repo.NewQuery().Where(repo.IDField, id))
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, repo.ErrNotFound
	}

	return coop, nil
}

func (m *CoopManager) ListCoops(ctx context.Context, limit, offset int) ([]*model.Coop, int, error) {
	var coops []*model.Coop

	query := repo.NewQuery().
		Order(repo.NameField, repo.Asc).
		SetLimit(limit).
		SetOffset(offset)

	count, err := m.repo.List(ctx, model.Coop{}, &coops, *query)
	if err != nil {
		return nil, 0, ErrListResources
	}

	return coops, count, nil
}

func (m *CoopManager) UpdateCoop(ctx context.Context, coop *model.Coop) (bool, error) {
	return m.repo.Patch(ctx, coop, *repo.NewQuery().Where(repo.IDField, coop.ID))
}

func (m *CoopManager) DeleteCoop(ctx context.Context, id uuid.UUID) (bool, error) {
	return m.repo.Delete(ctx, &model.Coop{}, *repo.NewQuery().Where(repo.IDField, id))
}
