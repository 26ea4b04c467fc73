package manager

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/flocktrack/flocktrack/internal/model"
	"github.com/flocktrack/flocktrack/internal/repo"
)

type PurchaseManager struct {
	repo repo.Repo
}

func NewPurchaseManager(r repo.Repo) *PurchaseManager {
	return &PurchaseManager{repo: r}
}

func (m *PurchaseManager) CreatePurchase(ctx context.Context, purchase *model.Purchase) error {
	if purchase.ID == uuid.Nil {
		purchase.ID = uuid.New()
	}

	return m.repo.Create(ctx, purchase)
}

func (m *PurchaseManager) ListPurchases(
	ctx context.Context,
	from, to *time.Time,
	limit, offset int,
) ([]*model.Purchase, int, error) {
	var purchases []*model.Purchase

	query := repo.NewQuery().
		Order(repo.PurchaseDateField, repo.Desc).
		SetLimit(limit).
		SetOffset(offset)

	if from != nil {
		query = query.WhereOp(repo.PurchaseDateField, repo.GreaterEq, *from)
	}

	if to != nil {
		query = query.WhereOp(repo.PurchaseDateField, repo.LessEq, *to)
	}

	count, err := m.repo.List(ctx, model.Purchase{}, &purchases, *query)
	if err != nil {
		return nil, 0, ErrListResources
	}

	return purchases, count, nil
}
