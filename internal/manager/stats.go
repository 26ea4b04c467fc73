package manager

import (
	"context"
	"time"

	"github.com/flocktrack/flocktrack/internal/model"
	"github.com/flocktrack/flocktrack/internal/repo"
)

// Summary aggregates production and spend over a date range.
type Summary struct {
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
	EggsCollected int       `json:"eggsCollected"`
	FeedKg        float64   `json:"feedKg"`
	Mortality     int       `json:"mortality"`
	SpendCents    int64     `json:"spendCents"`
}

type StatsManager struct {
	repo repo.Repo
}

func NewStatsManager(r repo.Repo) *StatsManager {
	return &StatsManager{repo: r}
}

const statsBatchSize = 500

// Summarize walks the tenant's daily records and purchases within the range.
// Both walks go through the tenant-scoped repository, so the aggregates can
// never mix rows of different tenants.
func (m *StatsManager) Summarize(ctx context.Context, from, to time.Time) (*Summary, error) {
	summary := &Summary{From: from, To: to}

	recordQuery := repo.NewQuery().
		WhereOp(repo.RecordDateField, repo.GreaterEq, from).
		WhereOp(repo.RecordDateField, repo.LessEq, to)

	err := processInBatch(ctx, m.repo, model.DailyRecord{}, recordQuery, func(records []*model.DailyRecord) error {
		for _, r := range records {
			summary.EggsCollected += r.EggsCollected
			summary.FeedKg += r.FeedKg
			summary.Mortality += r.Mortality
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	purchaseQuery := repo.NewQuery().
		WhereOp(repo.PurchaseDateField, repo.GreaterEq, from).
		WhereOp(repo.PurchaseDateField, repo.LessEq, to)

	err = processInBatch(ctx, m.repo, model.Purchase{}, purchaseQuery, func(purchases []*model.Purchase) error {
		for _, p := range purchases {
			summary.SpendCents += p.AmountCents
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// processInBatch pages through all matching records to keep memory bounded.
// Processing stops immediately if processFunc returns an error.
func processInBatch[T repo.Resource](
	ctx context.Context,
	r repo.Repo,
	resource T,
	baseQuery *repo.Query,
	processFunc func([]*T) error,
) error {
	// Offset pagination is only sound over a stable order; without one the
	// planner may shuffle rows between pages and skip or repeat records.
	baseQuery.Order(repo.IDField, repo.Asc)

	offset := 0

	for {
		var items []*T

		query := baseQuery.SetLimit(statsBatchSize).SetOffset(offset)

		count, err := r.List(ctx, resource, &items, *query)
		if err != nil {
			return err
		}

		err = processFunc(items)
		if err != nil {
			return err
		}

		offset += statsBatchSize

		if offset >= count {
			break
		}
	}

	return nil
}
