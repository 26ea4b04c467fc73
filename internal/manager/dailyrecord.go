package manager

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/flocktrack/flocktrack/internal/model"
	"github.com/flocktrack/flocktrack/internal/repo"
)

type DailyRecordManager struct {
	repo repo.Repo
}

func NewDailyRecordManager(r repo.Repo) *DailyRecordManager {
	return &DailyRecordManager{repo: r}
}

func (m *DailyRecordManager) CreateRecord(ctx context.Context, record *model.DailyRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	found, err := m.repo.First(ctx, &model.Flock{}, *repo.NewQuery().Where(repo.IDField, record.FlockID))
	if err != nil {
		return err
	}

	if !found {
		return repo.ErrNotFound
	}

	return m.repo.Create(ctx, record)
}

// ListRecords returns daily records, optionally filtered by flock and an
// inclusive date range.
func (m *DailyRecordManager) ListRecords(
	ctx context.Context,
	flockID *uuid.UUID,
	from, to *time.Time,
	limit, offset int,
) ([]*model.DailyRecord, int, error) {
	var records []*model.DailyRecord

	query := repo.NewQuery().
		Order(repo.RecordDateField, repo.Desc).
		SetLimit(limit).
		SetOffset(offset)

	if flockID != nil {
		query = query.Where(repo.FlockIDField, *flockID)
	}

	if from != nil {
		query = query.WhereOp(repo.RecordDateField, repo.GreaterEq, *from)
	}

	if to != nil {
		query = query.WhereOp(repo.RecordDateField, repo.LessEq, *to)
	}

	count, err := m.repo.List(ctx, model.DailyRecord{}, &records, *query)
	if err != nil {
		return nil, 0, ErrListResources
	}

	return records, count, nil
}
