package sql

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flocktrack/flocktrack/internal/errs"
	"github.com/flocktrack/flocktrack/internal/log"
	"github.com/flocktrack/flocktrack/internal/repo"
	"github.com/flocktrack/flocktrack/internal/repo/violations"
	"github.com/flocktrack/flocktrack/internal/tenantctx"
)

// ResourceRepository represents the repository for managing Resource data.
type ResourceRepository struct {
	db *gorm.DB
}

// NewRepository creates and returns a new instance of ResourceRepository.
func NewRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{
		db: db,
	}
}

// tenantOwned is implemented by models carrying the tenant owner column.
type tenantOwned interface {
	SetOwner(tenantID uuid.UUID)
}

// withTenant runs fn inside a transaction. For tenant-scoped resources the
// first statement of that transaction assigns the request's tenant id to the
// session variable the row-level security policies read. The assignment is
// transaction-local (set_config with is_local=true), so a pooled connection
// can never carry a stale tenant into a later transaction, and it is re-done
// for every single operation: state left behind by a previous request on the
// same physical connection is never trusted.
func (r *ResourceRepository) withTenant(
	ctx context.Context,
	resource repo.Resource,
	fn func(tx *gorm.DB) error,
) error {
	if resource.IsSharedModel() {
		return r.db.WithContext(ctx).Transaction(fn)
	}

	tenantID, err := tenantctx.ExtractTenantID(ctx)
	if err != nil {
		return errs.Wrap(repo.ErrTenantContextMissing, err)
	}

	if _, err := uuid.Parse(tenantID); err != nil {
		return errs.Wrap(repo.ErrInvalidTenantID, err)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec("SELECT set_tenant_context(?)", tenantID).Error
		if err != nil {
			return errs.Wrap(repo.ErrSetTenantContext, err)
		}

		return fn(tx)
	})
}

// Create adds meta information and stores a Resource.
// The owner column of tenant-scoped resources is always taken from the
// context, never from the caller-supplied struct.
func (r *ResourceRepository) Create(ctx context.Context, resource repo.Resource) error {
	if owned, ok := resource.(tenantOwned); ok && !resource.IsSharedModel() {
		tenantID, err := tenantctx.ExtractTenantID(ctx)
		if err != nil {
			return errs.Wrap(repo.ErrTenantContextMissing, err)
		}

		parsed, err := uuid.Parse(tenantID)
		if err != nil {
			return errs.Wrap(repo.ErrInvalidTenantID, err)
		}

		owned.SetOwner(parsed)
	}

	return r.withTenant(ctx, resource, func(tx *gorm.DB) error {
		err := tx.Create(resource).Error
		if err != nil {
			log.Error(ctx, "error creating resource", err)

			if errors.Is(err, gorm.ErrDuplicatedKey) || violations.IsUniqueConstraint(err) {
				return errs.Wrap(repo.ErrUniqueConstraint, err)
			}

			return errs.Wrap(repo.ErrCreateResource, err)
		}

		return nil
	})
}

// First fills the given Resource with the first match, if found.
func (r *ResourceRepository) First(
	ctx context.Context,
	resource repo.Resource,
	query repo.Query,
) (bool, error) {
	var res *gorm.DB

	err := r.withTenant(ctx, resource, func(tx *gorm.DB) error {
		res = applyQuery(tx.Model(resource), query).First(resource)

		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrRecordNotFound) {
				return errs.Wrap(repo.ErrNotFound, res.Error)
			}

			log.Error(ctx, "error finding the resource", res.Error)

			return errs.Wrap(repo.ErrGetResource, res.Error)
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	return res.RowsAffected > 0, nil
}

// List retrieves records from the database based on the provided query
// parameters and model. Result is an address.
func (r *ResourceRepository) List(
	ctx context.Context,
	resource repo.Resource,
	result any,
	query repo.Query,
) (int, error) {
	var count int64

	err := r.withTenant(ctx, resource, func(tx *gorm.DB) error {
		db := applyQuery(tx.Model(resource), query)

		db = db.Count(&count)
		if db.Error != nil {
			return db.Error
		}

		for _, order := range query.OrderFields {
			db = db.Order(fmt.Sprintf("%s %s", order.Field, order.Direction))
		}

		res := applyPagination(db, query).Find(result)
		if res.Error != nil {
			return res.Error
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return int(count), nil
}

// Patch updates the resource fields matching the query.
//
// It returns true if a record was patched successfully,
// and error if there was an error during the patch.
func (r *ResourceRepository) Patch(
	ctx context.Context,
	resource repo.Resource,
	query repo.Query,
) (bool, error) {
	var res *gorm.DB

	err := r.withTenant(ctx, resource, func(tx *gorm.DB) error {
		res = applyQuery(tx.Model(resource), query).Updates(resource)

		err := res.Error
		if err != nil {
			log.Error(ctx, "error updating resource", err)

			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.Wrap(repo.ErrNotFound, err)
			}

			if errors.Is(err, gorm.ErrDuplicatedKey) || violations.IsUniqueConstraint(err) {
				return errs.Wrap(repo.ErrUniqueConstraint, err)
			}

			return err
		}

		return nil
	})
	if err != nil {
		return false, errs.Wrap(repo.ErrUpdateResource, err)
	}

	return res.RowsAffected > 0, nil
}

// Update saves every field of the resource by primary key.
func (r *ResourceRepository) Update(ctx context.Context, resource repo.Resource) error {
	return r.withTenant(ctx, resource, func(tx *gorm.DB) error {
		err := tx.Save(resource).Error
		if err != nil {
			log.Error(ctx, "error updating resource", err)

			if errors.Is(err, gorm.ErrDuplicatedKey) || violations.IsUniqueConstraint(err) {
				return errs.Wrap(repo.ErrUniqueConstraint, err)
			}

			return errs.Wrap(repo.ErrUpdateResource, err)
		}

		return nil
	})
}

// Delete removes the Resource.
//
// It returns true if a record was deleted successfully,
// false if there was no record to delete,
// and error if there was an error during the deletion.
func (r *ResourceRepository) Delete(
	ctx context.Context,
	resource repo.Resource,
	query repo.Query,
) (bool, error) {
	var result *gorm.DB

	err := r.withTenant(ctx, resource, func(tx *gorm.DB) error {
		result = applyConditions(tx, query).Delete(resource)

		if result.Error != nil {
			log.Error(ctx, "error deleting resource", result.Error)
			return errs.Wrap(repo.ErrDeleteResource, result.Error)
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	return result.RowsAffected > 0, nil
}

// Transaction wraps a function inside a database transaction.
// txFunc is a type TransactionFunc where we can define the transactional logic.
// If txFunc returns no error the transaction is committed, otherwise it is
// rolled back. Tenant-scoped operations inside txFunc still re-assert the
// session variable; nested scopes become savepoints.
func (r *ResourceRepository) Transaction(ctx context.Context, txFunc repo.TransactionFunc) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		errorChan := make(chan error)

		go func() {
			errorChan <- txFunc(ctx, NewRepository(tx))
		}()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errorChan:
			return err
		}
	})
	if err != nil {
		return errs.Wrap(repo.ErrTransaction, err)
	}

	return nil
}

// applyQuery applies conditions of the query to the database.
func applyQuery(db *gorm.DB, query repo.Query) *gorm.DB {
	return applyConditions(db, query)
}

func applyConditions(db *gorm.DB, query repo.Query) *gorm.DB {
	for _, cond := range query.Conds {
		db = db.Where(fmt.Sprintf("%s %s ?", cond.Field, cond.Op), cond.Value)
	}

	return db
}

func applyPagination(db *gorm.DB, query repo.Query) *gorm.DB {
	if query.Limit <= 0 {
		query.Limit = repo.DefaultLimit
	}

	return db.Offset(query.Offset).Limit(query.Limit)
}
