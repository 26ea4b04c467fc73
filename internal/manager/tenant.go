package manager

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/flocktrack/flocktrack/internal/errs"
	"github.com/flocktrack/flocktrack/internal/log"
	"github.com/flocktrack/flocktrack/internal/model"
	"github.com/flocktrack/flocktrack/internal/repo"
	"github.com/flocktrack/flocktrack/internal/tenantctx"
)

// Tenant is the tenant lookup and synchronization surface.
type Tenant interface {
	// ResolveTenant maps a verified external subject to its tenant record.
	// It performs exactly one lookup and has no side effects; an unknown
	// subject yields ErrTenantNotFound.
	ResolveTenant(ctx context.Context, externalSubjectID string) (*model.Tenant, error)

	// SyncTenant is the idempotent upsert fed by identity-provider events.
	SyncTenant(ctx context.Context, externalSubjectID, email string) (*model.Tenant, error)

	// ProvisionTenant creates (or returns) the tenant for a verified
	// identity. It is the only operation besides SyncTenant that may
	// create tenants, and it is reachable only through the explicit
	// onboarding endpoint.
	ProvisionTenant(ctx context.Context, externalSubjectID, email string) (*model.Tenant, error)

	// GetTenant returns the tenant record resolved for this request.
	GetTenant(ctx context.Context) (*model.Tenant, error)
}

type TenantManager struct {
	repo repo.Repo
}

func NewTenantManager(r repo.Repo) *TenantManager {
	return &TenantManager{repo: r}
}

func (m *TenantManager) ResolveTenant(ctx context.Context, externalSubjectID string) (*model.Tenant, error) {
	if externalSubjectID == "" {
		return nil, errs.Wrap(ErrValidation, model.ErrEmptyExternalSubjectID)
	}

	tenant := &model.Tenant{}

	found, err := m.repo.First(
		ctx, tenant,
		*repo.NewQuery().Where(repo.ExternalSubjectIDField, externalSubjectID),
	)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !found) {
		return nil, ErrTenantNotFound
	} else if err != nil {
		return nil, err
	}

	return tenant, nil
}

// SyncTenant looks up the tenant for the given subject, updates its email
// when changed, and creates it when absent. At-least-once webhook delivery
// means two deliveries for the same subject can race on create: the tenants
// table holds a unique constraint on the subject, and a loser of that race
// re-reads and updates instead of erroring. Replays are no-ops.
func (m *TenantManager) SyncTenant(ctx context.Context, externalSubjectID, email string) (*model.Tenant, error) {
	if externalSubjectID == "" {
		return nil, errs.Wrap(ErrValidation, model.ErrEmptyExternalSubjectID)
	}

	tenant, err := m.upsert(ctx, externalSubjectID, email)
	if err != nil {
		return nil, errs.Wrap(ErrSyncingTenant, err)
	}

	return tenant, nil
}

func (m *TenantManager) ProvisionTenant(ctx context.Context, externalSubjectID, email string) (*model.Tenant, error) {
	if externalSubjectID == "" {
		return nil, errs.Wrap(ErrValidation, model.ErrEmptyExternalSubjectID)
	}

	return m.upsert(ctx, externalSubjectID, email)
}

func (m *TenantManager) GetTenant(ctx context.Context) (*model.Tenant, error) {
	tenantID, err := tenantctx.ExtractTenantID(ctx)
	if err != nil {
		return nil, err
	}

	tenant := &model.Tenant{}

	found, err := m.repo.First(ctx, tenant, *repo.NewQuery().Where(repo.IDField, tenantID))
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, ErrTenantNotFound
	}

	return tenant, nil
}

// CountTenants returns the total number of tenant records.
func (m *TenantManager) CountTenants(ctx context.Context) (int, error) {
	tenants := make([]*model.Tenant, 0, 1)

	count, err := m.repo.List(ctx, &model.Tenant{}, &tenants, *repo.NewQuery().SetLimit(1))
	if err != nil {
		return 0, errs.Wrap(ErrListResources, err)
	}

	return count, nil
}

func (m *TenantManager) upsert(ctx context.Context, externalSubjectID, email string) (*model.Tenant, error) {
	// Two passes: a create that loses the unique-constraint race falls
	// through to the read-and-update path on the second pass.
	for range 2 {
		existing := &model.Tenant{}

		found, err := m.repo.First(
			ctx, existing,
			*repo.NewQuery().Where(repo.ExternalSubjectIDField, externalSubjectID),
		)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}

		if found {
			if existing.Email == email {
				return existing, nil
			}

			existing.Email = email

			err = m.repo.Update(ctx, existing)
			if err != nil {
				return nil, err
			}

			return existing, nil
		}

		created := &model.Tenant{
			ID:                uuid.New(),
			ExternalSubjectID: externalSubjectID,
			Email:             email,
		}

		err = m.repo.Create(ctx, created)
		if err == nil {
			log.Info(ctx, "tenant created")
			return created, nil
		}

		if !errors.Is(err, repo.ErrUniqueConstraint) {
			return nil, err
		}

		// A concurrent delivery created the tenant first; the next pass
		// re-reads and updates it.
	}

	return nil, ErrProvisioningRaced
}
