package repo

import (
	"context"
	"errors"
)

// TransactionFunc is func signature for Transaction.
type TransactionFunc func(context.Context, Repo) error

// Repo defines an interface for Repository operations.
//
// Every operation on a non-shared Resource runs with the request's tenant id
// pushed into the database session first, so the row-level security policies
// see the correct scope. A missing tenant in the context is an error, never a
// silent fallthrough.
type Repo interface {
	Create(ctx context.Context, resource Resource) error
	First(ctx context.Context, resource Resource, query Query) (bool, error)
	List(ctx context.Context, resource Resource, result any, query Query) (int, error)
	Patch(ctx context.Context, resource Resource, query Query) (bool, error)
	Update(ctx context.Context, resource Resource) error
	Delete(ctx context.Context, resource Resource, query Query) (bool, error)
	Transaction(ctx context.Context, txFunc TransactionFunc) error
}

// Resource defines the interface for Resource operations.
// Shared models (the tenants table itself) are visible without tenant scope;
// everything else carries an owner column and is filtered by policy.
type Resource interface {
	IsSharedModel() bool
	TableName() string
}

const DefaultLimit = 100

var (
	ErrNotFound             = errors.New("resource not found")
	ErrUniqueConstraint     = errors.New("unique constraint violation")
	ErrCreateResource       = errors.New("failed to create resource")
	ErrUpdateResource       = errors.New("failed to update resource")
	ErrDeleteResource       = errors.New("failed to delete resource")
	ErrGetResource          = errors.New("failed to get resource")
	ErrTransaction          = errors.New("failed to execute transaction")
	ErrTenantContextMissing = errors.New("tenant-scoped operation without tenant in context")
	ErrSetTenantContext     = errors.New("failed to set tenant context on database session")
	ErrInvalidTenantID      = errors.New("tenant id in context is not a valid UUID")
)

// Query field names, matching the column names gorm derives from the models.
const (
	IDField                = "id"
	ExternalSubjectIDField = "external_subject_id"
	EmailField             = "email"
	TenantIDField          = "tenant_id"
	CoopIDField            = "coop_id"
	FlockIDField           = "flock_id"
	RecordDateField        = "record_date"
	PurchaseDateField      = "purchase_date"
	NameField              = "name"
)
