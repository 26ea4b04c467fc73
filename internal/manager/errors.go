package manager

import "errors"

var (
	ErrValidation        = errors.New("validation error")
	ErrTenantNotFound    = errors.New("no tenant exists for this identity")
	ErrSyncingTenant     = errors.New("failed to sync tenant from identity event")
	ErrProvisioningRaced = errors.New("tenant provisioning raced and lost twice")
	ErrListResources     = errors.New("failed to list resources")
)
