package testutils

import (
	"context"

	"github.com/flocktrack/flocktrack/internal/tenantctx"
)

// CreateCtxWithTenant returns a context carrying the given tenant id, the way
// tenant resolution leaves it for downstream handlers.
func CreateCtxWithTenant(tenantID string) context.Context {
	return tenantctx.WithTenant(context.Background(), tenantID)
}

// CreateCtxWithIdentity returns a context carrying a verified identity.
func CreateCtxWithIdentity(subject, email string) context.Context {
	return tenantctx.WithIdentity(context.Background(), tenantctx.Identity{
		Subject: subject,
		Email:   email,
	})
}
