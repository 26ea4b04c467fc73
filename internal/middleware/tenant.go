package middleware

import (
	"errors"
	"net/http"

	"github.com/flocktrack/flocktrack/internal/api/write"
	"github.com/flocktrack/flocktrack/internal/apierrors"
	"github.com/flocktrack/flocktrack/internal/log"
	"github.com/flocktrack/flocktrack/internal/manager"
	"github.com/flocktrack/flocktrack/internal/tenantctx"
)

// ResolveTenant maps the verified identity to its tenant record and places
// the tenant id into the request context.
//
// Anonymous requests pass through untouched and never reach the store.
// A verified identity with no tenant record is rejected fail-closed; generic
// request resolution never provisions tenants (onboarding is a separate,
// explicit operation). The lookup has no side effects and runs on every
// request.
func ResolveTenant(tm manager.Tenant) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			identity, err := tenantctx.ExtractIdentity(ctx)
			if err != nil {
				next.ServeHTTP(w, r)

				return
			}

			tenant, err := tm.ResolveTenant(ctx, identity.Subject)
			if errors.Is(err, manager.ErrTenantNotFound) {
				log.Warn(ctx, "rejecting identity without tenant")
				write.ErrorResponse(ctx, w, apierrors.TenantAccessDeniedMessage())

				return
			} else if err != nil {
				log.Error(ctx, "tenant resolution failed", err)
				write.ErrorResponse(ctx, w, apierrors.InternalServerErrorMessage())

				return
			}

			ctx = tenantctx.WithTenant(ctx, tenant.ID.String())
			ctx = log.InjectTenant(ctx, tenant.ID.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireTenant guards endpoints that cannot run without a resolved tenant.
func RequireTenant() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, err := tenantctx.ExtractTenantID(r.Context())
			if err != nil {
				write.ErrorResponse(r.Context(), w, apierrors.UnauthenticatedMessage())

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
