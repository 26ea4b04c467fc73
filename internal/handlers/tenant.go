package handlers

import (
	"net/http"

	"github.com/flocktrack/flocktrack/internal/api/write"
	"github.com/flocktrack/flocktrack/internal/apierrors"
	"github.com/flocktrack/flocktrack/internal/log"
	"github.com/flocktrack/flocktrack/internal/tenantctx"
)

// GetMe returns the tenant record resolved for the calling identity.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenant, err := h.tenants.GetTenant(ctx)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	write.JSONResponse(ctx, w, http.StatusOK, tenant)
}

// Onboard provisions a tenant for a verified identity that has none yet.
// Unknown identities are otherwise rejected outright, so this is the single
// deliberate opening in that rule and it stays shut unless the deployment
// enables self onboarding.
func (h *Handler) Onboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.config.Tenancy.AllowSelfOnboarding {
		write.ErrorResponse(ctx, w, apierrors.OnboardingDisabledMessage())
		return
	}

	identity, err := tenantctx.ExtractIdentity(ctx)
	if err != nil {
		write.ErrorResponse(ctx, w, apierrors.UnauthenticatedMessage())
		return
	}

	tenant, err := h.tenants.ProvisionTenant(ctx, identity.Subject, identity.Email)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	log.Info(ctx, "Tenant onboarded")

	write.JSONResponse(ctx, w, http.StatusCreated, tenant)
}
