package apierrors

import (
	"context"
	"errors"

	"github.com/flocktrack/flocktrack/internal/manager"
	"github.com/flocktrack/flocktrack/internal/repo"
	"github.com/flocktrack/flocktrack/internal/tenantctx"
)

// TransformToAPIError maps internal errors onto the API error envelope.
// Unknown errors deliberately collapse into a plain 500; internals are for
// the logs, not the client.
func TransformToAPIError(_ context.Context, err error) ErrorMessage {
	switch {
	case errors.Is(err, manager.ErrValidation):
		return ValidationErrorMessage(err.Error())
	case errors.Is(err, manager.ErrTenantNotFound):
		return TenantAccessDeniedMessage()
	case errors.Is(err, repo.ErrNotFound):
		return NotFoundMessage("Resource not found")
	case errors.Is(err, repo.ErrUniqueConstraint):
		return ConflictMessage("Resource already exists")
	case errors.Is(err, repo.ErrTenantContextMissing), errors.Is(err, tenantctx.ErrExtractTenantID):
		return UnauthenticatedMessage()
	default:
		return InternalServerErrorMessage()
	}
}
