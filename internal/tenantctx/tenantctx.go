// Package tenantctx carries the per-request tenant identity as explicit
// context values. Nothing here is process-wide: a value set for one request
// is invisible to every other request by construction.
package tenantctx

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrExtractTenantID = errors.New("could not extract tenant ID from context")
	ErrGetRequestID    = errors.New("no requestID found in context")
	ErrExtractIdentity = errors.New("could not extract identity from context")
)

type key string

const (
	tenantKey    = key("tenantID")
	requestIDKey = key("requestID")
	identityKey  = key("identity")
)

// Identity is the already-verified subject claim handed over by the upstream
// auth layer. Subject is the identity provider's stable user id.
type Identity struct {
	Subject string
	Email   string
}

// WithTenant returns a context holding the resolved tenant id.
func WithTenant(ctx context.Context, tenantID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, tenantKey, tenantID)
}

// ExtractTenantID returns the tenant id resolved for this request.
// It fails when the request is anonymous or resolution never ran.
func ExtractTenantID(ctx context.Context) (string, error) {
	tenantID, ok := ctx.Value(tenantKey).(string)
	if !ok || tenantID == "" {
		return "", ErrExtractTenantID
	}

	return tenantID, nil
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func ExtractIdentity(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(identityKey).(Identity)
	if !ok || id.Subject == "" {
		return Identity{}, ErrExtractIdentity
	}

	return id, nil
}

func InjectRequestID(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestIDKey, uuid.NewString())
}

func GetRequestID(ctx context.Context) (string, error) {
	requestID, ok := ctx.Value(requestIDKey).(string)
	if !ok || requestID == "" {
		return "", ErrGetRequestID
	}

	return requestID, nil
}
