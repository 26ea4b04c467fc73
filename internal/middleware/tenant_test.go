package middleware_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openkcm/common-sdk/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	slogctx "github.com/veqryn/slog-context"

	"github.com/flocktrack/flocktrack/internal/manager"
	"github.com/flocktrack/flocktrack/internal/middleware"
	"github.com/flocktrack/flocktrack/internal/repo/mock"
	"github.com/flocktrack/flocktrack/internal/tenantctx"
)

func clientDataHeader(t *testing.T, subject, email string) string {
	t.Helper()

	raw, err := json.Marshal(auth.ClientData{Identifier: subject, Email: email})
	require.NoError(t, err)

	return base64.RawURLEncoding.EncodeToString(raw)
}

// innerHandler records whether the inner handler ran and with which context.
type innerHandler struct {
	called bool
	ctx    context.Context
}

func (p *innerHandler) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.called = true
		p.ctx = r.Context()

		w.WriteHeader(http.StatusOK)
	})
}

func TestIdentityMiddleware(t *testing.T) {
	t.Run("injects the forwarded identity", func(t *testing.T) {
		inner := &innerHandler{}
		handler := middleware.IdentityMiddleware()(inner.Handler())

		req := httptest.NewRequest(http.MethodGet, "/coops", nil)
		req.Header.Set(auth.HeaderClientData, clientDataHeader(t, "user_1", "farmer@example.com"))

		handler.ServeHTTP(httptest.NewRecorder(), req)

		require.True(t, inner.called)

		identity, err := tenantctx.ExtractIdentity(inner.ctx)
		require.NoError(t, err)
		assert.Equal(t, "user_1", identity.Subject)
		assert.Equal(t, "farmer@example.com", identity.Email)
	})

	t.Run("passes anonymous requests through", func(t *testing.T) {
		inner := &innerHandler{}
		handler := middleware.IdentityMiddleware()(inner.Handler())

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/coops", nil))

		require.True(t, inner.called)

		_, err := tenantctx.ExtractIdentity(inner.ctx)
		assert.Error(t, err)
	})

	t.Run("treats an undecodable header as anonymous", func(t *testing.T) {
		inner := &innerHandler{}
		handler := middleware.IdentityMiddleware()(inner.Handler())

		req := httptest.NewRequest(http.MethodGet, "/coops", nil)
		req.Header.Set(auth.HeaderClientData, "!!!not-base64!!!")

		handler.ServeHTTP(httptest.NewRecorder(), req)

		require.True(t, inner.called)

		_, err := tenantctx.ExtractIdentity(inner.ctx)
		assert.Error(t, err)
	})
}

func TestResolveTenant(t *testing.T) {
	withIdentity := func(subject string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/coops", nil)
		ctx := tenantctx.WithIdentity(req.Context(), tenantctx.Identity{Subject: subject})

		return req.WithContext(ctx)
	}

	t.Run("resolves a known identity to its tenant", func(t *testing.T) {
		repository := mock.NewInMemoryRepository()
		tm := manager.NewTenantManager(repository)

		tenant, err := tm.SyncTenant(context.Background(), "user_1", "farmer@example.com")
		require.NoError(t, err)

		inner := &innerHandler{}
		handler := middleware.ResolveTenant(tm)(inner.Handler())

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, withIdentity("user_1"))

		require.True(t, inner.called)
		assert.Equal(t, http.StatusOK, rec.Code)

		tenantID, err := tenantctx.ExtractTenantID(inner.ctx)
		require.NoError(t, err)
		assert.Equal(t, tenant.ID.String(), tenantID)
	})

	t.Run("rejects an unknown identity without provisioning", func(t *testing.T) {
		repository := mock.NewInMemoryRepository()
		tm := manager.NewTenantManager(repository)

		inner := &innerHandler{}
		handler := middleware.ResolveTenant(tm)(inner.Handler())

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, withIdentity("user_stranger"))

		assert.False(t, inner.called)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		// Exactly one lookup, no writes.
		assert.Equal(t, 1, repository.FirstCalls)
		assert.Equal(t, 0, repository.CreateCalls)
	})

	t.Run("passes anonymous requests through without touching the store", func(t *testing.T) {
		repository := mock.NewInMemoryRepository()
		tm := manager.NewTenantManager(repository)

		inner := &innerHandler{}
		handler := middleware.ResolveTenant(tm)(inner.Handler())

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/coops", nil))

		require.True(t, inner.called)
		assert.Equal(t, 0, repository.FirstCalls)

		_, err := tenantctx.ExtractTenantID(inner.ctx)
		assert.Error(t, err)
	})
}

func TestRequireTenant(t *testing.T) {
	t.Run("rejects requests without a resolved tenant", func(t *testing.T) {
		inner := &innerHandler{}
		handler := middleware.RequireTenant()(inner.Handler())

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/coops", nil))

		assert.False(t, inner.called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("passes requests with a resolved tenant", func(t *testing.T) {
		inner := &innerHandler{}
		handler := middleware.RequireTenant()(inner.Handler())

		req := httptest.NewRequest(http.MethodGet, "/coops", nil)
		req = req.WithContext(tenantctx.WithTenant(req.Context(), "11111111-1111-1111-1111-111111111111"))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.True(t, inner.called)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestResolveTenantTagsLogs(t *testing.T) {
	repository := mock.NewInMemoryRepository()
	tm := manager.NewTenantManager(repository)

	tenant, err := tm.SyncTenant(context.Background(), "user_logged", "farmer@example.com")
	require.NoError(t, err)

	var buf bytes.Buffer

	logger := slog.New(slogctx.NewHandler(slog.NewJSONHandler(&buf, nil), nil))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.InfoContext(r.Context(), "handling")
		w.WriteHeader(http.StatusOK)
	})

	handler := middleware.ResolveTenant(tm)(next)

	req := httptest.NewRequest(http.MethodGet, "/coops", nil)
	req = req.WithContext(tenantctx.WithIdentity(req.Context(), tenantctx.Identity{Subject: "user_logged"}))

	handler.ServeHTTP(httptest.NewRecorder(), req)

	// Log lines emitted downstream of resolution carry the tenant id.
	assert.Contains(t, buf.String(), `"tenantId":"`+tenant.ID.String()+`"`)
}
