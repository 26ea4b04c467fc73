package daemon

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/openkcm/common-sdk/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flocktrack/flocktrack/internal/config"
	"github.com/flocktrack/flocktrack/internal/handlers"
	"github.com/flocktrack/flocktrack/internal/repo/mock"
	"github.com/flocktrack/flocktrack/internal/webhook"
)

func testRoutes(t *testing.T, cfg *config.Config) (http.Handler, *mock.InMemoryRepository) {
	t.Helper()

	repository := mock.NewInMemoryRepository()
	handler := handlers.New(cfg, repository)

	verifier, err := webhook.NewVerifier("whsec_dGVzdC1rZXk=", time.Minute)
	require.NoError(t, err)

	return buildRoutes(cfg, handler, webhook.NewIngestor(verifier, handler.Tenants())), repository
}

func identityHeader(t *testing.T, subject string) string {
	t.Helper()

	raw, err := json.Marshal(auth.ClientData{Identifier: subject, Email: subject + "@example.com"})
	require.NoError(t, err)

	return base64.RawURLEncoding.EncodeToString(raw)
}

func TestRoutingZones(t *testing.T) {
	cfg := &config.Config{}
	cfg.Tenancy.AllowSelfOnboarding = true

	routes, repository := testRoutes(t, cfg)

	t.Run("business routes reject anonymous requests", func(t *testing.T) {
		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/coops", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, 0, repository.FirstCalls)
	})

	t.Run("business routes reject identities without a tenant", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/coops", nil)
		req.Header.Set(auth.HeaderClientData, identityHeader(t, "user_no_tenant"))

		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("onboarding then access", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/onboarding", nil)
		req.Header.Set(auth.HeaderClientData, identityHeader(t, "user_new"))

		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		req = httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(auth.HeaderClientData, identityHeader(t, "user_new"))

		rec = httptest.NewRecorder()
		routes.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "user_new")
	})

	t.Run("webhook route skips tenant resolution", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/identity", strings.NewReader("{}"))

		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, req)

		// Unsigned, so unauthorized, but it reached the ingestor rather
		// than the tenant gate.
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("responses carry a request id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/coops", nil))

		assert.Contains(t, rec.Body.String(), "requestId")
	})
}

func TestServerClose(t *testing.T) {
	s := &Server{
		cfg:    &config.Config{HTTP: config.HTTPServer{ShutdownTimeout: time.Second}},
		server: &http.Server{Addr: "127.0.0.1:0"},
	}

	require.NoError(t, s.Close(context.Background()))
}
