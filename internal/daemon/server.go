package daemon

import (
	"context"
	"errors"
	"net/http"
	"syscall"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/samber/oops"

	"github.com/flocktrack/flocktrack/internal/config"
	"github.com/flocktrack/flocktrack/internal/db"
	"github.com/flocktrack/flocktrack/internal/handlers"
	"github.com/flocktrack/flocktrack/internal/log"
	"github.com/flocktrack/flocktrack/internal/middleware"
	"github.com/flocktrack/flocktrack/internal/repo/sql"
	"github.com/flocktrack/flocktrack/internal/webhook"
)

const (
	ReadHeaderTimeout = 5 * time.Second
	ReadTimeout       = 10 * time.Second
	WriteTimeout      = 10 * time.Second
	IdleTimeout       = 120 * time.Second
	ServerLogDomain   = "server daemon"
)

// Server is the API server daemon.
type Server struct {
	cfg     *config.Config
	handler *handlers.Handler
	server  *http.Server
}

func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	dbCon, err := db.StartDBConnection(ctx, cfg.Database, cfg.DatabaseReplicas)
	if err != nil {
		return nil, oops.In(ServerLogDomain).Wrapf(err, "starting db")
	}

	repository := sql.NewRepository(dbCon)
	handler := handlers.New(cfg, repository)

	secret, err := commoncfg.LoadValueFromSourceRef(cfg.Webhook.Secret)
	if err != nil {
		return nil, oops.In(ServerLogDomain).Wrapf(err, "loading webhook secret")
	}

	verifier, err := webhook.NewVerifier(string(secret), cfg.Webhook.Tolerance)
	if err != nil {
		return nil, oops.In(ServerLogDomain).Wrapf(err, "creating webhook verifier")
	}

	ingestor := webhook.NewIngestor(verifier, handler.Tenants())

	return &Server{
		cfg:     cfg,
		handler: handler,
		server: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           buildRoutes(cfg, handler, ingestor),
			ReadHeaderTimeout: ReadHeaderTimeout,
			ReadTimeout:       ReadTimeout,
			WriteTimeout:      WriteTimeout,
			IdleTimeout:       IdleTimeout,
		},
	}, nil
}

// buildRoutes assembles the routing tree.
//
// Three zones with distinct trust requirements share the tree. The webhook
// route authenticates by signature only. The onboarding route needs a
// verified identity but, by definition, no resolved tenant. Everything else
// requires both, and requests whose identity maps to no tenant are rejected
// before any handler runs.
func buildRoutes(cfg *config.Config, handler *handlers.Handler, ingestor *webhook.Ingestor) http.Handler {
	tenantMux := http.NewServeMux()
	handler.Register(tenantMux)

	tenantZone := chain(tenantMux,
		middleware.ResolveTenant(handler.Tenants()),
		middleware.RequireTenant(),
	)

	mux := http.NewServeMux()
	mux.Handle("POST /webhooks/identity", ingestor)
	mux.HandleFunc("POST /onboarding", handler.Onboard)
	mux.Handle("/", tenantZone)

	return chain(mux,
		middleware.InjectRequestID(),
		middleware.PanicRecoveryMiddleware(),
		middleware.LoggingMiddleware(),
		middleware.IdentityMiddleware(),
	)
}

// chain wraps h so the listed middlewares run in the order given.
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}

	return h
}

func (s *Server) Start(ctx context.Context) error {
	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "server encountered an error", err)

			_ = syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
		}
	}()

	return nil
}

func (s *Server) Close(ctx context.Context) error {
	shutdownCtx, shutdownRelease := context.WithTimeout(ctx, s.cfg.HTTP.ShutdownTimeout)
	defer shutdownRelease()

	err := s.server.Shutdown(shutdownCtx)
	if err != nil {
		return oops.In(ServerLogDomain).
			WithContext(ctx).
			Wrapf(err, "failed shutting down HTTP server")
	}

	log.Info(ctx, "Completed graceful shutdown of HTTP server")

	return nil
}
