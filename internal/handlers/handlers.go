package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/flocktrack/flocktrack/internal/api/write"
	"github.com/flocktrack/flocktrack/internal/apierrors"
	"github.com/flocktrack/flocktrack/internal/config"
	"github.com/flocktrack/flocktrack/internal/log"
	"github.com/flocktrack/flocktrack/internal/manager"
	"github.com/flocktrack/flocktrack/internal/repo"
)

const maxBodyBytes = 1 << 20

// Handler holds the managers behind the tenant-facing API surface.
type Handler struct {
	config    *config.Config
	tenants   manager.Tenant
	coops     *manager.CoopManager
	flocks    *manager.FlockManager
	records   *manager.DailyRecordManager
	purchases *manager.PurchaseManager
	stats     *manager.StatsManager
}

func New(cfg *config.Config, r repo.Repo) *Handler {
	return &Handler{
		config:    cfg,
		tenants:   manager.NewTenantManager(r),
		coops:     manager.NewCoopManager(r),
		flocks:    manager.NewFlockManager(r),
		records:   manager.NewDailyRecordManager(r),
		purchases: manager.NewPurchaseManager(r),
		stats:     manager.NewStatsManager(r),
	}
}

func (h *Handler) Tenants() manager.Tenant {
	return h.tenants
}

// Register wires the tenant-scoped routes. Every route registered here
// expects a resolved tenant in the request context; the onboarding route is
// the exception and is registered by the server ahead of tenant resolution.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /me", h.GetMe)

	mux.HandleFunc("POST /coops", h.CreateCoop)
	mux.HandleFunc("GET /coops", h.ListCoops)
	mux.HandleFunc("GET /coops/{id}", h.GetCoop)
	mux.HandleFunc("PUT /coops/{id}", h.UpdateCoop)
	mux.HandleFunc("DELETE /coops/{id}", h.DeleteCoop)

	mux.HandleFunc("POST /flocks", h.CreateFlock)
	mux.HandleFunc("GET /flocks", h.ListFlocks)
	mux.HandleFunc("GET /flocks/{id}", h.GetFlock)
	mux.HandleFunc("PUT /flocks/{id}", h.UpdateFlock)
	mux.HandleFunc("DELETE /flocks/{id}", h.DeleteFlock)

	mux.HandleFunc("POST /daily-records", h.CreateDailyRecord)
	mux.HandleFunc("GET /daily-records", h.ListDailyRecords)

	mux.HandleFunc("POST /purchases", h.CreatePurchase)
	mux.HandleFunc("GET /purchases", h.ListPurchases)

	mux.HandleFunc("GET /stats/summary", h.GetStatsSummary)
}

// listResponse is the envelope for collection endpoints.
type listResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func decodeJSON(r *http.Request, into any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	return dec.Decode(into)
}

func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))

	return id, err == nil
}

func pagination(r *http.Request) (int, int) {
	limit := repo.DefaultLimit

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= repo.DefaultLimit {
			limit = parsed
		}
	}

	offset := 0

	if raw := r.URL.Query().Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			offset = parsed
		}
	}

	return limit, offset
}

func dateParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}

	parsed, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, err
	}

	return &parsed, nil
}

func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	message := apierrors.TransformToAPIError(ctx, err)
	if message.Error.Status >= http.StatusInternalServerError {
		log.Error(ctx, "Request failed", err)
	}

	write.ErrorResponse(ctx, w, message)
}
