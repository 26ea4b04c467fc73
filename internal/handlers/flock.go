package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/flocktrack/flocktrack/internal/api/write"
	"github.com/flocktrack/flocktrack/internal/apierrors"
	"github.com/flocktrack/flocktrack/internal/model"
	"github.com/flocktrack/flocktrack/internal/repo"
)

func (h *Handler) CreateFlock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	flock := &model.Flock{}

	err := decodeJSON(r, flock)
	if err != nil {
		write.ErrorResponse(ctx, w, apierrors.JSONDecodeErrorMessage())
		return
	}

	if flock.CoopID == uuid.Nil {
		write.ErrorResponse(ctx, w, apierrors.ValidationErrorMessage("Flock must reference a coop"))
		return
	}

	err = h.flocks.CreateFlock(ctx, flock)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	write.JSONResponse(ctx, w, http.StatusCreated, flock)
}

func (h *Handler) ListFlocks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, offset := pagination(r)

	var coopID *uuid.UUID

	if raw := r.URL.Query().Get("coopId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			write.ErrorResponse(ctx, w, apierrors.ValidationErrorMessage("Invalid coopId filter"))
			return
		}

		coopID = &parsed
	}

	flocks, count, err := h.flocks.ListFlocks(ctx, coopID, limit, offset)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	write.JSONResponse(ctx, w, http.StatusOK, listResponse[*model.Flock]{Items: flocks, Count: count})
}

func (h *Handler) GetFlock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(r)
	if !ok {
		write.ErrorResponse(ctx, w, apierrors.ValidationErrorMessage("Invalid flock id"))
		return
	}

	flock, err := h.flocks.GetFlock(ctx, id)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	write.JSONResponse(ctx, w, http.StatusOK, flock)
}

func (h *Handler) UpdateFlock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(r)
	if !ok {
		write.ErrorResponse(ctx, w, apierrors.ValidationErrorMessage("Invalid flock id"))
		return
	}

	flock := &model.Flock{}

	err := decodeJSON(r, flock)
	if err != nil {
		write.ErrorResponse(ctx, w, apierrors.JSONDecodeErrorMessage())
		return
	}

	flock.ID = id

	found, err := h.flocks.UpdateFlock(ctx, flock)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if !found {
		respondError(ctx, w, repo.ErrNotFound)
		return
	}

	write.JSONResponse(ctx, w, http.StatusOK, flock)
}

func (h *Handler) DeleteFlock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(r)
	if !ok {
		write.ErrorResponse(ctx, w, apierrors.ValidationErrorMessage("Invalid flock id"))
		return
	}

	found, err := h.flocks.DeleteFlock(ctx, id)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if !found {
		respondError(ctx, w, repo.ErrNotFound)
		return
	}

	write.JSONResponse(ctx, w, http.StatusNoContent, nil)
}
