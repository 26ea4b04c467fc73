package handlers

import (
	"net/http"

	"github.com/flocktrack/flocktrack/internal/api/write"
	"github.com/flocktrack/flocktrack/internal/apierrors"
	"github.com/flocktrack/flocktrack/internal/model"
	"github.com/flocktrack/flocktrack/internal/repo"
)

func (h *Handler) CreateCoop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	coop := &model.Coop{}

	err := decodeJSON(r, coop)
	if err != nil {
		write.ErrorResponse(ctx, w, apierrors.JSONDecodeErrorMessage())
		return
	}

	if coop.Name == "" {
		write.ErrorResponse(ctx, w, apierrors.ValidationErrorMessage("Coop name must not be empty"))
		return
	}

	err = h.coops.CreateCoop(ctx, coop)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	write.JSONResponse(ctx, w, http.StatusCreated, coop)
}

func (h *Handler) ListCoops(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, offset := pagination(r)

	coops, count, err := h.coops.ListCoops(ctx, limit, offset)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	write.JSONResponse(ctx, w, http.StatusOK, listResponse[*model.Coop]{Items: coops, Count: count})
}

func (h *Handler) GetCoop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(r)
	if !ok {
		write.ErrorResponse(ctx, w, apierrors.ValidationErrorMessage("Invalid coop id"))
		return
	}

	coop, err := h.coops.GetCoop(ctx, id)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	write.JSONResponse(ctx, w, http.StatusOK, coop)
}

func (h *Handler) UpdateCoop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(r)
	if !ok {
		write.ErrorResponse(ctx, w, apierrors.ValidationErrorMessage("Invalid coop id"))
		return
	}

	coop := &model.Coop{}

	err := decodeJSON(r, coop)
	if err != nil {
		write.ErrorResponse(ctx, w, apierrors.JSONDecodeErrorMessage())
		return
	}

	coop.ID = id

	found, err := h.coops.UpdateCoop(ctx, coop)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if !found {
		respondError(ctx, w, repo.ErrNotFound)
		return
	}

	write.JSONResponse(ctx, w, http.StatusOK, coop)
}

func (h *Handler) DeleteCoop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := pathID(r)
	if !ok {
		write.ErrorResponse(ctx, w, apierrors.ValidationErrorMessage("Invalid coop id"))
		return
	}

	found, err := h.coops.DeleteCoop(ctx, id)
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
