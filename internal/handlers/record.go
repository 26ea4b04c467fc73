package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/flocktrack/flocktrack/internal/api/write"
	"github.com/flocktrack/flocktrack/internal/apierrors"
	"github.com/flocktrack/flocktrack/internal/model"
)

func (h *Handler) CreateDailyRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	record := &model.DailyRecord{}

	err := decodeJSON(r, record)
	if err != nil {
		write.ErrorResponse(ctx, w, apierrors.JSONDecodeErrorMessage())
		return
	}

	if record.FlockID == uuid.Nil {
		write.ErrorResponse(ctx, w, apierrors.ValidationErrorMessage("Daily record must reference a flock"))
		return
	}

	if record.RecordDate.IsZero() {
		write.ErrorResponse(ctx, w, apierrors.ValidationErrorMessage("Daily record must carry a record date"))
		return
	}

	err = h.records.CreateRecord(ctx, record)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	write.JSONResponse(ctx, w, http.StatusCreated, record)
}

func (h *Handler) ListDailyRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, offset := pagination(r)

	var flockID *uuid.UUID

	if raw := r.URL.Query().Get("flockId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			write.ErrorResponse(ctx, w, apierrors.ValidationErrorMessage("Invalid flockId filter"))
			return
		}

		flockID = &parsed
	}

	from, err := dateParam(r, "from")
	if err != nil {
		write.ErrorResponse(ctx, w, apierrors.ValidationErrorMessage("Invalid from date, expected YYYY-MM-DD"))
		return
	}

	to, err := dateParam(r, "to")
	if err != nil {
		write.ErrorResponse(ctx, w, apierrors.ValidationErrorMessage("Invalid to date, expected YYYY-MM-DD"))
		return
	}

	records, count, err := h.records.ListRecords(ctx, flockID, from, to, limit, offset)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	write.JSONResponse(ctx, w, http.StatusOK, listResponse[*model.DailyRecord]{Items: records, Count: count})
}
