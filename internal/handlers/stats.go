package handlers

import (
	"net/http"
	"time"

	"github.com/flocktrack/flocktrack/internal/api/write"
	"github.com/flocktrack/flocktrack/internal/apierrors"
)

const defaultSummaryWindow = 30 * 24 * time.Hour

// GetStatsSummary aggregates production and spend over a date range,
// defaulting to the trailing thirty days.
func (h *Handler) GetStatsSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

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

	if to == nil {
		now := time.Now().UTC().Truncate(24 * time.Hour)
		to = &now
	}

	if from == nil {
		start := to.Add(-defaultSummaryWindow)
		from = &start
	}

	if from.After(*to) {
		write.ErrorResponse(ctx, w, apierrors.ValidationErrorMessage("Range start must not be after range end"))
		return
	}

	summary, err := h.stats.Summarize(ctx, *from, *to)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	write.JSONResponse(ctx, w, http.StatusOK, summary)
}
