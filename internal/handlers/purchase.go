package handlers

import (
	"net/http"

	"github.com/flocktrack/flocktrack/internal/api/write"
	"github.com/flocktrack/flocktrack/internal/apierrors"
	"github.com/flocktrack/flocktrack/internal/model"
)

func (h *Handler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	purchase := &model.Purchase{}

	err := decodeJSON(r, purchase)
	if err != nil {
		write.ErrorResponse(ctx, w, apierrors.JSONDecodeErrorMessage())
		return
	}

	if purchase.Category == "" {
		write.ErrorResponse(ctx, w, apierrors.ValidationErrorMessage("Purchase category must not be empty"))
		return
	}

	if purchase.AmountCents <= 0 {
		write.ErrorResponse(ctx, w, apierrors.ValidationErrorMessage("Purchase amount must be positive"))
		return
	}

	err = h.purchases.CreatePurchase(ctx, purchase)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	write.JSONResponse(ctx, w, http.StatusCreated, purchase)
}

func (h *Handler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, offset := pagination(r)

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

	purchases, count, err := h.purchases.ListPurchases(ctx, from, to, limit, offset)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	write.JSONResponse(ctx, w, http.StatusOK, listResponse[*model.Purchase]{Items: purchases, Count: count})
}
