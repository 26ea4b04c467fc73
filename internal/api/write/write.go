package write

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/flocktrack/flocktrack/internal/apierrors"
	"github.com/flocktrack/flocktrack/internal/log"
	"github.com/flocktrack/flocktrack/internal/tenantctx"
)

// ErrorResponse writes an error response to the client and logs the error
func ErrorResponse(ctx context.Context, w http.ResponseWriter, errorResponse apierrors.ErrorMessage) {
	requestID, err := tenantctx.GetRequestID(ctx)
	if err == nil {
		errorResponse.Error.RequestID = &requestID
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(errorResponse.Error.Status)

	enc := json.NewEncoder(w)

	err = enc.Encode(&errorResponse)
	if err != nil {
		log.Error(ctx, "Failed to encode error response", err)
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)

		return
	}
}

// JSONResponse writes a success payload with the given status code.
func JSONResponse(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if payload == nil {
		return
	}

	enc := json.NewEncoder(w)

	err := enc.Encode(payload)
	if err != nil {
		log.Error(ctx, "Failed to encode response", err)
	}
}
