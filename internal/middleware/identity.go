package middleware

import (
	"errors"
	"net/http"

	"github.com/openkcm/common-sdk/pkg/auth"

	"github.com/flocktrack/flocktrack/internal/log"
	"github.com/flocktrack/flocktrack/internal/tenantctx"
)

var (
	ErrNoClientDataHeader = errors.New("no client data header found")
	ErrDecodeClientData   = errors.New("failed to decode client data from header")
)

// IdentityMiddleware extracts the verified identity forwarded by the
// upstream auth gateway and adds it to the request context. Token signature
// and expiry checks happen at the gateway; by the time the client data
// header reaches this service its subject claim is already verified.
// Requests without the header pass through anonymous.
func IdentityMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientData, err := extractClientData(r)
			if err != nil {
				logErrorAndContinue(r, err)
				next.ServeHTTP(w, r)

				return
			}

			ctx := tenantctx.WithIdentity(r.Context(), tenantctx.Identity{
				Subject: clientData.Identifier,
				Email:   clientData.Email,
			})

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractClientData retrieves and decodes client data from request headers
func extractClientData(r *http.Request) (*auth.ClientData, error) {
	clientDataHeader := r.Header.Get(auth.HeaderClientData)
	if clientDataHeader == "" {
		return nil, ErrNoClientDataHeader
	}

	clientData, err := auth.DecodeFrom(clientDataHeader)
	if err != nil {
		return nil, ErrDecodeClientData
	}

	return clientData, nil
}

func logErrorAndContinue(r *http.Request, err error) {
	if errors.Is(err, ErrNoClientDataHeader) {
		log.Debug(r.Context(), err.Error())
		return
	}

	log.Warn(r.Context(), err.Error())
}
