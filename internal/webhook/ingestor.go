package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/flocktrack/flocktrack/internal/apierrors"
	"github.com/flocktrack/flocktrack/internal/api/write"
	"github.com/flocktrack/flocktrack/internal/log"
	"github.com/flocktrack/flocktrack/internal/model"
)

// Event types emitted by the identity provider that materialize tenants.
const (
	EventIdentityCreated = "user.created"
	EventIdentityUpdated = "user.updated"
)

// maxBodyBytes caps webhook payload reads. Identity events are small.
const maxBodyBytes = 1 << 20

// TenantSyncer is the downstream consumer of verified identity events.
type TenantSyncer interface {
	SyncTenant(ctx context.Context, externalSubjectID, email string) (*model.Tenant, error)
}

// envelope is the provider's outer event shape.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type identityData struct {
	ID                    string         `json:"id"`
	PrimaryEmailAddressID string         `json:"primary_email_address_id"`
	EmailAddresses        []emailAddress `json:"email_addresses"`
}

type emailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// Ingestor verifies, parses and dispatches identity-provider webhooks.
//
// Response contract: 401 for any authenticity failure, 400 for a body that
// does not parse, 200 for everything else, unrecognized event types and
// failed syncs included. The provider redelivers on non-2xx, and neither
// schema evolution on its side nor our internal sync outcomes may trigger
// retry storms.
type Ingestor struct {
	verifier *Verifier
	syncer   TenantSyncer
}

func NewIngestor(verifier *Verifier, syncer TenantSyncer) *Ingestor {
	return &Ingestor{
		verifier: verifier,
		syncer:   syncer,
	}
}

func (i *Ingestor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		log.Error(ctx, "failed reading webhook body", err)
		write.ErrorResponse(ctx, w, apierrors.WebhookUnauthorizedMessage())
		observeEvent(resultRejected)

		return
	}

	err = i.verifier.Verify(body, r.Header)
	if err != nil {
		// Potential spoofing attempt; logged, never retried from our side.
		log.Warn(ctx, "webhook rejected", log.ErrorAttr(err))
		write.ErrorResponse(ctx, w, apierrors.WebhookUnauthorizedMessage())
		observeEvent(resultRejected)

		return
	}

	var event envelope

	err = json.Unmarshal(body, &event)
	if err != nil {
		log.Error(ctx, "webhook body does not parse", err)
		write.ErrorResponse(ctx, w, apierrors.WebhookMalformedMessage())
		observeEvent(resultMalformed)

		return
	}

	ctx = log.InjectWebhookEvent(ctx, r.Header.Get(HeaderMessageID), event.Type)

	switch event.Type {
	case EventIdentityCreated, EventIdentityUpdated:
		i.dispatch(ctx, event)
	default:
		log.Info(ctx, "ignoring unrecognized webhook event type")
		observeEvent(resultSkipped)
	}

	// Verified deliveries are always acknowledged with 200; sync outcomes
	// are an internal concern and must not surface as webhook failures.
	w.WriteHeader(http.StatusOK)
}

func (i *Ingestor) dispatch(ctx context.Context, event envelope) {
	var data identityData

	err := json.Unmarshal(event.Data, &data)
	if err != nil {
		log.Error(ctx, "identity event data does not parse", err)
		observeEvent(resultMalformed)

		return
	}

	_, err = i.syncer.SyncTenant(ctx, data.ID, primaryEmail(data))
	if err != nil {
		log.Error(ctx, "tenant sync failed", err)
		observeEvent(resultFailed)

		return
	}

	log.Info(ctx, "tenant synced from identity event")
	observeEvent(resultSynced)
}

// primaryEmail picks the address whose id matches the event's declared
// primary email id; when none matches the tenant is synced without one.
func primaryEmail(data identityData) string {
	for _, addr := range data.EmailAddresses {
		if addr.ID == data.PrimaryEmailAddressID {
			return addr.EmailAddress
		}
	}

	return ""
}
