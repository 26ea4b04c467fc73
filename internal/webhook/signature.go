package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/flocktrack/flocktrack/internal/errs"
)

// Identity-provider webhook signature headers. The provider signs every
// delivery with a message id, a unix timestamp and one or more versioned
// HMAC signatures over `id.timestamp.body`.
const (
	HeaderMessageID = "webhook-id"
	HeaderTimestamp = "webhook-timestamp"
	HeaderSignature = "webhook-signature"

	secretPrefix     = "whsec_"
	signatureVersion = "v1"
)

var (
	ErrMissingHeaders   = errors.New("missing required webhook signature headers")
	ErrInvalidSignature = errors.New("webhook signature mismatch")
	ErrInvalidTimestamp = errors.New("webhook timestamp missing, malformed or outside tolerance")
	ErrInvalidSecret    = errors.New("webhook signing secret is not valid")
)

// Verifier checks the authenticity of inbound webhook deliveries against the
// shared signing secret. It holds no per-call state; Verify is a pure
// function of (body, headers, secret, clock).
type Verifier struct {
	key       []byte
	tolerance time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// NewVerifier parses the provider secret (its `whsec_<base64>` form) and
// returns a Verifier enforcing the given timestamp tolerance.
func NewVerifier(secret string, tolerance time.Duration) (*Verifier, error) {
	encoded := strings.TrimPrefix(secret, secretPrefix)

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errs.Wrap(ErrInvalidSecret, err)
	}

	if len(key) == 0 {
		return nil, ErrInvalidSecret
	}

	return &Verifier{
		key:       key,
		tolerance: tolerance,
		now:       time.Now,
	}, nil
}

// Verify accepts or rejects a delivery. Any missing header rejects with
// ErrMissingHeaders; any mismatch, including a single tampered byte of body
// or headers, rejects with ErrInvalidSignature.
func (v *Verifier) Verify(body []byte, headers http.Header) error {
	msgID := headers.Get(HeaderMessageID)
	timestamp := headers.Get(HeaderTimestamp)
	signatures := headers.Get(HeaderSignature)

	if msgID == "" || timestamp == "" || signatures == "" {
		return ErrMissingHeaders
	}

	err := v.verifyTimestamp(timestamp)
	if err != nil {
		return err
	}

	expected := v.sign(msgID, timestamp, body)

	// The header carries a space-separated list of `version,signature`
	// entries so the provider can rotate secrets. Any valid v1 entry accepts.
	for _, entry := range strings.Split(signatures, " ") {
		version, sig, found := strings.Cut(entry, ",")
		if !found || version != signatureVersion {
			continue
		}

		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}

	return ErrInvalidSignature
}

// Sign produces the `v1,<base64>` signature entry for a message. It exists
// for provider-side simulation in tests and local tooling.
func (v *Verifier) Sign(msgID, timestamp string, body []byte) string {
	return signatureVersion + "," + v.sign(msgID, timestamp, body)
}

func (v *Verifier) sign(msgID, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, v.key)
	fmt.Fprintf(mac, "%s.%s.", msgID, timestamp)
	mac.Write(body)

	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (v *Verifier) verifyTimestamp(timestamp string) error {
	unix, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return errs.Wrap(ErrInvalidTimestamp, err)
	}

	diff := v.now().UTC().Sub(time.Unix(unix, 0))
	if diff < 0 {
		diff = -diff
	}

	if diff > v.tolerance {
		return ErrInvalidTimestamp
	}

	return nil
}
