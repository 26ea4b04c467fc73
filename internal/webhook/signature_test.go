package webhook_test

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flocktrack/flocktrack/internal/webhook"
)

const testSecret = "whsec_dGhpcy1pcy1hLXRlc3Qtc2lnbmluZy1rZXk="

func signedHeaders(t *testing.T, v *webhook.Verifier, msgID string, ts time.Time, body []byte) http.Header {
	t.Helper()

	timestamp := strconv.FormatInt(ts.Unix(), 10)

	headers := http.Header{}
	headers.Set(webhook.HeaderMessageID, msgID)
	headers.Set(webhook.HeaderTimestamp, timestamp)
	headers.Set(webhook.HeaderSignature, v.Sign(msgID, timestamp, body))

	return headers
}

func TestNewVerifier(t *testing.T) {
	t.Run("accepts prefixed secret", func(t *testing.T) {
		_, err := webhook.NewVerifier(testSecret, time.Minute)
		assert.NoError(t, err)
	})

	t.Run("accepts bare base64 secret", func(t *testing.T) {
		_, err := webhook.NewVerifier(base64.StdEncoding.EncodeToString([]byte("key")), time.Minute)
		assert.NoError(t, err)
	})

	t.Run("rejects invalid base64", func(t *testing.T) {
		_, err := webhook.NewVerifier("whsec_%%%", time.Minute)
		assert.ErrorIs(t, err, webhook.ErrInvalidSecret)
	})

	t.Run("rejects empty secret", func(t *testing.T) {
		_, err := webhook.NewVerifier("whsec_", time.Minute)
		assert.ErrorIs(t, err, webhook.ErrInvalidSecret)
	})
}

func TestVerify(t *testing.T) {
	v, err := webhook.NewVerifier(testSecret, 5*time.Minute)
	require.NoError(t, err)

	body := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)

	t.Run("accepts valid signature", func(t *testing.T) {
		headers := signedHeaders(t, v, "msg_1", time.Now(), body)

		assert.NoError(t, v.Verify(body, headers))
	})

	t.Run("rejects tampered body", func(t *testing.T) {
		headers := signedHeaders(t, v, "msg_1", time.Now(), body)

		tampered := append([]byte(nil), body...)
		tampered[0] ^= 0x01

		assert.ErrorIs(t, v.Verify(tampered, headers), webhook.ErrInvalidSignature)
	})

	t.Run("rejects tampered message id", func(t *testing.T) {
		headers := signedHeaders(t, v, "msg_1", time.Now(), body)
		headers.Set(webhook.HeaderMessageID, "msg_2")

		assert.ErrorIs(t, v.Verify(body, headers), webhook.ErrInvalidSignature)
	})

	t.Run("rejects signature from a different key", func(t *testing.T) {
		other, err := webhook.NewVerifier("whsec_b3RoZXIta2V5", 5*time.Minute)
		require.NoError(t, err)

		headers := signedHeaders(t, other, "msg_1", time.Now(), body)

		assert.ErrorIs(t, v.Verify(body, headers), webhook.ErrInvalidSignature)
	})

	t.Run("rejects missing headers", func(t *testing.T) {
		for _, header := range []string{
			webhook.HeaderMessageID,
			webhook.HeaderTimestamp,
			webhook.HeaderSignature,
		} {
			headers := signedHeaders(t, v, "msg_1", time.Now(), body)
			headers.Del(header)

			assert.ErrorIs(t, v.Verify(body, headers), webhook.ErrMissingHeaders, header)
		}
	})

	t.Run("rejects stale timestamp", func(t *testing.T) {
		headers := signedHeaders(t, v, "msg_1", time.Now().Add(-6*time.Minute), body)

		assert.ErrorIs(t, v.Verify(body, headers), webhook.ErrInvalidTimestamp)
	})

	t.Run("rejects future timestamp outside tolerance", func(t *testing.T) {
		headers := signedHeaders(t, v, "msg_1", time.Now().Add(6*time.Minute), body)

		assert.ErrorIs(t, v.Verify(body, headers), webhook.ErrInvalidTimestamp)
	})

	t.Run("accepts skew within tolerance", func(t *testing.T) {
		headers := signedHeaders(t, v, "msg_1", time.Now().Add(-4*time.Minute), body)

		assert.NoError(t, v.Verify(body, headers))
	})

	t.Run("rejects malformed timestamp", func(t *testing.T) {
		headers := signedHeaders(t, v, "msg_1", time.Now(), body)
		headers.Set(webhook.HeaderTimestamp, "not-a-unix-time")

		assert.ErrorIs(t, v.Verify(body, headers), webhook.ErrInvalidTimestamp)
	})

	t.Run("accepts any valid entry in a signature list", func(t *testing.T) {
		headers := signedHeaders(t, v, "msg_1", time.Now(), body)
		valid := headers.Get(webhook.HeaderSignature)
		headers.Set(webhook.HeaderSignature, "v1,Zm9yZ2VkCg== "+valid)

		assert.NoError(t, v.Verify(body, headers))
	})

	t.Run("ignores entries of unknown versions", func(t *testing.T) {
		headers := signedHeaders(t, v, "msg_1", time.Now(), body)
		valid := headers.Get(webhook.HeaderSignature)
		headers.Set(webhook.HeaderSignature, "v2,"+valid[3:])

		assert.ErrorIs(t, v.Verify(body, headers), webhook.ErrInvalidSignature)
	})
}
