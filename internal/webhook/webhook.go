// Package webhook delivers signed events to operator configured endpoints.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// HeaderSignature carries "sha256=" + hex HMAC-SHA256 of the body, keyed with the webhook secret.
	HeaderSignature = "X-Webhook-Signature"
	// HeaderEvent carries the event type.
	HeaderEvent = "X-Webhook-Event"
	// HeaderDelivery carries the unique event id.
	HeaderDelivery = "X-Webhook-Delivery"

	// EventTest is sent by the test endpoints.
	EventTest = "webhook.test"

	// DefaultTimeout bounds a single delivery.
	DefaultTimeout = 10 * time.Second

	signaturePrefix = "sha256="
)

// Event is the JSON body of a delivery.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	Data      any       `json:"data,omitempty"`
}

// Result reports one delivery attempt.
type Result struct {
	Delivered  bool   `json:"delivered"`
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error,omitempty"`
}

// Sender posts events. The zero value is not usable, use NewSender.
type Sender struct {
	client *http.Client
}

// NewSender creates a sender with the given per delivery timeout, DefaultTimeout when zero.
func NewSender(timeout time.Duration) *Sender {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Sender{client: &http.Client{Timeout: timeout}}
}

// NewTestEvent builds the event sent by the test endpoints.
func NewTestEvent(resource string, webhookID uint64) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      EventTest,
		CreatedAt: time.Now().UTC(),
		Data: map[string]any{
			"resource":  resource,
			"webhookId": webhookID,
			"message":   "This is a test delivery.",
		},
	}
}

// Sign returns the signature header value for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// Send posts ev to url. Any 2xx answer counts as delivered. Failures are reported in the result, not as error.
func (s *Sender) Send(ctx context.Context, url, secret string, ev Event) Result {
	body, err := json.Marshal(ev)
	if err != nil {
		return Result{Error: fmt.Sprintf("failed to encode event: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{Error: fmt.Sprintf("invalid webhook url: %v", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "GoLiveChat-Admin-Webhook")
	req.Header.Set(HeaderEvent, ev.Type)
	req.Header.Set(HeaderDelivery, ev.ID)

	if secret != "" {
		req.Header.Set(HeaderSignature, Sign(secret, body))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Str("event", ev.Type).Msg("webhook delivery failed")

		return Result{Error: err.Error()}
	}

	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10)) //nolint:mnd

	res := Result{
		Delivered:  resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices,
		StatusCode: resp.StatusCode,
	}

	if !res.Delivered {
		res.Error = fmt.Sprintf("endpoint answered %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))

		log.Warn().Str("url", url).Int("status", resp.StatusCode).Str("event", ev.Type).
			Msg("webhook endpoint returned error status")
	}

	return res
}
