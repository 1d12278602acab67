package waapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Headers set by the platform on every webhook delivery.
const (
	HeaderWebhookSignature = "X-Webhook-Signature"
	HeaderWebhookEvent     = "X-Webhook-Event"
	HeaderWebhookID        = "X-Webhook-ID"
)

var (
	ErrEmptySecret       = errors.New("waapi: webhook secret is empty")
	ErrEmptySignature    = errors.New("waapi: webhook signature is empty")
	ErrSignatureMismatch = errors.New("waapi: webhook signature mismatch")
)

// WebhookEvent is the envelope posted to a webhook URL.
type WebhookEvent struct {
	Event     string          `json:"event"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Sign returns the hex HMAC-SHA256 of body under secret, as sent in
// X-Webhook-Signature.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a delivery signature against the raw request body.
// A leading "sha256=" is tolerated.
func VerifySignature(secret, body []byte, signature string) error {
	if len(secret) == 0 {
		return ErrEmptySecret
	}
	signature = strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	if signature == "" {
		return ErrEmptySignature
	}
	got, err := hex.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("waapi: invalid hex signature: %w", err)
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	if subtle.ConstantTimeCompare(mac.Sum(nil), got) != 1 {
		return ErrSignatureMismatch
	}
	return nil
}

// ParseWebhookEvent decodes a delivery body. The event name is mandatory.
func ParseWebhookEvent(body []byte) (WebhookEvent, error) {
	var evt WebhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return WebhookEvent{}, fmt.Errorf("waapi: decode webhook event: %w", err)
	}
	evt.Event = strings.TrimSpace(evt.Event)
	if evt.Event == "" {
		return WebhookEvent{}, errors.New("waapi: webhook event name is empty")
	}
	return evt, nil
}
