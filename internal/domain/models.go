package domain

import (
	"encoding/json"
	"time"
)

// Domain contains core models shared by the relay and the publishers.

// Delivery is one webhook call received from the platform.
type Delivery struct {
	// ID is derived from the webhook id, event and data, so a platform retry
	// maps to the same ID even though its timestamp differs.
	ID        string          `json:"id"`
	WebhookID string          `json:"webhook_id,omitempty"`
	Event     string          `json:"event"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}
