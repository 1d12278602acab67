package publishers

import (
	"time"

	"github.com/samvad-hq/waplatform-go/internal/domain"
)

// Event represents the payload published downstream.
type Event struct {
	Delivery   domain.Delivery `json:"delivery"`
	ReceivedAt time.Time       `json:"received_at"`
}

// NewEvent wraps a webhook delivery for publishing.
func NewEvent(d domain.Delivery) Event {
	return Event{
		Delivery:   d,
		ReceivedAt: time.Now().UTC(),
	}
}

// attributes returns the routing attributes attached by queue publishers.
// Empty values are omitted.
func (e Event) attributes() map[string]string {
	attrs := make(map[string]string, 3)
	if e.Delivery.Event != "" {
		attrs["event"] = e.Delivery.Event
	}
	if e.Delivery.ID != "" {
		attrs["delivery_id"] = e.Delivery.ID
	}
	if e.Delivery.WebhookID != "" {
		attrs["webhook_id"] = e.Delivery.WebhookID
	}
	return attrs
}
