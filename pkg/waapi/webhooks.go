package waapi

import (
	"context"
	"fmt"
)

// Webhook event names emitted by the platform.
const (
	EventMessageReceived     = "message.received"
	EventMessageStatus       = "message.status"
	EventSessionConnected    = "session.connected"
	EventSessionDisconnected = "session.disconnected"
	EventSessionQR           = "session.qr"
)

// Webhooks manages webhook subscriptions.
type Webhooks struct {
	client *Client
}

// CreateWebhookOptions carries the optional fields of Webhooks.Create.
type CreateWebhookOptions struct {
	// Active defaults to true when nil.
	Active *bool
}

// WebhookUpdate lists the fields Webhooks.Update may change. Nil or empty
// fields are left out of the request.
type WebhookUpdate struct {
	URL    string
	Events []string
	Active *bool
}

// List returns every webhook of the account.
func (w *Webhooks) List(ctx context.Context) (Result, error) {
	return w.client.Get(ctx, "/webhooks", nil)
}

// Create subscribes url to the given events.
func (w *Webhooks) Create(ctx context.Context, url string, events []string, opts *CreateWebhookOptions) (Result, error) {
	if err := requireArg("url", url); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: events", ErrMissingArgument)
	}
	active := true
	if opts != nil && opts.Active != nil {
		active = *opts.Active
	}
	return w.client.Post(ctx, "/webhooks", map[string]any{
		"url":    url,
		"events": events,
		"active": active,
	})
}

// Get fetches one webhook.
func (w *Webhooks) Get(ctx context.Context, webhookID string) (Result, error) {
	id, err := escapeID("webhook id", webhookID)
	if err != nil {
		return nil, err
	}
	return w.client.Get(ctx, "/webhooks/"+id, nil)
}

// Update changes a webhook subscription.
func (w *Webhooks) Update(ctx context.Context, webhookID string, update WebhookUpdate) (Result, error) {
	id, err := escapeID("webhook id", webhookID)
	if err != nil {
		return nil, err
	}
	body := map[string]any{}
	putString(body, "url", update.URL)
	if len(update.Events) > 0 {
		body["events"] = update.Events
	}
	if update.Active != nil {
		body["active"] = *update.Active
	}
	return w.client.Put(ctx, "/webhooks/"+id, body)
}

// Delete removes a webhook.
func (w *Webhooks) Delete(ctx context.Context, webhookID string) (Result, error) {
	id, err := escapeID("webhook id", webhookID)
	if err != nil {
		return nil, err
	}
	return w.client.Delete(ctx, "/webhooks/"+id, nil)
}

// Test asks the platform to deliver a test event.
func (w *Webhooks) Test(ctx context.Context, webhookID string) (Result, error) {
	return w.action(ctx, webhookID, "test")
}

// RegenerateSecret rotates the signing secret of a webhook.
func (w *Webhooks) RegenerateSecret(ctx context.Context, webhookID string) (Result, error) {
	return w.action(ctx, webhookID, "regenerate-secret")
}

// ResetFailures clears the failure counter that auto-disables a webhook.
func (w *Webhooks) ResetFailures(ctx context.Context, webhookID string) (Result, error) {
	return w.action(ctx, webhookID, "reset-failures")
}

// Logs returns a page of delivery logs.
func (w *Webhooks) Logs(ctx context.Context, webhookID string, opts *ListOptions) (Result, error) {
	id, err := escapeID("webhook id", webhookID)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &ListOptions{}
	}
	return w.client.Get(ctx, "/webhooks/"+id+"/logs", opts.query(defaultListLimit))
}

func (w *Webhooks) action(ctx context.Context, webhookID, action string) (Result, error) {
	id, err := escapeID("webhook id", webhookID)
	if err != nil {
		return nil, err
	}
	return w.client.Post(ctx, "/webhooks/"+id+"/"+action, nil)
}
