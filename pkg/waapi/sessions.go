package waapi

import "context"

const defaultSessionLimit = 20

// Sessions manages WhatsApp sessions.
type Sessions struct {
	client *Client
}

// SessionListOptions filters Sessions.List.
type SessionListOptions struct {
	ListOptions
	// Status filters by connection state (connected, disconnected, ...).
	Status string
}

// CreateSessionOptions carries the optional fields of Sessions.Create.
type CreateSessionOptions struct {
	WebhookURL string
}

// SessionUpdate lists the fields Sessions.Update may change. Empty fields
// are left out of the request.
type SessionUpdate struct {
	Name       string
	WebhookURL string
}

// List returns a page of sessions.
func (s *Sessions) List(ctx context.Context, opts *SessionListOptions) (Result, error) {
	if opts == nil {
		opts = &SessionListOptions{}
	}
	query := opts.query(defaultSessionLimit)
	putParam(query, "status", opts.Status)
	return s.client.Get(ctx, "/sessions", query)
}

// Create registers a new session.
func (s *Sessions) Create(ctx context.Context, name string, opts *CreateSessionOptions) (Result, error) {
	if err := requireArg("name", name); err != nil {
		return nil, err
	}
	body := map[string]any{"name": name}
	if opts != nil {
		putString(body, "webhookUrl", opts.WebhookURL)
	}
	return s.client.Post(ctx, "/sessions", body)
}

// Get fetches one session.
func (s *Sessions) Get(ctx context.Context, sessionID string) (Result, error) {
	id, err := escapeID("session id", sessionID)
	if err != nil {
		return nil, err
	}
	return s.client.Get(ctx, "/sessions/"+id, nil)
}

// Update changes the name and/or webhook URL of a session.
func (s *Sessions) Update(ctx context.Context, sessionID string, update SessionUpdate) (Result, error) {
	id, err := escapeID("session id", sessionID)
	if err != nil {
		return nil, err
	}
	body := map[string]any{}
	putString(body, "name", update.Name)
	putString(body, "webhookUrl", update.WebhookURL)
	return s.client.Put(ctx, "/sessions/"+id, body)
}

// Delete removes a session.
func (s *Sessions) Delete(ctx context.Context, sessionID string) (Result, error) {
	id, err := escapeID("session id", sessionID)
	if err != nil {
		return nil, err
	}
	return s.client.Delete(ctx, "/sessions/"+id, nil)
}

// QRCode fetches the pairing QR code of a session.
func (s *Sessions) QRCode(ctx context.Context, sessionID string) (Result, error) {
	id, err := escapeID("session id", sessionID)
	if err != nil {
		return nil, err
	}
	return s.client.Get(ctx, "/sessions/"+id+"/qr", nil)
}

// Reconnect restarts a disconnected session.
func (s *Sessions) Reconnect(ctx context.Context, sessionID string) (Result, error) {
	id, err := escapeID("session id", sessionID)
	if err != nil {
		return nil, err
	}
	return s.client.Post(ctx, "/sessions/"+id+"/reconnect", nil)
}
