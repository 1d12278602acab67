package waapi

import (
	"context"
	"fmt"
)

// Contacts manages the address book of a session.
type Contacts struct {
	client *Client
}

// ContactListOptions filters Contacts.List.
type ContactListOptions struct {
	ListOptions
	SessionID string
	Search    string
}

// CreateContactOptions carries the optional fields of Contacts.Create.
type CreateContactOptions struct {
	Email string
}

// ContactUpdate lists the fields Contacts.Update may change.
type ContactUpdate struct {
	Name  string
	Email string
}

// ImportContact is one entry of a bulk import.
type ImportContact struct {
	Phone string
	Name  string
	Email string
}

// List returns a page of contacts.
func (c *Contacts) List(ctx context.Context, opts *ContactListOptions) (Result, error) {
	if opts == nil {
		opts = &ContactListOptions{}
	}
	query := opts.query(defaultListLimit)
	putParam(query, "sessionId", opts.SessionID)
	putParam(query, "search", opts.Search)
	return c.client.Get(ctx, "/contacts", query)
}

// Create adds a contact to a session.
func (c *Contacts) Create(ctx context.Context, sessionID, phone, name string, opts *CreateContactOptions) (Result, error) {
	if err := requireArgs("session id", sessionID, "phone", phone, "name", name); err != nil {
		return nil, err
	}
	body := map[string]any{
		"sessionId": sessionID,
		"phone":     phone,
		"name":      name,
	}
	if opts != nil {
		putString(body, "email", opts.Email)
	}
	return c.client.Post(ctx, "/contacts", body)
}

// Get fetches one contact.
func (c *Contacts) Get(ctx context.Context, contactID string) (Result, error) {
	id, err := escapeID("contact id", contactID)
	if err != nil {
		return nil, err
	}
	return c.client.Get(ctx, "/contacts/"+id, nil)
}

// Update changes the name and/or email of a contact.
func (c *Contacts) Update(ctx context.Context, contactID string, update ContactUpdate) (Result, error) {
	id, err := escapeID("contact id", contactID)
	if err != nil {
		return nil, err
	}
	body := map[string]any{}
	putString(body, "name", update.Name)
	putString(body, "email", update.Email)
	return c.client.Put(ctx, "/contacts/"+id, body)
}

// Delete removes a contact.
func (c *Contacts) Delete(ctx context.Context, contactID string) (Result, error) {
	id, err := escapeID("contact id", contactID)
	if err != nil {
		return nil, err
	}
	return c.client.Delete(ctx, "/contacts/"+id, nil)
}

// Sync pulls the contact list of a session from WhatsApp.
func (c *Contacts) Sync(ctx context.Context, sessionID string) (Result, error) {
	if err := requireArg("session id", sessionID); err != nil {
		return nil, err
	}
	return c.client.Post(ctx, "/contacts/sync", map[string]any{"sessionId": sessionID})
}

// Import bulk-creates contacts in a session.
func (c *Contacts) Import(ctx context.Context, sessionID string, contacts []ImportContact) (Result, error) {
	if err := requireArg("session id", sessionID); err != nil {
		return nil, err
	}
	if len(contacts) == 0 {
		return nil, fmt.Errorf("%w: contacts", ErrMissingArgument)
	}
	entries := make([]map[string]any, 0, len(contacts))
	for i, ct := range contacts {
		if err := requireArgs("phone", ct.Phone, "name", ct.Name); err != nil {
			return nil, fmt.Errorf("contacts[%d]: %w", i, err)
		}
		entry := map[string]any{"phone": ct.Phone, "name": ct.Name}
		putString(entry, "email", ct.Email)
		entries = append(entries, entry)
	}
	return c.client.Post(ctx, "/contacts/import", map[string]any{
		"sessionId": sessionID,
		"contacts":  entries,
	})
}

// Export downloads every contact of a session.
func (c *Contacts) Export(ctx context.Context, sessionID string) (Result, error) {
	if err := requireArg("session id", sessionID); err != nil {
		return nil, err
	}
	return c.client.Get(ctx, "/contacts/export", map[string]string{"sessionId": sessionID})
}
