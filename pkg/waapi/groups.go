package waapi

import (
	"context"
	"fmt"
)

// Groups manages WhatsApp groups.
type Groups struct {
	client *Client
}

// GroupListOptions filters Groups.List.
type GroupListOptions struct {
	ListOptions
	SessionID string
}

// List returns a page of groups.
func (g *Groups) List(ctx context.Context, opts *GroupListOptions) (Result, error) {
	if opts == nil {
		opts = &GroupListOptions{}
	}
	query := opts.query(defaultListLimit)
	putParam(query, "sessionId", opts.SessionID)
	return g.client.Get(ctx, "/groups", query)
}

// Create opens a new group with the given participants.
func (g *Groups) Create(ctx context.Context, sessionID, name string, participants []string) (Result, error) {
	if err := requireArgs("session id", sessionID, "name", name); err != nil {
		return nil, err
	}
	if err := requireParticipants(participants); err != nil {
		return nil, err
	}
	return g.client.Post(ctx, "/groups", map[string]any{
		"sessionId":    sessionID,
		"name":         name,
		"participants": participants,
	})
}

// Get fetches one group.
func (g *Groups) Get(ctx context.Context, groupID string) (Result, error) {
	id, err := escapeID("group id", groupID)
	if err != nil {
		return nil, err
	}
	return g.client.Get(ctx, "/groups/"+id, nil)
}

// Update renames a group.
func (g *Groups) Update(ctx context.Context, groupID, name string) (Result, error) {
	id, err := escapeID("group id", groupID)
	if err != nil {
		return nil, err
	}
	if err := requireArg("name", name); err != nil {
		return nil, err
	}
	return g.client.Put(ctx, "/groups/"+id, map[string]any{"name": name})
}

// Sync pulls the groups of a session from WhatsApp.
func (g *Groups) Sync(ctx context.Context, sessionID string) (Result, error) {
	if err := requireArg("session id", sessionID); err != nil {
		return nil, err
	}
	return g.client.Post(ctx, "/groups/sync", map[string]any{"sessionId": sessionID})
}

// AddParticipants adds phone numbers to a group.
func (g *Groups) AddParticipants(ctx context.Context, groupID string, participants []string) (Result, error) {
	id, err := escapeID("group id", groupID)
	if err != nil {
		return nil, err
	}
	if err := requireParticipants(participants); err != nil {
		return nil, err
	}
	return g.client.Post(ctx, "/groups/"+id+"/participants", map[string]any{"participants": participants})
}

// RemoveParticipants removes phone numbers from a group. The list travels
// in the DELETE body.
func (g *Groups) RemoveParticipants(ctx context.Context, groupID string, participants []string) (Result, error) {
	id, err := escapeID("group id", groupID)
	if err != nil {
		return nil, err
	}
	if err := requireParticipants(participants); err != nil {
		return nil, err
	}
	return g.client.Delete(ctx, "/groups/"+id+"/participants", map[string]any{"participants": participants})
}

// Leave makes the session leave a group.
func (g *Groups) Leave(ctx context.Context, groupID string) (Result, error) {
	id, err := escapeID("group id", groupID)
	if err != nil {
		return nil, err
	}
	return g.client.Post(ctx, "/groups/"+id+"/leave", nil)
}

func requireParticipants(participants []string) error {
	if len(participants) == 0 {
		return fmt.Errorf("%w: participants", ErrMissingArgument)
	}
	return nil
}
