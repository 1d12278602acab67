package waapi

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samvad-hq/waplatform-go/pkg/httpclient"
)

// Media type values accepted by the platform.
const (
	MediaImage    = "image"
	MediaVideo    = "video"
	MediaAudio    = "audio"
	MediaDocument = "document"
)

// Messages sends and inspects messages.
type Messages struct {
	client *Client
}

// Media is a file uploaded by SendMedia.
type Media struct {
	FileName string
	Content  []byte
}

// MediaFromFile reads path into a Media value.
func MediaFromFile(path string) (Media, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Media{}, fmt.Errorf("waapi: read media file: %w", err)
	}
	return Media{FileName: filepath.Base(path), Content: content}, nil
}

// MediaOptions carries the optional fields of SendMedia.
type MediaOptions struct {
	Caption string
	// Type is one of MediaImage, MediaVideo, MediaAudio or MediaDocument.
	Type string
}

// LocationOptions carries the optional fields of SendLocation.
type LocationOptions struct {
	Name    string
	Address string
}

// MessageListOptions filters Messages.List.
type MessageListOptions struct {
	ListOptions
	SessionID string
	Phone     string
}

// SendText sends a plain text message.
func (m *Messages) SendText(ctx context.Context, sessionID, to, message string) (Result, error) {
	if err := requireArgs("session id", sessionID, "recipient", to, "message", message); err != nil {
		return nil, err
	}
	return m.client.Post(ctx, "/messages/send", map[string]any{
		"sessionId": sessionID,
		"to":        to,
		"message":   message,
	})
}

// SendMedia uploads a file as a multipart message. The session, recipient,
// caption and type travel as form fields next to the "file" part.
func (m *Messages) SendMedia(ctx context.Context, sessionID, to string, media Media, opts *MediaOptions) (Result, error) {
	if err := requireArgs("session id", sessionID, "recipient", to, "media file name", media.FileName); err != nil {
		return nil, err
	}
	if len(media.Content) == 0 {
		return nil, fmt.Errorf("%w: media content", ErrMissingArgument)
	}

	form := map[string]string{
		"sessionId": sessionID,
		"to":        to,
	}
	if opts != nil {
		putParam(form, "caption", opts.Caption)
		putParam(form, "type", opts.Type)
	}
	file := httpclient.File{Param: "file", Name: media.FileName, Content: media.Content}
	return m.client.PostMultipart(ctx, "/messages/media", form, file)
}

// SendLocation sends a location pin.
func (m *Messages) SendLocation(ctx context.Context, sessionID, to string, latitude, longitude float64, opts *LocationOptions) (Result, error) {
	if err := requireArgs("session id", sessionID, "recipient", to); err != nil {
		return nil, err
	}
	body := map[string]any{
		"sessionId": sessionID,
		"to":        to,
		"latitude":  latitude,
		"longitude": longitude,
	}
	if opts != nil {
		putString(body, "name", opts.Name)
		putString(body, "address", opts.Address)
	}
	return m.client.Post(ctx, "/messages/location", body)
}

// List returns a page of message history.
func (m *Messages) List(ctx context.Context, opts *MessageListOptions) (Result, error) {
	if opts == nil {
		opts = &MessageListOptions{}
	}
	query := opts.query(defaultListLimit)
	putParam(query, "sessionId", opts.SessionID)
	putParam(query, "phone", opts.Phone)
	return m.client.Get(ctx, "/messages", query)
}

// Get fetches one message.
func (m *Messages) Get(ctx context.Context, messageID string) (Result, error) {
	id, err := escapeID("message id", messageID)
	if err != nil {
		return nil, err
	}
	return m.client.Get(ctx, "/messages/"+id, nil)
}

// Status fetches the delivery status of a message.
func (m *Messages) Status(ctx context.Context, messageID string) (Result, error) {
	id, err := escapeID("message id", messageID)
	if err != nil {
		return nil, err
	}
	return m.client.Get(ctx, "/messages/"+id+"/status", nil)
}
