package httpclient

import (
	"context"
	"net/http"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
}

// File is one multipart file part.
type File struct {
	Param   string
	Name    string
	Content []byte
}

// Request describes a single outgoing call. Body is encoded according to the
// Content-Type header; when Files is non-empty the request is sent as
// multipart/form-data with FormData as the extra fields and Body is ignored.
type Request struct {
	Method   string
	URL      string
	Headers  map[string]string
	Query    map[string]string
	Body     any
	FormData map[string]string
	Files    []File
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Do(ctx context.Context, req Request) (Response, error)
}
