package waapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/samvad-hq/waplatform-go/pkg/httpclient"
)

type fakeResponse struct {
	status int
	body   []byte
}

func (r fakeResponse) Body() []byte        { return r.body }
func (r fakeResponse) StatusCode() int     { return r.status }
func (r fakeResponse) Header() http.Header { return http.Header{} }

// fakeTransport answers every attempt with respond and records the requests.
type fakeTransport struct {
	mu      sync.Mutex
	calls   []httpclient.Request
	respond func(n int) (httpclient.Response, error)
}

func (f *fakeTransport) Do(_ context.Context, req httpclient.Request) (httpclient.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	n := len(f.calls)
	f.mu.Unlock()
	return f.respond(n)
}

func (f *fakeTransport) attempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func statusReply(status int, body string) func(int) (httpclient.Response, error) {
	return func(int) (httpclient.Response, error) {
		return fakeResponse{status: status, body: []byte(body)}, nil
	}
}

// newFakeClient returns a client over a fake transport whose backoff waits
// are recorded instead of slept.
func newFakeClient(t *testing.T, tr *fakeTransport) (*Client, *[]time.Duration) {
	t.Helper()
	c, err := New(Config{APIKey: "test-key", BaseURL: "https://api.example.test/api/v1/"}, WithHTTPClient(tr))
	require.NoError(t, err)
	waits := &[]time.Duration{}
	c.sleep = func(_ context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
	return c, waits
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Config{APIKey: "  "})
	require.Error(t, err)
}

func TestNewAppliesDefaults(t *testing.T) {
	c, err := New(Config{APIKey: "k", MaxRetries: -1})
	require.NoError(t, err)

	cfg := c.Config()
	require.Equal(t, DefaultBaseURL, cfg.BaseURL)
	require.Equal(t, DefaultTimeout, cfg.Timeout)
	require.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
	require.NotNil(t, c.Sessions)
	require.NotNil(t, c.Messages)
	require.NotNil(t, c.Contacts)
	require.NotNil(t, c.Groups)
	require.NotNil(t, c.Webhooks)
}

func TestClientSendsStandardHeaders(t *testing.T) {
	tr := &fakeTransport{respond: statusReply(http.StatusOK, `{"success":true}`)}
	c, _ := newFakeClient(t, tr)

	res, err := c.Get(context.Background(), "/sessions", nil)
	require.NoError(t, err)
	require.Equal(t, true, res["success"])

	require.Len(t, tr.calls, 1)
	req := tr.calls[0]
	require.Equal(t, http.MethodGet, req.Method)
	require.Equal(t, "https://api.example.test/api/v1/sessions", req.URL)
	require.Equal(t, "Bearer test-key", req.Headers["Authorization"])
	require.Equal(t, "WhatsApp-API-Go-SDK/1.0.0", req.Headers["User-Agent"])
	require.Equal(t, "application/json", req.Headers["Accept"])
	require.Equal(t, "application/json", req.Headers["Content-Type"])
	require.NotEmpty(t, req.Headers["X-Request-ID"])
}

func TestMultipartOmitsJSONContentType(t *testing.T) {
	tr := &fakeTransport{respond: statusReply(http.StatusOK, `{}`)}
	c, _ := newFakeClient(t, tr)

	_, err := c.PostMultipart(context.Background(), "/messages/media", map[string]string{"to": "1"},
		httpclient.File{Param: "file", Name: "a.png", Content: []byte{1}})
	require.NoError(t, err)

	_, ok := tr.calls[0].Headers["Content-Type"]
	require.False(t, ok)
	require.Equal(t, "Bearer test-key", tr.calls[0].Headers["Authorization"])
}

func TestStatusClassification(t *testing.T) {
	cases := []struct {
		status int
		kind   Kind
		is     func(error) bool
	}{
		{http.StatusBadRequest, KindValidation, IsValidation},
		{http.StatusUnauthorized, KindAuthentication, IsAuthentication},
		{http.StatusNotFound, KindNotFound, IsNotFound},
		{http.StatusInternalServerError, KindServer, IsServer},
		{http.StatusServiceUnavailable, KindServer, IsServer},
		{http.StatusForbidden, KindAPI, func(err error) bool { k, _ := KindOf(err); return k == KindAPI }},
		{http.StatusConflict, KindAPI, func(err error) bool { k, _ := KindOf(err); return k == KindAPI }},
	}

	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			tr := &fakeTransport{respond: statusReply(tc.status, `{"success":false,"error":"nope"}`)}
			c, waits := newFakeClient(t, tr)

			_, err := c.Get(context.Background(), "/sessions/x", nil)
			require.Error(t, err)
			require.True(t, tc.is(err))

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			require.Equal(t, tc.kind, apiErr.Kind)
			require.Equal(t, tc.status, apiErr.StatusCode)
			require.Equal(t, "nope", apiErr.Message)
			require.Equal(t, false, apiErr.Body["success"])

			require.Equal(t, 1, tr.attempts(), "non-retryable failures are attempted once")
			require.Empty(t, *waits)
		})
	}
}

func TestRateLimitRetriesWithLinearBackoff(t *testing.T) {
	tr := &fakeTransport{respond: statusReply(http.StatusTooManyRequests, `{"error":"slow down"}`)}
	c, waits := newFakeClient(t, tr)

	_, err := c.Post(context.Background(), "/messages/send", map[string]any{"to": "1"})
	require.True(t, IsRateLimited(err))
	require.Equal(t, DefaultMaxRetries, tr.attempts())
	require.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second, 15 * time.Second}, *waits)
}

func TestConnectionFailureRetriesWithExponentialBackoff(t *testing.T) {
	refused := errors.New("connection refused")
	tr := &fakeTransport{respond: func(int) (httpclient.Response, error) { return nil, refused }}
	c, waits := newFakeClient(t, tr)

	_, err := c.Get(context.Background(), "/sessions", nil)
	require.True(t, IsConnection(err))
	require.ErrorIs(t, err, refused)
	require.Contains(t, err.Error(), "Connection error: connection refused")
	require.Equal(t, DefaultMaxRetries, tr.attempts())
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, *waits)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	require.Zero(t, apiErr.StatusCode)
}

func TestRetryRecoversAndKeepsRequestID(t *testing.T) {
	tr := &fakeTransport{respond: func(n int) (httpclient.Response, error) {
		if n == 1 {
			return fakeResponse{status: http.StatusTooManyRequests, body: []byte(`{}`)}, nil
		}
		return fakeResponse{status: http.StatusCreated, body: []byte(`{"success":true,"data":{"id":"s1"}}`)}, nil
	}}
	c, waits := newFakeClient(t, tr)

	res, err := c.Post(context.Background(), "/sessions", map[string]any{"name": "Test"})
	require.NoError(t, err)
	require.Equal(t, "s1", res.ID())
	require.Equal(t, []time.Duration{5 * time.Second}, *waits)
	require.Len(t, tr.calls, 2)
	require.Equal(t, tr.calls[0].Headers["X-Request-ID"], tr.calls[1].Headers["X-Request-ID"])
}

func TestCustomMaxRetries(t *testing.T) {
	tr := &fakeTransport{respond: statusReply(http.StatusTooManyRequests, `{}`)}
	c, err := New(Config{APIKey: "k", MaxRetries: 1}, WithHTTPClient(tr))
	require.NoError(t, err)
	c.sleep = func(context.Context, time.Duration) error { return nil }

	_, err = c.Get(context.Background(), "/sessions", nil)
	require.True(t, IsRateLimited(err))
	require.Equal(t, 1, tr.attempts())
}

func TestCancelledBackoffReturnsConnectionError(t *testing.T) {
	tr := &fakeTransport{respond: statusReply(http.StatusTooManyRequests, `{}`)}
	c, _ := newFakeClient(t, tr)
	c.sleep = func(context.Context, time.Duration) error { return context.Canceled }

	_, err := c.Get(context.Background(), "/sessions", nil)
	require.True(t, IsConnection(err))
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, tr.attempts())
}

func TestInvalidJSONErrorBodyIsReplaced(t *testing.T) {
	tr := &fakeTransport{respond: statusReply(http.StatusBadGateway, `<html>bad gateway</html>`)}
	c, _ := newFakeClient(t, tr)

	_, err := c.Get(context.Background(), "/sessions", nil)
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, KindServer, apiErr.Kind)
	require.Equal(t, "Invalid JSON response", apiErr.Message)
	require.Equal(t, map[string]any{"error": "Invalid JSON response"}, apiErr.Body)
	require.Equal(t, "<html>bad gateway</html>", string(apiErr.Raw))
}

func TestErrorMessageFallbacks(t *testing.T) {
	cases := map[string]string{
		`{"error":{"message":"phone is invalid"}}`: "phone is invalid",
		`{"success":false}`:                        "Unknown error",
		`{"error":""}`:                             "Unknown error",
	}
	for body, want := range cases {
		tr := &fakeTransport{respond: statusReply(http.StatusBadRequest, body)}
		c, _ := newFakeClient(t, tr)

		_, err := c.Get(context.Background(), "/x", nil)
		var apiErr *Error
		require.True(t, errors.As(err, &apiErr), body)
		require.Equal(t, want, apiErr.Message, body)
	}
}

func TestEmptySuccessBodyYieldsEmptyResult(t *testing.T) {
	tr := &fakeTransport{respond: statusReply(http.StatusNoContent, "")}
	c, _ := newFakeClient(t, tr)

	res, err := c.Delete(context.Background(), "/sessions/s1", nil)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Empty(t, res)
}

func TestAcceptedStatusIsSuccess(t *testing.T) {
	tr := &fakeTransport{respond: statusReply(http.StatusAccepted, `{"success":true,"data":{"id":"job-1"}}`)}
	c, _ := newFakeClient(t, tr)

	res, err := c.Post(context.Background(), "/contacts/sync", map[string]any{"sessionId": "s1"})
	require.NoError(t, err)
	require.Equal(t, "job-1", res.ID())
}

func TestErrorString(t *testing.T) {
	err := &Error{Kind: KindNotFound, StatusCode: 404, Message: "Session not found"}
	require.Equal(t, "waapi: not found error (HTTP 404): Session not found", err.Error())

	conn := newConnectionError(errors.New("timeout"))
	require.Equal(t, "waapi: connection error: Connection error: timeout", conn.Error())
	require.True(t, conn.Retryable())
	require.False(t, err.Retryable())
}

func TestRateLimiterThrottlesAttempts(t *testing.T) {
	tr := &fakeTransport{respond: statusReply(http.StatusOK, `{}`)}
	c, err := New(Config{APIKey: "k"}, WithHTTPClient(tr), WithRateLimit(1, 1))
	require.NoError(t, err)
	require.NotNil(t, c.limiter)

	ctx, cancel := context.WithCancel(context.Background())
	_, err = c.Get(ctx, "/a", nil)
	require.NoError(t, err)

	// The bucket is empty now; a cancelled context cannot wait for a token.
	cancel()
	_, err = c.Get(ctx, "/b", nil)
	require.True(t, IsConnection(err))
	require.Equal(t, 1, tr.attempts())
}

func TestClientOverHTTP(t *testing.T) {
	var auth, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth, path = r.Header.Get("Authorization"), r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"s1","status":"connected"}}`))
	}))
	defer srv.Close()

	c, err := New(Config{APIKey: "live-key", BaseURL: srv.URL + "/api/v1", Timeout: 2 * time.Second})
	require.NoError(t, err)

	res, err := c.Sessions.Get(context.Background(), "s1")
	require.NoError(t, err)
	require.Equal(t, "connected", res.Data()["status"])
	require.Equal(t, "Bearer live-key", auth)
	require.Equal(t, "/api/v1/sessions/s1", path)
}

func TestBackoffSchedule(t *testing.T) {
	require.Equal(t, time.Second, backoff(KindConnection, 0))
	require.Equal(t, 8*time.Second, backoff(KindConnection, 3))
	require.Equal(t, 5*time.Second, backoff(KindRateLimit, 0))
	require.Equal(t, 20*time.Second, backoff(KindRateLimit, 3))
	require.Zero(t, backoff(KindServer, 0))
}

func TestSleepContextHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	require.NoError(t, sleepContext(context.Background(), time.Millisecond))
}
