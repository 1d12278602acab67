package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/samvad-hq/waplatform-go/internal/domain"
	"github.com/samvad-hq/waplatform-go/internal/logger"
	"github.com/samvad-hq/waplatform-go/internal/storage"
	"github.com/samvad-hq/waplatform-go/pkg/publishers"
	"github.com/samvad-hq/waplatform-go/pkg/waapi"
)

const (
	defaultShutdownTimeout = 10 * time.Second
	maxBodySize            = "1M"
)

// Publisher is the downstream side of the relay. *publishers.Fanout satisfies it.
type Publisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
	Size() int
}

// Config holds the relay listener settings.
type Config struct {
	ListenAddr string
	// Secret verifies X-Webhook-Signature. An empty secret disables the check.
	Secret          string
	ShutdownTimeout time.Duration
}

// Server receives platform webhooks and forwards them to publishers.
type Server struct {
	echo            *echo.Echo
	addr            string
	secret          []byte
	store           storage.Store
	pub             Publisher
	log             logger.Logger
	shutdownTimeout time.Duration
	startedAt       time.Time
}

type response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New wires the echo routes. store may be nil to disable deduplication.
func New(cfg Config, store storage.Store, pub Publisher, log logger.Logger) *Server {
	if log == nil {
		log = logger.NopLogger{}
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit(maxBodySize))

	s := &Server{
		echo:            e,
		addr:            cfg.ListenAddr,
		secret:          []byte(cfg.Secret),
		store:           store,
		pub:             pub,
		log:             log,
		shutdownTimeout: cfg.ShutdownTimeout,
		startedAt:       time.Now(),
	}
	e.POST("/webhook", s.handleWebhook)
	e.GET("/health", s.handleHealth)
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.InfoObj("relay listening", "relay_meta", map[string]any{
		"addr":       s.addr,
		"publishers": s.pub.Size(),
		"signed":     len(s.secret) > 0,
	})

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("relay server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("relay shutdown: %w", err)
	}
	s.log.InfoObj("relay stopped", "reason", ctx.Err())
	return nil
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, response{
		Success: true,
		Message: "ok",
		Data: map[string]any{
			"publishers":     s.pub.Size(),
			"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
		},
	})
}

func (s *Server) handleWebhook(c echo.Context) error {
	req := c.Request()
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return fail(c, http.StatusBadRequest, "unreadable body")
	}

	signature := req.Header.Get(waapi.HeaderWebhookSignature)
	if len(s.secret) > 0 {
		if err := waapi.VerifySignature(s.secret, body, signature); err != nil {
			s.log.WarnObj("webhook signature rejected", "relay_auth", map[string]any{
				"webhook_id": req.Header.Get(waapi.HeaderWebhookID),
				"error":      err.Error(),
			})
			return fail(c, http.StatusUnauthorized, "invalid signature")
		}
	}

	evt, err := waapi.ParseWebhookEvent(body)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid event payload")
	}

	webhookID := req.Header.Get(waapi.HeaderWebhookID)
	delivery := domain.Delivery{
		ID:        deliveryID(webhookID, evt.Event, evt.Data),
		WebhookID: webhookID,
		Event:     evt.Event,
		Timestamp: evt.Timestamp,
		Data:      evt.Data,
	}
	if hdr := strings.TrimSpace(req.Header.Get(waapi.HeaderWebhookEvent)); hdr != "" && hdr != delivery.Event {
		s.log.WarnObj("webhook event header disagrees with body", "relay_event", map[string]any{
			"header": hdr,
			"body":   delivery.Event,
		})
	}

	claimed := false
	if s.store != nil {
		claim, err := s.store.ClaimDelivery(delivery.ID)
		switch {
		case err != nil:
			// A store failure does not block delivery.
			s.log.ErrorObj("delivery claim failed", "error", err)
		case claim == storage.Done:
			s.log.DebugObj("duplicate delivery dropped", "delivery_id", delivery.ID)
			return c.JSON(http.StatusOK, response{Success: true, Message: "duplicate", Data: map[string]string{"id": delivery.ID}})
		case claim == storage.InFlight:
			s.log.DebugObj("delivery already in flight", "delivery_id", delivery.ID)
			return fail(c, http.StatusConflict, "delivery in progress")
		default:
			claimed = true
		}
	}

	published, err := s.pub.Publish(req.Context(), publishers.NewEvent(delivery))
	if err != nil {
		s.log.ErrorObj("delivery fanout failed", "relay_publish", map[string]any{
			"delivery_id": delivery.ID,
			"event":       delivery.Event,
			"published":   published,
			"error":       err.Error(),
		})
		if claimed {
			if rerr := s.store.ReleaseDelivery(delivery.ID); rerr != nil {
				s.log.ErrorObj("delivery release failed", "error", rerr)
			}
		}
		return fail(c, http.StatusBadGateway, "publish failed")
	}

	if claimed {
		if err := s.store.CompleteDelivery(delivery.ID); err != nil {
			s.log.ErrorObj("delivery complete failed", "error", err)
		}
	}
	s.log.InfoObj("delivery relayed", "relay_delivery", map[string]any{
		"delivery_id": delivery.ID,
		"event":       delivery.Event,
		"published":   published,
	})
	return c.JSON(http.StatusAccepted, response{
		Success: true,
		Message: "relayed",
		Data:    map[string]any{"id": delivery.ID, "published": published},
	})
}

// deliveryID keys a delivery on what the platform keeps across retries. Each
// retry carries a fresh timestamp and therefore a fresh signature, so neither
// takes part. Data is re-encoded so key order and whitespace do not matter.
func deliveryID(webhookID, event string, data json.RawMessage) string {
	material := webhookID + "\n" + event + "\n" + string(canonicalJSON(data))
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(material)).String()
}

func canonicalJSON(raw json.RawMessage) []byte {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return bytes.TrimSpace(raw)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return bytes.TrimSpace(raw)
	}
	return out
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, response{Success: false, Message: msg})
}
