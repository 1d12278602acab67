package app

import (
	"context"
	"fmt"

	"github.com/samvad-hq/waplatform-go/internal/config"
	"github.com/samvad-hq/waplatform-go/internal/logger"
	"github.com/samvad-hq/waplatform-go/internal/relay"
	"github.com/samvad-hq/waplatform-go/internal/storage"
	"github.com/samvad-hq/waplatform-go/pkg/publishers"
)

// Relay represents the webhook relay runtime. It owns the publishers fanout,
// the delivery store and the HTTP server, and closes them on shutdown.
type Relay struct {
	cfg    *config.Config
	fanout *publishers.Fanout
	store  storage.Store
	server *relay.Server
	log    logger.Logger
}

// NewRelay builds a relay runtime from config files.
func NewRelay(ctx context.Context, cfg *config.Config, log logger.Logger) (*Relay, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	storeOpts := storage.Options{
		DeliveryTTL:     cfg.StorageTTL,
		ClaimLease:      cfg.StorageClaimLease,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storeOpts)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"delivery_ttl_seconds":     int(cfg.StorageTTL.Seconds()),
		"claim_lease_seconds":      int(cfg.StorageClaimLease.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	if cfg.WebhookSecret == "" {
		log.WarnObj("webhook_secret is empty; signatures will not be verified", "relay_listen_addr", cfg.RelayListenAddr)
	}
	server := relay.New(relay.Config{
		ListenAddr: cfg.RelayListenAddr,
		Secret:     cfg.WebhookSecret,
	}, store, fanout, log)

	return &Relay{
		cfg:    cfg,
		fanout: fanout,
		store:  store,
		server: server,
		log:    log,
	}, nil
}

// Run serves webhooks until the context is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	if r == nil || r.server == nil {
		return fmt.Errorf("relay is not initialized")
	}
	defer r.close()

	r.log.InfoObj("relay starting", "relay_state", map[string]any{
		"listen_addr":      r.cfg.RelayListenAddr,
		"publishers_count": r.fanout.Size(),
	})
	return r.server.Run(ctx)
}

// close releases the publishers and the storage backend, logging any errors.
func (r *Relay) close() {
	if err := r.fanout.Close(); err != nil {
		r.log.ErrorObj("publishers close failed", "error", err)
	}
	if r.store == nil {
		return
	}
	if err := r.store.Close(); err != nil {
		r.log.ErrorObj("storage close failed", "error", err)
	}
}
