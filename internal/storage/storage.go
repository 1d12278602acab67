// Package storage tracks which webhook deliveries the relay has taken on.
//
// A delivery moves through claim, then either complete or release. Claims are
// atomic, so two concurrent copies of one delivery never both reach the
// publishers. A claim that is never completed or released (the process died
// mid-publish) lapses after the claim lease and the delivery can be claimed
// again.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// Claim is the outcome of ClaimDelivery.
type Claim int

const (
	// Claimed means the caller now owns the delivery and must complete or
	// release it.
	Claimed Claim = iota
	// InFlight means another caller holds an unexpired claim.
	InFlight
	// Done means the delivery was already relayed within the retention window.
	Done
)

func (c Claim) String() string {
	switch c {
	case Claimed:
		return "claimed"
	case InFlight:
		return "in_flight"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("claim(%d)", int(c))
	}
}

// Store records delivery claims.
type Store interface {
	ClaimDelivery(id string) (Claim, error)
	// CompleteDelivery keeps id as relayed for the retention window.
	CompleteDelivery(id string) error
	// ReleaseDelivery drops a claim so a redelivery can be claimed again.
	ReleaseDelivery(id string) error
	Close() error
}

// Options controls how long claims and completed deliveries are kept.
type Options struct {
	DeliveryTTL     time.Duration
	ClaimLease      time.Duration
	CleanupInterval time.Duration
}

const (
	defaultDeliveryTTL     = 24 * time.Hour
	defaultClaimLease      = 5 * time.Minute
	defaultCleanupInterval = time.Hour
)

// NewStore opens the backend named by typ: "bbolt", or "none" to disable
// deduplication.
func NewStore(typ, path string, opts Options) (Store, error) {
	opts = normalizeOptions(opts)

	switch strings.TrimSpace(strings.ToLower(typ)) {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		s, err := openBolt(path, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.DeliveryTTL <= 0 {
		opts.DeliveryTTL = defaultDeliveryTTL
	}
	if opts.ClaimLease <= 0 {
		opts.ClaimLease = defaultClaimLease
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

// noopStore lets every delivery through.
type noopStore struct{}

func (noopStore) ClaimDelivery(string) (Claim, error) { return Claimed, nil }
func (noopStore) CompleteDelivery(string) error       { return nil }
func (noopStore) ReleaseDelivery(string) error        { return nil }
func (noopStore) Close() error                        { return nil }
