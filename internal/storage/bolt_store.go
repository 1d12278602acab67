package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var claimsBucket = []byte("delivery_claims")

var errBucketMissing = errors.New("delivery claims bucket missing")

// Each value is one state byte followed by the big-endian unix expiry.
const (
	statePending byte = 'p'
	stateDone    byte = 'd'

	claimValueLen = 9
)

type claimRecord struct {
	state  byte
	expiry time.Time
}

func (r claimRecord) encode() []byte {
	buf := make([]byte, claimValueLen)
	buf[0] = r.state
	binary.BigEndian.PutUint64(buf[1:], uint64(r.expiry.Unix()))
	return buf
}

func decodeClaim(v []byte) (claimRecord, bool) {
	if len(v) != claimValueLen || (v[0] != statePending && v[0] != stateDone) {
		return claimRecord{}, false
	}
	unix := int64(binary.BigEndian.Uint64(v[1:]))
	if unix <= 0 {
		return claimRecord{}, false
	}
	return claimRecord{state: v[0], expiry: time.Unix(unix, 0)}, true
}

// live reports whether the record still counts at now. Malformed values never do.
func live(v []byte, now time.Time) (claimRecord, bool) {
	rec, ok := decodeClaim(v)
	if !ok || !rec.expiry.After(now) {
		return claimRecord{}, false
	}
	return rec, true
}

type boltStore struct {
	db   *bolt.DB
	opts Options
	now  func() time.Time

	// nextSweep is only touched inside db.Update, which bbolt serialises.
	nextSweep time.Time
}

func openBolt(path string, opts Options) (*boltStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(claimsBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	s := &boltStore{db: db, opts: opts, now: time.Now}
	s.nextSweep = s.now().Add(opts.CleanupInterval)
	return s, nil
}

func (s *boltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ClaimDelivery checks and takes the claim in one write transaction.
func (s *boltStore) ClaimDelivery(id string) (Claim, error) {
	if id == "" {
		return 0, fmt.Errorf("claim: empty delivery id")
	}
	result := Claimed
	err := s.update(func(b *bolt.Bucket, now time.Time) error {
		if rec, ok := live(b.Get([]byte(id)), now); ok {
			if rec.state == stateDone {
				result = Done
			} else {
				result = InFlight
			}
			return nil
		}
		return b.Put([]byte(id), claimRecord{state: statePending, expiry: now.Add(s.opts.ClaimLease)}.encode())
	})
	return result, err
}

func (s *boltStore) CompleteDelivery(id string) error {
	return s.update(func(b *bolt.Bucket, now time.Time) error {
		return b.Put([]byte(id), claimRecord{state: stateDone, expiry: now.Add(s.opts.DeliveryTTL)}.encode())
	})
}

// ReleaseDelivery removes a pending claim. A completed delivery is left alone.
func (s *boltStore) ReleaseDelivery(id string) error {
	return s.update(func(b *bolt.Bucket, now time.Time) error {
		if rec, ok := live(b.Get([]byte(id)), now); ok && rec.state == stateDone {
			return nil
		}
		return b.Delete([]byte(id))
	})
}

// update runs fn in a write transaction and sweeps expired records once the
// cleanup interval has passed.
func (s *boltStore) update(fn func(b *bolt.Bucket, now time.Time) error) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("storage closed")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(claimsBucket)
		if b == nil {
			return errBucketMissing
		}
		now := s.now()
		if !now.Before(s.nextSweep) {
			if err := sweep(b, now); err != nil {
				return fmt.Errorf("sweep expired claims: %w", err)
			}
			s.nextSweep = now.Add(s.opts.CleanupInterval)
		}
		return fn(b, now)
	})
}

func sweep(b *bolt.Bucket, now time.Time) error {
	var expired [][]byte
	err := b.ForEach(func(k, v []byte) error {
		if _, ok := live(v, now); !ok {
			expired = append(expired, append([]byte(nil), k...))
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, k := range expired {
		if err := b.Delete(k); err != nil {
			return err
		}
	}
	return nil
}
