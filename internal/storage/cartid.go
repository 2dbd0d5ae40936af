// Package storage persists the active cart identifier across runs. The
// stored id is the single authority for "which cart is active": every flow
// that needs it (cart store init, checkout submission) re-reads it here
// instead of trusting an in-memory copy.
package storage

import (
	"fmt"
	"strconv"
	"time"

	"github.com/boltdb/bolt"
)

const (
	bucketName = "storefront"
	cartIDKey  = "cartId"
)

// CartIDStore is a bolt-backed single-value store for the cart id.
type CartIDStore struct {
	db *bolt.DB
}

// Open opens (or creates) the bolt database at path and ensures the
// storefront bucket exists.
func Open(path string) (*CartIDStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open storage at %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, errB := tx.CreateBucketIfNotExists([]byte(bucketName))
		return errB
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create %s bucket: %w", bucketName, err)
	}
	return &CartIDStore{db: db}, nil
}

// Save records cartID as the active cart.
func (s *CartIDStore) Save(cartID int64) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		value := strconv.FormatInt(cartID, 10)
		return tx.Bucket([]byte(bucketName)).Put([]byte(cartIDKey), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("failed to persist cart id: %w", err)
	}
	return nil
}

// Load returns the active cart id. found is false when none has been
// saved yet.
func (s *CartIDStore) Load() (cartID int64, found bool, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(bucketName)).Get([]byte(cartIDKey))
		if raw == nil {
			return nil
		}
		parsed, errP := strconv.ParseInt(string(raw), 10, 64)
		if errP != nil {
			return fmt.Errorf("corrupt cart id %q: %w", raw, errP)
		}
		cartID = parsed
		found = true
		return nil
	})
	if err != nil {
		return 0, false, fmt.Errorf("failed to read cart id: %w", err)
	}
	return cartID, found, nil
}

// Clear forgets the active cart id. Clearing an empty store is a no-op.
func (s *CartIDStore) Clear() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete([]byte(cartIDKey))
	})
	if err != nil {
		return fmt.Errorf("failed to clear cart id: %w", err)
	}
	return nil
}

// Close releases the underlying database file.
func (s *CartIDStore) Close() error {
	return s.db.Close()
}
