package keystore

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("secrets")

// Store persists generated secrets (cipher keys, signing secrets) so they
// survive restarts. Secrets supplied through the environment take precedence
// and never touch the store.
type Store struct {
	db *bolt.DB
}

// Open initializes the BoltDB file and ensures the secrets bucket exists.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// GetOrCreate returns the named secret, generating and persisting n random
// bytes on first use. An existing secret of the wrong length is an error
// rather than silently regenerated.
func (s *Store) GetOrCreate(name string, n int) ([]byte, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}

	var secret []byte
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if existing := bucket.Get([]byte(name)); existing != nil {
			if len(existing) != n {
				return fmt.Errorf("secret %q has length %d, want %d", name, len(existing), n)
			}
			secret = append([]byte(nil), existing...)
			return nil
		}

		secret = make([]byte, n)
		if _, err := rand.Read(secret); err != nil {
			return err
		}
		return bucket.Put([]byte(name), secret)
	})
	if err != nil {
		return nil, err
	}
	return secret, nil
}

// Ping verifies the store is usable.
func (s *Store) Ping() error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketName) == nil {
			return fmt.Errorf("secrets bucket missing")
		}
		return nil
	})
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
