package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/neuroguard/patient-registry/internal/core/domain"
)

// Store persists the identity+credential pair. Save and Clear must be
// atomic: a reader can never observe one entry without the other.
type Store interface {
	Save(identity domain.Identity, credential string) error
	// Load returns the persisted pair. ErrNoSession when nothing (or only a
	// partial, malformed pair) is stored.
	Load() (domain.Identity, string, error)
	Clear() error
	Close() error
}

// ErrNoSession is returned by Load when no complete session is persisted.
var ErrNoSession = errors.New("no stored session")

var (
	bucketSession = []byte("session")
	keyCredential = []byte("credential")
	keyIdentity   = []byte("identity")
)

// BoltStore keeps the session in a local BoltDB file. Both entries are
// written and deleted inside one transaction, which gives the atomicity
// the session invariant requires for free.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt initialises the session database file and ensures the bucket
// exists.
func OpenBolt(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSession)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Save(identity domain.Identity, credential string) error {
	payload, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSession)
		if err := b.Put(keyCredential, []byte(credential)); err != nil {
			return err
		}
		return b.Put(keyIdentity, payload)
	})
}

func (s *BoltStore) Load() (domain.Identity, string, error) {
	var identity domain.Identity
	var credential string

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSession)
		cred := b.Get(keyCredential)
		raw := b.Get(keyIdentity)
		if len(cred) == 0 || len(raw) == 0 {
			return ErrNoSession
		}
		if err := json.Unmarshal(raw, &identity); err != nil {
			// Malformed identity: treat as absent, no partial recovery.
			return ErrNoSession
		}
		credential = string(cred)
		return nil
	})
	if err != nil {
		return domain.Identity{}, "", err
	}
	if identity.ID == "" && identity.Email == "" {
		return domain.Identity{}, "", ErrNoSession
	}
	return identity, credential, nil
}

func (s *BoltStore) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSession)
		if err := b.Delete(keyCredential); err != nil {
			return err
		}
		return b.Delete(keyIdentity)
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
