// Package history keeps a ledger of dispatch outcomes in a bbolt file.
package history

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"sbrenamer/internal/renamer"
)

const (
	DispatchesBucket = "dispatches"
	DefaultTimeout   = time.Second
)

// Store is the outcome ledger. Entries are keyed by time so iteration
// order is chronological.
type Store struct {
	db         *bbolt.DB
	mu         sync.RWMutex
	serializer Serializer
}

// Config содержит конфигурацию для Store
type Config struct {
	Path       string
	FileMode   os.FileMode
	Options    *bbolt.Options
	Serializer Serializer
}

func Open(cfg Config) (*Store, error) {
	if cfg.Serializer == nil {
		cfg.Serializer = &GobSerializer{}
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = 0666
	}
	if cfg.Options == nil {
		// another running instance holds the lock
		cfg.Options = &bbolt.Options{Timeout: DefaultTimeout}
	}

	db, err := bbolt.Open(cfg.Path, cfg.FileMode, cfg.Options)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", cfg.Path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(DispatchesBucket))
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Store{
		db:         db,
		serializer: cfg.Serializer,
	}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return ErrNilDB
	}
	return s.db.Close()
}

// key is the big-endian unix nano time followed by the outcome id.
func key(o renamer.Outcome) []byte {
	k := make([]byte, 8+len(o.ID))
	binary.BigEndian.PutUint64(k, uint64(o.Time.UnixNano()))
	copy(k[8:], o.ID[:])
	return k
}

// Record appends o to the ledger. Outcomes without an id get one.
func (s *Store) Record(o renamer.Outcome) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Time.IsZero() {
		o.Time = time.Now()
	}

	data, err := s.serializer.Serialize(o)
	if err != nil {
		return fmt.Errorf("serialize outcome: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(DispatchesBucket))
		if bucket == nil {
			return ErrBucketNotFound
		}
		return bucket.Put(key(o), data)
	})
}

// Recent returns up to n outcomes, newest first. n <= 0 returns all.
func (s *Store) Recent(n int) ([]renamer.Outcome, error) {
	var out []renamer.Outcome

	s.mu.RLock()
	defer s.mu.RUnlock()

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(DispatchesBucket))
		if bucket == nil {
			return ErrBucketNotFound
		}

		c := bucket.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if n > 0 && len(out) >= n {
				break
			}
			var o renamer.Outcome
			if err := s.serializer.Deserialize(v, &o); err != nil {
				return err
			}
			out = append(out, o)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get looks an outcome up by id.
func (s *Store) Get(id uuid.UUID) (renamer.Outcome, error) {
	var found renamer.Outcome

	s.mu.RLock()
	defer s.mu.RUnlock()

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(DispatchesBucket))
		if bucket == nil {
			return ErrBucketNotFound
		}

		return bucket.ForEach(func(k, v []byte) error {
			if len(k) != 8+len(id) || uuid.UUID(k[8:]) != id {
				return nil
			}
			return s.serializer.Deserialize(v, &found)
		})
	})
	if err != nil {
		return renamer.Outcome{}, err
	}
	if found.ID == uuid.Nil {
		return renamer.Outcome{}, ErrEntryNotFound
	}
	return found, nil
}

func (s *Store) Count() (int, error) {
	var n int

	s.mu.RLock()
	defer s.mu.RUnlock()

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(DispatchesBucket))
		if bucket == nil {
			return ErrBucketNotFound
		}
		n = bucket.Stats().KeyN
		return nil
	})
	return n, err
}
