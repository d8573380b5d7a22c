package store

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"
)

// Record is one persisted collection entry: the original text, its source
// and the embedding vector.
type Record struct {
	Text   string    `json:"t"`
	Source string    `json:"s"`
	Vector []float32 `json:"v"`
}

// Bolt persists vector collections in a single BoltDB file, one bucket per
// collection. Collection names are derived strings, never user-supplied
// paths.
type Bolt struct {
	db *bbolt.DB
}

// Open opens (or creates) the database file at path.
func Open(path string) (*Bolt, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}
	return &Bolt{db: db}, nil
}

// Close closes the underlying database.
func (s *Bolt) Close() error {
	return s.db.Close()
}

// EnsureCollection creates the bucket for the named collection if needed.
func (s *Bolt) EnsureCollection(name string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(name))
		if err != nil {
			return fmt.Errorf("failed to create collection bucket %s: %w", name, err)
		}
		return nil
	})
}

// DropCollection deletes the bucket for the named collection and recreates
// it empty.
func (s *Bolt) DropCollection(name string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(name)); err != nil && err != bbolt.ErrBucketNotFound {
			return fmt.Errorf("failed to delete collection bucket %s: %w", name, err)
		}
		_, err := tx.CreateBucketIfNotExists([]byte(name))
		return err
	})
}

// PutBatch writes records into the named collection in one transaction.
func (s *Bolt) PutBatch(name string, records map[string]Record) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(name))
		if b == nil {
			return fmt.Errorf("collection bucket not found: %s", name)
		}
		for id, rec := range records {
			data, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(id), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// ForEach iterates over every record in the named collection. Corrupted
// entries are skipped.
func (s *Bolt) ForEach(name string, fn func(id string, rec Record) error) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(name))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return nil
			}
			return fn(string(k), rec)
		})
	})
}

// ListCollections returns the names of all persisted collections.
func (s *Bolt) ListCollections() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
			names = append(names, string(name))
			return nil
		})
	})
	return names, err
}
