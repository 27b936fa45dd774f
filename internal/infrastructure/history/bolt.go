package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/floriangamillscheg/ReceiptOCRAzure/internal/domain"
	"go.etcd.io/bbolt"
)

const receiptsBucket = "receipts"

// BoltStore persists processed receipts in a bbolt database. Keys are
// zero-padded nanosecond timestamps so a reverse cursor scan yields entries
// newest first.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens (or creates) the history database at path
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(receiptsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Save persists one processed receipt. ID and CreatedAt are assigned when
// unset.
func (s *BoltStore) Save(ctx context.Context, entry *domain.HistoryEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.ID == "" {
		entry.ID = fmt.Sprintf("%020d", entry.CreatedAt.UnixNano())
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(receiptsBucket))
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshaling history entry: %w", err)
		}
		return bucket.Put([]byte(entry.ID), data)
	})
}

// List returns up to limit entries, newest first. limit <= 0 returns all.
func (s *BoltStore) List(ctx context.Context, limit int) ([]*domain.HistoryEntry, error) {
	entries := make([]*domain.HistoryEntry, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket([]byte(receiptsBucket)).Cursor()
		for k, v := cursor.Last(); k != nil; k, v = cursor.Prev() {
			if limit > 0 && len(entries) >= limit {
				break
			}
			var entry domain.HistoryEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("unmarshaling history entry: %w", err)
			}
			entries = append(entries, &entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Get retrieves one entry by id
func (s *BoltStore) Get(ctx context.Context, id string) (*domain.HistoryEntry, error) {
	var entry *domain.HistoryEntry
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(receiptsBucket)).Get([]byte(id))
		if data == nil {
			return domain.ErrHistoryNotFound
		}
		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}
