package domain

import (
	"context"
	"time"
)

// DocumentClient defines the interface for the cloud document-understanding
// service (Azure Document Intelligence)
type DocumentClient interface {
	AnalyzeReceipt(ctx context.Context, content []byte, contentType string) (*AnalyzeResult, error)
}

// CacheRepository defines the interface for caching analyze results keyed by
// content digest. Values are opaque serialized bytes.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// HistoryRepository defines the interface for the processed-receipt history
type HistoryRepository interface {
	Save(ctx context.Context, entry *HistoryEntry) error
	List(ctx context.Context, limit int) ([]*HistoryEntry, error)
	Get(ctx context.Context, id string) (*HistoryEntry, error)
	Close() error
}
