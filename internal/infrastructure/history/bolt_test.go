package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/floriangamillscheg/ReceiptOCRAzure/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := NewBoltStore(filepath.Join(t.TempDir(), "receipts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleEntry(filename string) *domain.HistoryEntry {
	total := 42.5
	return &domain.HistoryEntry{
		Filename: filename,
		Digest:   "abc123",
		Receipt: &domain.Receipt{
			Filename:    filename,
			Confidence:  0.95,
			BruttoTotal: &total,
		},
	}
}

func TestBoltStore_SaveAssignsIDAndTimestamp(t *testing.T) {
	store := newTestStore(t)

	entry := sampleEntry("receipt.pdf")
	require.NoError(t, store.Save(context.Background(), entry))

	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestBoltStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entry := sampleEntry("receipt.pdf")
	require.NoError(t, store.Save(ctx, entry))

	got, err := store.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, "receipt.pdf", got.Filename)
	assert.Equal(t, "abc123", got.Digest)
	require.NotNil(t, got.Receipt)
	assert.Equal(t, 0.95, got.Receipt.Confidence)
	require.NotNil(t, got.Receipt.BruttoTotal)
	assert.Equal(t, 42.5, *got.Receipt.BruttoTotal)
}

func TestBoltStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, domain.ErrHistoryNotFound)
}

func TestBoltStore_ListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i, name := range []string{"first.pdf", "second.pdf", "third.pdf"} {
		entry := sampleEntry(name)
		entry.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, store.Save(ctx, entry))
	}

	entries, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "third.pdf", entries[0].Filename)
	assert.Equal(t, "second.pdf", entries[1].Filename)
	assert.Equal(t, "first.pdf", entries[2].Filename)
}

func TestBoltStore_ListLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		entry := sampleEntry("receipt.pdf")
		entry.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, store.Save(ctx, entry))
	}

	entries, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestBoltStore_ListEmpty(t *testing.T) {
	store := newTestStore(t)

	entries, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestBoltStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipts.db")
	ctx := context.Background()

	store, err := NewBoltStore(path)
	require.NoError(t, err)
	entry := sampleEntry("receipt.pdf")
	require.NoError(t, store.Save(ctx, entry))
	require.NoError(t, store.Close())

	reopened, err := NewBoltStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "receipt.pdf", got.Filename)
}
