package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	key := UploadKey("sup-1", "imp_1", "catalog.csv")
	content := []byte("sku,gtin,price\n")

	require.NoError(t, store.Put(ctx, key, content, &Metadata{OriginalName: "catalog.csv", SupplierID: "sup-1"}))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	meta, err := store.Stat(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "catalog.csv", meta.OriginalName)
	assert.Equal(t, ComputeChecksum(content), meta.Checksum)
	assert.Equal(t, int64(len(content)), meta.Size)
	assert.False(t, meta.UploadedAt.IsZero())

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Stat(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, key))
}

func TestLocalStorage_StatWithoutMetadata(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "a/b.csv", []byte("xyz"), nil))
	meta, err := store.Stat(ctx, "a/b.csv")
	require.NoError(t, err)
	assert.Equal(t, "b.csv", meta.OriginalName)
	assert.Equal(t, int64(3), meta.Size)
}

func TestLocalStorage_KeysStayUnderBase(t *testing.T) {
	base := t.TempDir()
	store, err := NewLocalStorage(base)
	require.NoError(t, err)

	p, err := store.keyToPath("../../etc/passwd")
	require.NoError(t, err)
	assert.Contains(t, p, base)

	_, err = store.keyToPath("/")
	assert.Error(t, err)
}

func TestUploadKey(t *testing.T) {
	tests := []struct {
		filename string
		expected string
	}{
		{"catalog.csv", "uploads/sup-1/imp_1/catalog.csv"},
		{"../../evil.csv", "uploads/sup-1/imp_1/evil.csv"},
		{`C:\Users\me\prices.xlsx`, "uploads/sup-1/imp_1/prices.xlsx"},
		{"", "uploads/sup-1/imp_1/catalog"},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.expected, UploadKey("sup-1", "imp_1", tt.filename))
		})
	}
}
