package blob_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyhub/pkg/blob"
)

func TestMemoryStorage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("put get delete", func(t *testing.T) {
		t.Parallel()
		store := blob.NewMemoryStorage()

		require.NoError(t, store.Put(ctx, "attachments", "root/m1", []byte("one")))
		data, err := store.Get(ctx, "attachments", "root/m1")
		require.NoError(t, err)
		assert.Equal(t, "one", string(data))

		require.NoError(t, store.Delete(ctx, "attachments", "root/m1"))
		_, err = store.Get(ctx, "attachments", "root/m1")
		assert.ErrorIs(t, err, blob.ErrNotFound)

		// deleting twice is fine
		assert.NoError(t, store.Delete(ctx, "attachments", "root/m1"))
	})

	t.Run("stored bytes are isolated from caller", func(t *testing.T) {
		t.Parallel()
		store := blob.NewMemoryStorage()
		data := []byte("abc")
		require.NoError(t, store.Put(ctx, "c", "k", data))
		data[0] = 'x'

		got, err := store.Get(ctx, "c", "k")
		require.NoError(t, err)
		assert.Equal(t, "abc", string(got))
	})

	t.Run("list by prefix", func(t *testing.T) {
		t.Parallel()
		store := blob.NewMemoryStorage()
		require.NoError(t, store.Put(ctx, "attachments", "tenant-a/2", nil))
		require.NoError(t, store.Put(ctx, "attachments", "tenant-a/1", nil))
		require.NoError(t, store.Put(ctx, "attachments", "tenant-b/1", nil))
		require.NoError(t, store.Put(ctx, "other", "tenant-a/3", nil))

		keys, err := store.List(ctx, "attachments", "tenant-a/")
		require.NoError(t, err)
		assert.Equal(t, []string{"tenant-a/1", "tenant-a/2"}, keys)
	})

	t.Run("rejects traversal", func(t *testing.T) {
		t.Parallel()
		store := blob.NewMemoryStorage()
		assert.ErrorIs(t, store.Put(ctx, "attachments", "../secret", nil), blob.ErrInvalidKey)
		assert.ErrorIs(t, store.Put(ctx, "", "k", nil), blob.ErrInvalidKey)
	})
}

func TestParseReference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		ref       string
		container string
		key       string
		wantErr   bool
	}{
		{name: "plain path", ref: "files/report.pdf", container: "files", key: "report.pdf"},
		{name: "nested key", ref: "/files/2024/report.pdf", container: "files", key: "2024/report.pdf"},
		{name: "absolute url", ref: "https://cdn.example.com/files/a/b.png", container: "files", key: "a/b.png"},
		{name: "no key", ref: "files", wantErr: true},
		{name: "empty", ref: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			container, key, err := blob.ParseReference(tt.ref)
			if tt.wantErr {
				assert.ErrorIs(t, err, blob.ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.container, container)
			assert.Equal(t, tt.key, key)
		})
	}
}
