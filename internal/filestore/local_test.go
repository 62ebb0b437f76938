package filestore

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/teamboardhq/teamboard/internal/config"
)

func newLocalStore(t *testing.T) Store {
	t.Helper()
	store, err := New(config.FileStoreConfig{Type: "local", Dir: t.TempDir()})
	require.NoError(t, err)
	return store
}

func readAll(t *testing.T, store Store, key string) string {
	t.Helper()
	r, err := store.Open(context.Background(), key)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}

func TestLocalStoreSaveOpen(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a.docx", strings.NewReader("hello"), 5))
	require.Equal(t, "hello", readAll(t, store, "a.docx"))

	// Overwrite replaces content in place.
	require.NoError(t, store.Save(ctx, "a.docx", strings.NewReader("world!"), 6))
	require.Equal(t, "world!", readAll(t, store, "a.docx"))

	size, err := store.Size(ctx, "a.docx")
	require.NoError(t, err)
	require.EqualValues(t, 6, size)
}

func TestLocalStoreCopy(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "src.docx", strings.NewReader("content"), 7))
	require.NoError(t, store.Copy(ctx, "src.docx", "1_v1_src.docx"))
	require.Equal(t, "content", readAll(t, store, "1_v1_src.docx"))

	// Snapshot stays intact when the source changes afterwards.
	require.NoError(t, store.Save(ctx, "src.docx", strings.NewReader("changed"), 7))
	require.Equal(t, "content", readAll(t, store, "1_v1_src.docx"))

	require.Error(t, store.Copy(ctx, "missing.docx", "dst.docx"))
}

func TestLocalStoreExistsDelete(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	exists, err := store.Exists(ctx, "a.docx")
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, store.Save(ctx, "a.docx", strings.NewReader("x"), 1))
	exists, err = store.Exists(ctx, "a.docx")
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, store.Delete(ctx, "a.docx"))
	exists, err = store.Exists(ctx, "a.docx")
	require.NoError(t, err)
	require.False(t, exists)

	// Deleting a missing key is not an error.
	require.NoError(t, store.Delete(ctx, "a.docx"))
}

func TestLocalStoreRejectsPathKeys(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()
	for _, key := range []string{"", "a/b", `a\b`, "..", "x..y"} {
		require.Error(t, store.Save(ctx, key, strings.NewReader("x"), 1), "key %q", key)
	}
}
