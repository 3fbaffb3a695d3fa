package filestore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	store := &localStore{dir: t.TempDir()}
	ctx := context.Background()

	payload := []byte("batch record content")
	require.NoError(t, store.Save(ctx, "uploads/batch.pdf", NewBytesReader(payload), int64(len(payload))))

	reader, err := store.Open(ctx, "uploads/batch.pdf")
	require.NoError(t, err)
	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	require.Equal(t, payload, got)

	require.NoError(t, store.Delete(ctx, "uploads/batch.pdf"))
	_, err = store.Open(ctx, "uploads/batch.pdf")
	require.Error(t, err)

	// deleting a missing key is not an error
	require.NoError(t, store.Delete(ctx, "uploads/batch.pdf"))
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store := &localStore{dir: t.TempDir()}
	ctx := context.Background()

	_, err := store.Open(ctx, "../etc/passwd")
	require.Error(t, err)
	require.Error(t, store.Save(ctx, "a/../../b", NewBytesReader([]byte("x")), 1))
	_, err = store.Open(ctx, "")
	require.Error(t, err)
}
