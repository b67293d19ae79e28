// Package objectstore_test tests the NATS object store implementation.
package objectstore_test

import (
	"context"
	"testing"

	"github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/audiobook-service/internal/core"
	"github.com/book-expert/audiobook-service/internal/objectstore"
)

// startTestStore starts an in-memory NATS server and returns a store bound
// to a fresh bucket.
func startTestStore(t *testing.T) *objectstore.NatsObjectStore {
	t.Helper()

	opts := test.DefaultTestOptions
	opts.Port = -1 // Use a random port
	opts.JetStream = true
	opts.StoreDir = t.TempDir()
	natsServer := test.RunServer(&opts)

	natsConnection, err := nats.Connect(natsServer.ClientURL())
	require.NoError(t, err)

	t.Cleanup(func() {
		natsConnection.Close()
		natsServer.Shutdown()
	})

	jetstreamContext, err := natsConnection.JetStream()
	require.NoError(t, err)

	store, err := objectstore.New(jetstreamContext, "test-bucket")
	require.NoError(t, err)

	return store
}

func TestNatsObjectStore_UploadDownload(t *testing.T) {
	t.Parallel()

	store := startTestStore(t)
	ctx := context.Background()

	key := "user-1/job-1.mp3"
	uploadData := []byte("assembled audio bytes")

	err := store.Upload(ctx, key, uploadData, "audio/mpeg")
	require.NoError(t, err)

	downloadData, err := store.Download(ctx, key)
	require.NoError(t, err)
	require.Equal(t, uploadData, downloadData)
}

func TestNatsObjectStore_DownloadMissing(t *testing.T) {
	t.Parallel()

	store := startTestStore(t)

	_, err := store.Download(context.Background(), "missing-key")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestNatsObjectStore_DeleteIdempotent(t *testing.T) {
	t.Parallel()

	store := startTestStore(t)
	ctx := context.Background()

	key := "user-1/job-2.mp3"

	err := store.Upload(ctx, key, []byte("audio"), "audio/mpeg")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, key))

	// Deleting an already-deleted key must succeed.
	require.NoError(t, store.Delete(ctx, key))

	// Deleting a key that never existed must also succeed.
	require.NoError(t, store.Delete(ctx, "never-existed"))

	_, err = store.Download(ctx, key)
	require.ErrorIs(t, err, core.ErrNotFound)
}
