package memory_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssgl/ourtransfer/pkg/transfer/storage"
	memorystorage "github.com/ssgl/ourtransfer/pkg/transfer/storage/memory"
)

func TestMemoryBackend(t *testing.T) {
	backend := memorystorage.New()
	ctx := context.Background()
	testKey := "temporales/1748779200000-report.pdf"
	testData := "Hello, World! This is test data."

	t.Run("Upload", func(t *testing.T) {
		err := backend.Upload(ctx, testKey, strings.NewReader(testData))
		assert.NoError(t, err)
	})

	t.Run("GetObjectMeta", func(t *testing.T) {
		meta, err := backend.GetObjectMeta(ctx, testKey)
		require.NoError(t, err)
		assert.Equal(t, testKey, meta.Key)
		assert.Equal(t, int64(len(testData)), meta.Size)
		assert.Equal(t, "application/octet-stream", meta.ContentType)
	})

	t.Run("Download", func(t *testing.T) {
		reader, err := backend.Download(ctx, testKey)
		require.NoError(t, err)
		defer reader.Close()

		downloaded, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, testData, string(downloaded))
	})

	t.Run("UploadWithParams", func(t *testing.T) {
		key2 := "temporales/1748779200001-a.pdf"
		err := backend.UploadWithParams(ctx, strings.NewReader(testData), storage.UploadParams{
			ObjectKey:   key2,
			ContentType: "application/pdf",
		})
		require.NoError(t, err)

		meta, err := backend.GetObjectMeta(ctx, key2)
		require.NoError(t, err)
		assert.Equal(t, "application/pdf", meta.ContentType)
	})

	t.Run("Delete", func(t *testing.T) {
		err := backend.Delete(ctx, testKey)
		require.NoError(t, err)

		_, err = backend.Download(ctx, testKey)
		assert.ErrorIs(t, err, storage.ErrObjectNotFound)
	})
}

func TestMemoryBackendNotFound(t *testing.T) {
	backend := memorystorage.New()
	ctx := context.Background()

	_, err := backend.Download(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)

	_, err = backend.GetObjectMeta(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)

	err = backend.Delete(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestMemoryBackendOverwrite(t *testing.T) {
	backend := memorystorage.New()
	ctx := context.Background()

	require.NoError(t, backend.Upload(ctx, "key", strings.NewReader("first")))
	require.NoError(t, backend.Upload(ctx, "key", strings.NewReader("second version")))

	meta, err := backend.GetObjectMeta(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, int64(len("second version")), meta.Size)
}
