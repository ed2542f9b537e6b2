// Package storage defines the blob storage abstraction the OurTransfer
// blob gateway serves uploads and downloads through, with in-memory,
// filesystem, and S3-compatible implementations in subpackages.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound indicates the requested object key does not exist
var ErrObjectNotFound = errors.New("object not found")

// ObjectMeta contains metadata about an object in storage
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
}

// UploadParams contains parameters for uploading an object
type UploadParams struct {
	ObjectKey   string
	ContentType string
}

// BlobStore defines the interface for storage backends
type BlobStore interface {
	// Upload uploads content under the given key
	Upload(ctx context.Context, objectKey string, reader io.Reader) error

	// UploadWithParams uploads content with additional parameters
	UploadWithParams(ctx context.Context, reader io.Reader, params UploadParams) error

	// Download returns a reader over the stored content
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// GetObjectMeta retrieves metadata for an object
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)

	// Delete deletes an object
	Delete(ctx context.Context, objectKey string) error
}
