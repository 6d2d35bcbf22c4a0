// Package blobstore adapts an S3-compatible object storage service. File
// bytes are addressed by an opaque key; callers never see bucket internals.
package blobstore

import (
	"context"
	"io"
	"time"
)

// Store is the adapter contract the services depend on.
type Store interface {
	// Put writes the blob under key. size is the declared content length.
	Put(ctx context.Context, key string, contentType string, body io.Reader, size int64) error

	// Get returns a reader over the blob's bytes. The caller closes it.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the blob. Deleting a missing key is not an error in S3.
	Delete(ctx context.Context, key string) error

	// PresignGet returns a short-lived URL that downloads the blob as an
	// attachment named filename.
	PresignGet(ctx context.Context, key string, filename string, expires time.Duration) (string, error)
}
