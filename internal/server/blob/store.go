// Package blob stores clip audio in S3-compatible object storage.
package blob

import (
	"context"
	"io"
)

// Object describes a stored blob.
type Object struct {
	Pathname string
	URL      string
	Size     int64
}

// Store is the blob storage used by the clip and account services.
type Store interface {
	Put(ctx context.Context, pathname, contentType string, body io.Reader, size int64) (*Object, error)
	// Delete removes pathname. Deleting a missing object succeeds.
	Delete(ctx context.Context, pathname string) error
	// Ping reports whether the bucket is reachable.
	Ping(ctx context.Context) error
}
