package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned by backends when a key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Blob is the raw object store behind attachments.
type Blob interface {
	Name() string
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
	Health(ctx context.Context) error
}
