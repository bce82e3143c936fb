package storage

import (
	"context"
	"io"
)

// FileUploader abstracts object storage for tournament banner images.
type FileUploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error

	Delete(ctx context.Context, key string) error

	// GetPublicURL returns the public URL for a stored object, or ""
	// when one cannot be built.
	GetPublicURL(key string) string
}
