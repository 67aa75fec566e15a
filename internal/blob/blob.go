// Package blob stores recipe images in an S3-compatible bucket. Image storage
// is an independent collaborator: a failed upload never affects recipe costing.
package blob

import (
	"context"
	"io"
)

// Store uploads binary objects and returns their public URL.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}
