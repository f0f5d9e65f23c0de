// Package storage keeps player photos in an S3-compatible object store.
package storage

import (
	"context"
	"io"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader stores objects under caller-chosen keys and serves them from a
// public base URL.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	// GetPublicURL returns the public address of key, or "" for an empty key.
	GetPublicURL(key string) string
}
