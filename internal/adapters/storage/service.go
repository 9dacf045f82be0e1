// Package storage provides a small interface over S3-compatible object
// storage. The webhook module uses it to archive raw deliveries.
package storage

import "context"

// StorageService defines the object storage operations the application needs.
type StorageService interface {
	// EnsureBucketExists creates the bucket if it doesn't exist.
	EnsureBucketExists(ctx context.Context, bucket string) error

	// PutObject stores data under key. The caller picks the key.
	PutObject(ctx context.Context, bucket, key, contentType string, data []byte) error

	// ValidateContentType checks if the content type may be stored.
	ValidateContentType(contentType string) error

	// ValidateFileSize checks if the object size is within limits.
	ValidateFileSize(sizeBytes int64) error
}

// Config defines the configuration interface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	IsMinIOEnabled() bool
}
