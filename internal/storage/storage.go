package storage

import (
	"context"
	"io"
	"time"
)

// Package storage holds the S3-compatible blob store client used for PDF
// content. It has no knowledge of authorization: callers pass opaque blob
// references and the proxy layer decides who may fetch what.

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the
// implementation will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
// ContentType is the type reported by the backend, which may not match the
// actual payload (a gateway can return an HTML error page with a 200); the
// proxy layer verifies magic bytes rather than trusting this field.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is an S3-compatible object storage client interface.
// Methods use context and streaming readers/writers; no local disk is used.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to download the
	// object without service credentials. The proxy uses it as a redirect
	// fallback when the fetched payload is unusable.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
