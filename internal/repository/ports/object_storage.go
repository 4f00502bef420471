package ports

import (
	"context"
	"io"
)

type ObjectStorage interface {
	// Upload stores the object and returns its public URL.
	Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error)

	// Remove deletes the object by key. Callers treat failures as best-effort
	// cleanup: the database record is already gone by the time Remove runs.
	Remove(ctx context.Context, bucket, objectName string) error
}
