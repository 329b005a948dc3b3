package adapter

import "context"

// ObjectStorage is the blob-store port. Deletes are best-effort and
// independent of document mutations; failures are logged by callers,
// never propagated into record updates.
type ObjectStorage interface {
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
}
