package blob

import "context"

// Repository defines the interface for opaque binary blob storage. Keys are
// caller-chosen strings; the repository never interprets the payload.
type Repository interface {
	// Exists checks if a blob with the given key exists.
	Exists(ctx context.Context, key string) bool

	// Store persists a blob under the given key, replacing any previous
	// content atomically.
	Store(ctx context.Context, key string, data []byte) error

	// Fetch retrieves a blob by its key.
	// Returns ErrBlobNotFound if no blob is stored under the key.
	Fetch(ctx context.Context, key string) ([]byte, error)

	// Delete removes the blob with the given key. Unknown keys are ignored.
	Delete(ctx context.Context, key string) error
}

// RepositoryFactory is a function that creates a new Repository instance.
// The name parameter is the subdirectory the repository stores into.
type RepositoryFactory func(name string) (Repository, error)
