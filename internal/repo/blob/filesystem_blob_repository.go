package blob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/axelsub/axelsub/internal/domain"
	"github.com/axelsub/axelsub/internal/infra/logging"
)

const dirPrefixLength = 2 // 16^2 = 256 directories

// FileSystemBlobRepositoryConfig holds configuration for the filesystem-based
// blob repository.
type FileSystemBlobRepositoryConfig struct {
	// Basedir is the root directory for blob storage
	Basedir string `env:"BASEDIR" default:"var/storage/blob"`
}

// FileSystemBlobRepositoryFactory creates a factory function that returns a
// new FileSystemRepository. The factory function implements the
// RepositoryFactory type.
func FileSystemBlobRepositoryFactory(cfg FileSystemBlobRepositoryConfig) RepositoryFactory {
	return func(subdir string) (Repository, error) {
		return NewFileSystemBlobRepository(subdir, cfg)
	}
}

// NewFileSystemBlobRepository creates a new FileSystemRepository storing into
// the given subdirectory below the configured base directory.
// Returns an error if the storage directory cannot be created.
func NewFileSystemBlobRepository(
	subdir string,
	cfg FileSystemBlobRepositoryConfig,
) (*FileSystemRepository, error) {
	log := logging.GetLogger("repo.blob.filesystem_repository").With(
		logging.Group("repo",
			"basedir", cfg.Basedir,
			"subdir", subdir,
		),
	)

	repo := &FileSystemRepository{
		basedir: filepath.Join(cfg.Basedir, subdir),
		log:     log,
		mu:      new(sync.RWMutex),
	}

	if err := os.MkdirAll(repo.basedir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir all: %w", err)
	}

	return repo, nil
}

// FileSystemRepository implements Repository using the local filesystem.
// Keys are hashed into a two-level directory hierarchy so a large number of
// blobs never lands in one directory. Writes go through a temp file plus
// rename so readers only ever see complete blobs.
type FileSystemRepository struct {
	basedir string
	log     logging.Logger
	mu      *sync.RWMutex
}

var _ Repository = (*FileSystemRepository)(nil)

func (fsRepo *FileSystemRepository) Exists(_ context.Context, key string) bool {
	fsRepo.mu.RLock()
	defer fsRepo.mu.RUnlock()

	_, err := os.Stat(fsRepo.filename(key))

	return err == nil
}

func (fsRepo *FileSystemRepository) Store(ctx context.Context, key string, data []byte) (err error) {
	filename := fsRepo.filename(key)

	defer func() {
		log := fsRepo.log.With(logging.Group("blob", "key", key, "filename", filename))
		if err != nil {
			log.ErrorContext(ctx, "blob store failed", "error", err)
		} else {
			log.DebugContext(ctx, "blob stored", "size", len(data))
		}
	}()

	fsRepo.mu.Lock()
	defer fsRepo.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("mkdir all: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(filename), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("write: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("sync: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("close: %w", err)
	}

	if err := os.Rename(tmp.Name(), filename); err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("rename: %w", err)
	}

	return nil
}

func (fsRepo *FileSystemRepository) Fetch(ctx context.Context, key string) (data []byte, err error) {
	filename := fsRepo.filename(key)

	defer func() {
		log := fsRepo.log.With(logging.Group("blob", "key", key, "filename", filename))
		if err != nil {
			log.DebugContext(ctx, "blob fetch failed", "error", err)
		} else {
			log.DebugContext(ctx, "blob fetched", "size", len(data))
		}
	}()

	fsRepo.mu.RLock()
	defer fsRepo.mu.RUnlock()

	data, err = os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrBlobNotFound
		}

		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

func (fsRepo *FileSystemRepository) Delete(ctx context.Context, key string) (err error) {
	filename := fsRepo.filename(key)

	defer func() {
		log := fsRepo.log.With(logging.Group("blob", "key", key, "filename", filename))
		if err != nil {
			log.ErrorContext(ctx, "blob delete failed", "error", err)
		} else {
			log.DebugContext(ctx, "blob deleted")
		}
	}()

	fsRepo.mu.Lock()
	defer fsRepo.mu.Unlock()

	if err := os.Remove(filename); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove: %w", err)
	}

	return nil
}

// filename maps a key to its path:
//
//	<basedir>/5f/5f56692f0df9ff68607abdb054943ed86bcee7c9f2a2d01fdcb27032f70f3fe9
func (fsRepo *FileSystemRepository) filename(key string) string {
	sum := sha256.Sum256([]byte(key))
	basename := hex.EncodeToString(sum[:])

	return filepath.Join(fsRepo.basedir, basename[:dirPrefixLength], basename)
}
