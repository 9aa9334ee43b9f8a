// Package artifact persists small pipeline artifacts (the retrain flag,
// validation reports, the metrics history blob) as opaque byte blobs keyed
// by name. Reads are retried with exponential backoff; a missing key is a
// distinct condition callers can act on without retrying.
package artifact

import (
	"context"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/cenkalti/backoff/v4"

	"github.com/energyops/forecast-guard/internal/errors"
)

// ErrNotFound is returned when no artifact exists under the requested key.
var ErrNotFound = stderrors.New("artifact: not found")

// Store is a keyed blob store for pipeline artifacts.
type Store interface {
	// Read returns the blob stored under key, or ErrNotFound.
	Read(ctx context.Context, key string) ([]byte, error)

	// Write stores the blob under key, replacing any previous value.
	Write(ctx context.Context, key string, data []byte) error
}

// FSStore stores artifacts as files under a base directory.
type FSStore struct {
	dir    string
	policy errors.RetryPolicy
	logger *slog.Logger
}

// NewFSStore creates a filesystem-backed store rooted at dir. The directory
// is created on first write.
func NewFSStore(dir string, policy errors.RetryPolicy, logger *slog.Logger) *FSStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSStore{dir: dir, policy: policy, logger: logger.With(slog.String("component", "artifact_store"))}
}

// Read loads the blob under key, retrying transient failures. A missing
// file short-circuits the retry loop and returns ErrNotFound.
func (s *FSStore) Read(ctx context.Context, key string) ([]byte, error) {
	path := filepath.Join(s.dir, key)

	var data []byte
	err := errors.Retry(ctx, s.policy, func() error {
		var readErr error
		data, readErr = os.ReadFile(path)
		if readErr != nil {
			if stderrors.Is(readErr, fs.ErrNotExist) {
				return backoff.Permanent(ErrNotFound)
			}
			s.logger.WarnContext(ctx, "artifact read failed, retrying",
				slog.String("key", key),
				slog.String("error", readErr.Error()))
			return readErr
		}
		return nil
	})
	if err != nil {
		if stderrors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.New(errors.ClassStorageRead, "artifact_store", "read "+key, err)
	}
	return data, nil
}

// Write stores the blob under key atomically: the data lands in a temp file
// first and is renamed into place so readers never see a partial write.
func (s *FSStore) Write(ctx context.Context, key string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.New(errors.ClassStorageWrite, "artifact_store", "create dir", err)
	}

	path := filepath.Join(s.dir, key)
	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(key)+".tmp-*")
	if err != nil {
		return errors.New(errors.ClassStorageWrite, "artifact_store", "write "+key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.New(errors.ClassStorageWrite, "artifact_store", "write "+key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.New(errors.ClassStorageWrite, "artifact_store", "write "+key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.New(errors.ClassStorageWrite, "artifact_store", "write "+key, err)
	}

	s.logger.DebugContext(ctx, "artifact written",
		slog.String("key", key),
		slog.Int("bytes", len(data)))
	return nil
}

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte

	// ReadErr and WriteErr, when set, force failures for fault injection.
	ReadErr  error
	WriteErr error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Read(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ReadErr != nil {
		return nil, errors.New(errors.ClassStorageRead, "memory_store", "read "+key, s.ReadErr)
	}
	data, ok := s.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *MemoryStore) Write(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return errors.New(errors.ClassStorageWrite, "memory_store", "write "+key, s.WriteErr)
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	s.blobs[key] = stored
	return nil
}
