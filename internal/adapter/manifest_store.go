package adapter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	m "github.com/johnconna/pyforce-evaluation-v2/internal/model"
)

// ManifestStore appends harvested-file records to an on-disk manifest so a
// batch can be audited after the fact without holding every record in
// memory. Records become durable as they are appended; Close is idempotent.
type ManifestStore interface {
	Len() uint64
	Path() string
	Append(items []m.MergedFile) error
	Close() error
}

type manifestStoreImpl struct {
	path   string
	file   *os.File
	enc    *json.Encoder
	mu     sync.Mutex
	length uint64
}

// NewManifestStore opens (or creates) an append-only JSON-lines manifest at
// path. Re-running a batch appends to the existing manifest.
func NewManifestStore(path string) (ManifestStore, error) {
	// #nosec G304 - manifest lives inside the operator's reports directory
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open manifest %s: %w", path, err)
	}

	return &manifestStoreImpl{
		path: path,
		file: file,
		enc:  json.NewEncoder(file),
	}, nil
}

// Len implements ManifestStore.
func (s *manifestStoreImpl) Len() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.length
}

// Path implements ManifestStore.
func (s *manifestStoreImpl) Path() string {
	return s.path
}

// Append implements ManifestStore.
func (s *manifestStoreImpl) Append(items []m.MergedFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		if err := s.enc.Encode(item); err != nil {
			slog.Error("failed to encode manifest record", "path", s.path, "index", s.length, "error", err)
			return fmt.Errorf("failed to encode manifest record: %w", err)
		}

		s.length++
	}

	return nil
}

// Close implements ManifestStore.
func (s *manifestStoreImpl) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}

	err := s.file.Close()
	s.file = nil

	return err
}
