package approvals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the approval map in one JSON file: {"7454": true, ...}.
// A single mapping from review id to bool is the entire persistence need,
// so writes rewrite the whole file via a temp-file rename.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore { return &FileStore{path: path} }

func (s *FileStore) Get(ctx context.Context) (map[int64]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *FileStore) Set(ctx context.Context, id int64, shown bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.read()
	if err != nil {
		return err
	}
	m[id] = shown
	return s.write(m)
}

func (s *FileStore) read() (map[int64]bool, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[int64]bool{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read approvals file: %w", err)
	}
	m := map[int64]bool{}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("decode approvals file: %w", err)
		}
	}
	return m, nil
}

func (s *FileStore) write(m map[int64]bool) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
