package storage

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/gridlayout/pkg/errors"
	"github.com/matzehuels/gridlayout/pkg/grid"
)

const backendFile = "file"

// FileStore keeps each layout as an indented JSON file named <id>.json.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file store rooted at baseDir, creating it if
// needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "file store needs a directory")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create layout dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Path returns the file that holds the layout with the given id.
func (s *FileStore) Path(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

// Dir returns the base directory.
func (s *FileStore) Dir() string { return s.baseDir }

func (s *FileStore) Get(ctx context.Context, id string) (l *grid.Layout, err error) {
	start := time.Now()
	defer func() { observeLoad(ctx, backendFile, id, start, err) }()
	if err := errors.ValidateLayoutID(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return readLayoutFile(s.Path(id), id)
}

func readLayoutFile(path, id string) (*grid.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NotFound(id)
		}
		return nil, storageError(err, "read", id)
	}
	var l grid.Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "parse layout file %s", path)
	}
	return &l, nil
}

func (s *FileStore) Save(ctx context.Context, l *grid.Layout) (out *grid.Layout, err error) {
	start := time.Now()
	defer func() { observeSave(ctx, backendFile, layoutID(l), start, err) }()

	out, err = prepare(l)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, storageError(err, "encode", out.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.baseDir, ".layout-*")
	if err != nil {
		return nil, storageError(err, "save", out.ID)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, storageError(err, "save", out.ID)
	}
	if err := tmp.Close(); err != nil {
		return nil, storageError(err, "save", out.ID)
	}
	if err := os.Rename(tmp.Name(), s.Path(out.ID)); err != nil {
		return nil, storageError(err, "save", out.ID)
	}
	return out, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateLayoutID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path(id)); err != nil && !os.IsNotExist(err) {
		return storageError(err, "delete", id)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read layout dir")
	}

	var out []Summary
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, ".") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		l, err := readLayoutFile(filepath.Join(s.baseDir, name), id)
		if err != nil {
			continue
		}
		out = append(out, Summarize(l))
	}
	sortSummaries(out)
	return out, nil
}

func (s *FileStore) Close() error { return nil }

func sortSummaries(out []Summary) {
	slices.SortFunc(out, func(a, b Summary) int {
		return cmp.Or(b.UpdatedAt.Compare(a.UpdatedAt), cmp.Compare(a.ID, b.ID))
	})
}

func layoutID(l *grid.Layout) string {
	if l == nil {
		return ""
	}
	return l.ID
}

var _ Store = (*FileStore)(nil)
