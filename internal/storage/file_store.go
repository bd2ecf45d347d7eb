package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const backupSuffix = ".bak"

// FileStore keeps each document as a file in a directory
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

// Load reads a document, falling back to its backup when the primary is unreadable
func (s *FileStore) Load(ctx context.Context, name string) ([]byte, error) {
	p := s.path(name)
	data, err := os.ReadFile(p)
	if err == nil && json.Valid(data) {
		return data, nil
	}

	bak, bakErr := os.ReadFile(p + backupSuffix)
	if bakErr == nil && json.Valid(bak) {
		log.Printf("[Storage] %s unreadable, recovered from backup", name)
		return bak, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err == nil {
		return nil, fmt.Errorf("%s is corrupt and has no usable backup", name)
	}
	return nil, fmt.Errorf("failed to read %s: %w", name, err)
}

// Save writes to a temp file, fsyncs it, keeps the previous version as .bak and renames into place
func (s *FileStore) Save(ctx context.Context, name string, data []byte) error {
	p := s.path(name)

	tmp, err := os.CreateTemp(s.dir, filepath.Base(name)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}

	if err := backupPrevious(p); err != nil {
		log.Printf("[Storage] Warning: failed to back up %s: %v", name, err)
	}

	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}

// Names lists stored documents, excluding backups and temp files
func (s *FileStore) Names(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list data dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || !strings.HasSuffix(n, ".json") {
			continue
		}
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// backupPrevious copies the current file to .bak unless it is missing or corrupt
func backupPrevious(p string) error {
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if !json.Valid(data) {
		return nil
	}
	return os.WriteFile(p+backupSuffix, data, 0o644)
}
