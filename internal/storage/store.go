package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

type ValidatingSpec interface {
	Validate() error
}

// Storer loads and saves a whole document as one unit.
type Storer[T ValidatingSpec] interface {
	Load(context.Context) (T, error)
	Save(context.Context, T) error
}

type Identifier string

func (id Identifier) String() string {
	return string(id)
}

// FileStore keeps a single JSON document on disk. Every Save replaces the
// file in full; there is no partial write path.
type FileStore[T ValidatingSpec] struct {
	path  string
	empty func() T
}

// NewFileStore creates a store backed by the file at path. empty builds the
// document returned when the file is missing or cannot be parsed.
func NewFileStore[T ValidatingSpec](path string, empty func() T) *FileStore[T] {
	return &FileStore[T]{
		path:  path,
		empty: empty,
	}
}

func (s *FileStore[T]) Path() string {
	return s.path
}

// Load reads the document. A missing, unreadable or malformed file is not an
// error: the store falls back to an empty document and logs a warning.
func (s *FileStore[T]) Load(ctx context.Context) (T, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.InfoContext(ctx, "state file not found, starting empty", "path", s.path)
		return s.empty(), nil
	}
	if err != nil {
		slog.WarnContext(ctx, "failed to read state, starting empty", "path", s.path, "error", err)
		return s.empty(), nil
	}

	doc := s.empty()
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.WarnContext(ctx, "failed to parse state, starting empty", "path", s.path, "error", err)
		return s.empty(), nil
	}

	if err := doc.Validate(); err != nil {
		slog.WarnContext(ctx, "invalid state, starting empty", "path", s.path, "error", err)
		return s.empty(), nil
	}

	return doc, nil
}

// Save overwrites the stored document. Failures are returned as-is and are
// not retried.
func (s *FileStore[T]) Save(ctx context.Context, doc T) error {
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("validating document: %w", err)
	}

	jsonData, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling json: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating state directory: %w", err)
		}
	}

	return atomicWrite(s.path, jsonData, 0644)
}

// atomicWrite writes data to a temp file then renames it to the target path.
// This prevents partial or empty files if the process is interrupted.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil {
			slog.Warn("failed to remove temp file after rename failure", "path", tmp, "error", removeErr)
		}
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
