package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"
)

// mockDoc implements ValidatingSpec for testing FileStore
type mockDoc struct {
	Name   string         `json:"name"`
	Values map[string]int `json:"values"`
}

func newMockDoc() *mockDoc {
	return &mockDoc{Values: map[string]int{}}
}

func (d *mockDoc) Validate() error {
	if d == nil {
		return errors.New("document is nil")
	}
	for k, v := range d.Values {
		if v < 0 {
			return errors.New("negative value for " + k)
		}
	}
	return nil
}

func writeFile(t *testing.T, path string, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
}

func TestFileStore_Load(t *testing.T) {
	tests := map[string]struct {
		contents *string
		expName  string
		expLen   int
	}{
		"missing file": {
			contents: nil,
		},
		"empty file": {
			contents: ptr(""),
		},
		"invalid json": {
			contents: ptr(`{invalid json`),
		},
		"null document": {
			contents: ptr(`null`),
		},
		"wrong shape": {
			contents: ptr(`[1, 2, 3]`),
		},
		"fails validation": {
			contents: ptr(`{"name": "bad", "values": {"a": -1}}`),
		},
		"valid document": {
			contents: ptr(`{"name": "party", "values": {"a": 1, "b": 2}}`),
			expName:  "party",
			expLen:   2,
		},
		"missing keys default": {
			contents: ptr(`{"name": "party"}`),
			expName:  "party",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "state.json")
			if tt.contents != nil {
				writeFile(t, path, *tt.contents)
			}

			store := NewFileStore(path, newMockDoc)
			doc, err := store.Load(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if doc == nil {
				t.Fatal("expected a document, got nil")
			}

			testutil.AssertEqual(t, "name", doc.Name, tt.expName)
			testutil.AssertEqual(t, "values length", len(doc.Values), tt.expLen)
		})
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewFileStore(path, newMockDoc)

	doc := &mockDoc{Name: "Фэйт", Values: map[string]int{"a": 1, "b": 2}}
	if err := store.Save(ctx, doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "name", loaded.Name, "Фэйт")
	testutil.AssertEqual(t, "values", loaded.Values, doc.Values)

	// Saving what was loaded and loading again changes nothing
	if err := store.Save(ctx, loaded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "reloaded", *again, *loaded)

	_, err = os.Stat(path + ".tmp")
	if !os.IsNotExist(err) {
		t.Errorf("temp file should not remain after save, stat err: %v", err)
	}
}

func TestFileStore_SaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.json")
	store := NewFileStore(path, newMockDoc)

	if err := store.Save(context.Background(), newMockDoc()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected state file to exist: %v", err)
	}
	testutil.AssertEqual(t, "path", store.Path(), path)
}

func TestFileStore_SaveErrors(t *testing.T) {
	tests := map[string]struct {
		setup  func(t *testing.T) string
		doc    *mockDoc
		expErr string
	}{
		"invalid document": {
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "state.json")
			},
			doc:    &mockDoc{Values: map[string]int{"a": -5}},
			expErr: "validating document",
		},
		"parent is a file": {
			setup: func(t *testing.T) string {
				parent := filepath.Join(t.TempDir(), "file")
				writeFile(t, parent, "x")
				return filepath.Join(parent, "state.json")
			},
			doc:    newMockDoc(),
			expErr: "creating state directory",
		},
		"target is a directory": {
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "state.json")
				if err := os.MkdirAll(filepath.Join(path, "child"), 0755); err != nil {
					t.Fatalf("failed to create dir: %v", err)
				}
				return path
			},
			doc:    newMockDoc(),
			expErr: "renaming temp file",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			store := NewFileStore(tt.setup(t), newMockDoc)
			err := store.Save(context.Background(), tt.doc)
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestAtomicWrite_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	writeFile(t, path, "old contents")

	if err := atomicWrite(path, []byte("new"), 0644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading file: %v", err)
	}
	testutil.AssertEqual(t, "contents", string(data), "new")
}

func ptr[T any](v T) *T {
	return &v
}
