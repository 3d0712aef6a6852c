package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/tndm-coder/fate-ardent-bot/internal/game"
	"github.com/tndm-coder/fate-ardent-bot/internal/storage"
	"github.com/tndm-coder/fate-ardent-bot/internal/storage/sqlstore"
)

const defaultStatePath = "fate_state.json"

type StorageBackend int

const (
	StorageBackendFile StorageBackend = iota
	StorageBackendSQLite
)

func (b *StorageBackend) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "file":
		*b = StorageBackendFile
	case "sqlite":
		*b = StorageBackendSQLite
	default:
		return fmt.Errorf("unknown storage backend: %s", text)
	}
	return nil
}

type StorageConfig struct {
	Backend StorageBackend `json:"backend" env:"BACKEND"`
	Path    string         `json:"path" env:"PATH"`
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()

	if c.Backend != StorageBackendFile && c.Backend != StorageBackendSQLite {
		el.Add(fmt.Errorf("storage backend %d is invalid", c.Backend))
	}

	return el.Err()
}

func (c *StorageConfig) path() string {
	if c.Path == "" {
		return defaultStatePath
	}
	return c.Path
}

func (c *StorageConfig) BuildStore() (storage.Storer[*game.Snapshot], error) {
	switch c.Backend {
	case StorageBackendFile:
		return storage.NewFileStore(c.path(), game.NewSnapshot), nil
	case StorageBackendSQLite:
		s, err := sqlstore.New(c.path())
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %v", c.Backend)
	}
}
