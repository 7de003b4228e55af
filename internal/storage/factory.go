package storage

import (
	"fmt"

	"swypesim/internal/model"
)

// NewStore opens the run and network store named by kind. The sqlite backend
// is only available in binaries built with the sqlite tag.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("%w: unsupported store backend %q (want memory or sqlite)", model.ErrInvalidInput, kind)
	}
}

// CloseIfSupported releases stores that hold external resources.
func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
