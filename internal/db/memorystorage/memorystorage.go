// Package memorystorage provides a purely in-memory storage backend,
// used when neither a database DSN nor a file path is configured, and by
// tests.
package memorystorage

import (
	"github.com/shortly-app/shortly/internal/db/jsondb"
)

// MemoryStorage is a jsondb store with no backing file.
type MemoryStorage struct {
	*jsondb.JSONDB
}

// New creates an empty in-memory storage.
func New() (*MemoryStorage, error) {
	db, err := jsondb.New("")
	if err != nil {
		return nil, err
	}

	return &MemoryStorage{JSONDB: db}, nil
}
