// Package jsondb provides a file-backed implementation of the storage
// interface. The whole dataset is held in memory and flushed to a JSON file
// on Close, which makes it suitable for development and small deployments.
package jsondb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/thoas/go-funk"

	"github.com/shortly-app/shortly/internal/db/storage"
	"github.com/shortly-app/shortly/internal/link"
	"github.com/shortly-app/shortly/internal/user"
)

// userRecord is the persisted shape of a user. It is distinct from
// user.User because the API JSON tags hide the password hash, which must
// survive a restart here.
type userRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

type dbFile struct {
	Users []userRecord `json:"users"`
	Links []*link.Link `json:"links"`
}

// JSONDB is a file-backed storage.Storage implementation.
type JSONDB struct {
	fileName string

	mu    sync.RWMutex
	users map[string]*user.User // keyed by user ID
	links map[string]*link.Link // keyed by short code
}

// New loads the database from fileName, creating an empty one when the file
// does not exist yet. An empty fileName keeps the store purely in memory.
func New(fileName string) (*JSONDB, error) {
	db := &JSONDB{
		fileName: fileName,
		users:    map[string]*user.User{},
		links:    map[string]*link.Link{},
	}

	if fileName == "" {
		return db, nil
	}

	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return db, nil
		}
		return nil, fmt.Errorf("reading database file: %w", err)
	}

	var contents dbFile
	if err := json.Unmarshal(data, &contents); err != nil {
		return nil, fmt.Errorf("parsing database file: %w", err)
	}

	for _, record := range contents.Users {
		db.users[record.ID] = &user.User{
			ID:           record.ID,
			Name:         record.Name,
			Email:        record.Email,
			PasswordHash: record.PasswordHash,
			CreatedAt:    record.CreatedAt,
		}
	}
	for _, lnk := range contents.Links {
		db.links[lnk.Code] = lnk
	}

	return db, nil
}

// CreateUser persists a new user, assigning a UUID when the ID is empty.
func (db *JSONDB) CreateUser(ctx context.Context, usr *user.User) (*user.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, existing := range db.users {
		if existing.Email == usr.Email {
			return nil, storage.ErrEmailExists
		}
	}

	stored := *usr
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	db.users[stored.ID] = &stored

	result := stored
	return &result, nil
}

// FindUserByEmail returns the user with the given email, if any.
func (db *JSONDB) FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, usr := range db.users {
		if usr.Email == email {
			result := *usr
			return &result, true, nil
		}
	}

	return nil, false, nil
}

// FindUserByID returns the user with the given ID, if any.
func (db *JSONDB) FindUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	usr, found := db.users[userID]
	if !found {
		return nil, false, nil
	}

	result := *usr
	return &result, true, nil
}

// InsertLink persists a new link, assigning a UUID when the ID is empty.
func (db *JSONDB) InsertLink(ctx context.Context, lnk *link.Link) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.links[lnk.Code]; exists {
		return storage.ErrCodeExists
	}

	stored := *lnk
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	db.links[stored.Code] = &stored

	lnk.ID = stored.ID

	return nil
}

// FindLinkByCode returns the link with the given short code, if any.
func (db *JSONDB) FindLinkByCode(ctx context.Context, code string) (*link.Link, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	lnk, found := db.links[code]
	if !found {
		return nil, false, nil
	}

	result := *lnk
	return &result, true, nil
}

// FindLinkByLongURL returns the link for (longURL, owner), if any.
func (db *JSONDB) FindLinkByLongURL(ctx context.Context, longURL string, owner link.Owner) (*link.Link, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, lnk := range db.links {
		if lnk.LongURL == longURL && lnk.Owner == owner {
			result := *lnk
			return &result, true, nil
		}
	}

	return nil, false, nil
}

// IncrementClicks increments the click counter under the write lock and
// returns the new value.
func (db *JSONDB) IncrementClicks(ctx context.Context, code string) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	lnk, found := db.links[code]
	if !found {
		return 0, storage.ErrLinkNotFound
	}

	lnk.Clicks++

	return lnk.Clicks, nil
}

// ListLinksByOwner returns the owner's links, newest first.
func (db *JSONDB) ListLinksByOwner(ctx context.Context, owner link.Owner) ([]*link.Link, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	owned := funk.Filter(funk.Values(db.links), func(lnk *link.Link) bool {
		return lnk.Owner == owner
	}).([]*link.Link)

	result := make([]*link.Link, 0, len(owned))
	for _, lnk := range owned {
		clone := *lnk
		result = append(result, &clone)
	}
	sortNewestFirst(result)

	return result, nil
}

// ListAllLinks returns every link, newest first.
func (db *JSONDB) ListAllLinks(ctx context.Context) ([]*link.Link, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	result := make([]*link.Link, 0, len(db.links))
	for _, lnk := range funk.Values(db.links).([]*link.Link) {
		clone := *lnk
		result = append(result, &clone)
	}
	sortNewestFirst(result)

	return result, nil
}

// Ping always succeeds for the file-backed store.
func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

// Close flushes the dataset to the backing file.
func (db *JSONDB) Close() error {
	if db.fileName == "" {
		return nil
	}

	db.mu.RLock()
	contents := dbFile{
		Users: make([]userRecord, 0, len(db.users)),
		Links: make([]*link.Link, 0, len(db.links)),
	}
	for _, usr := range db.users {
		contents.Users = append(contents.Users, userRecord{
			ID:           usr.ID,
			Name:         usr.Name,
			Email:        usr.Email,
			PasswordHash: usr.PasswordHash,
			CreatedAt:    usr.CreatedAt,
		})
	}
	for _, lnk := range db.links {
		contents.Links = append(contents.Links, lnk)
	}
	db.mu.RUnlock()

	data, err := json.MarshalIndent(contents, "", "\t")
	if err != nil {
		return fmt.Errorf("marshaling database file: %w", err)
	}

	if err := os.WriteFile(db.fileName, data, 0o644); err != nil {
		return fmt.Errorf("writing database file: %w", err)
	}

	return nil
}

func sortNewestFirst(links []*link.Link) {
	sort.Slice(links, func(i, j int) bool {
		return links[i].CreatedAt.After(links[j].CreatedAt)
	})
}
