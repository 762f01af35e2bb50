// Package storage declares the persistence interface shared by the
// PostgreSQL, file and in-memory backends, together with the sentinel errors
// the backends report for constraint violations.
package storage

import (
	"context"
	"errors"

	"github.com/shortly-app/shortly/internal/link"
	"github.com/shortly-app/shortly/internal/user"
)

// ErrEmailExists is returned by CreateUser when the email is already taken.
var ErrEmailExists = errors.New("email already registered")

// ErrCodeExists is returned by InsertLink when the short code collides with
// an existing one.
var ErrCodeExists = errors.New("short code already exists")

// ErrLinkNotFound is returned by IncrementClicks for an unknown code.
var ErrLinkNotFound = errors.New("link not found")

// Storage is the full persistence surface of the service.
type Storage interface {
	// CreateUser persists a new user and returns it with the store-assigned
	// ID filled in. Fails with ErrEmailExists on a duplicate email.
	CreateUser(ctx context.Context, usr *user.User) (*user.User, error)

	// FindUserByEmail returns the user with the given email, if any.
	FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error)

	// FindUserByID returns the user with the given ID, if any.
	FindUserByID(ctx context.Context, userID string) (*user.User, bool, error)

	// InsertLink persists a new link. Fails with ErrCodeExists when the
	// code's uniqueness constraint is violated.
	InsertLink(ctx context.Context, lnk *link.Link) error

	// FindLinkByCode returns the link with the given short code, if any.
	FindLinkByCode(ctx context.Context, code string) (*link.Link, bool, error)

	// FindLinkByLongURL returns the link for (longURL, owner), if any.
	// The anonymous bucket is a distinct owner.
	FindLinkByLongURL(ctx context.Context, longURL string, owner link.Owner) (*link.Link, bool, error)

	// IncrementClicks atomically increments the click counter of the link
	// with the given code and returns the new value.
	IncrementClicks(ctx context.Context, code string) (int64, error)

	// ListLinksByOwner returns the owner's links, newest first.
	ListLinksByOwner(ctx context.Context, owner link.Owner) ([]*link.Link, error)

	// ListAllLinks returns every link, newest first.
	ListAllLinks(ctx context.Context) ([]*link.Link, error)

	Ping(ctx context.Context) error

	Close() error
}
