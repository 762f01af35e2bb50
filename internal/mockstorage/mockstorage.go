// Package mockstorage provides a testify-based mock implementation of the
// storage interface, used to unit-test handlers and services against
// simulated storage behavior, including failure paths a real backend cannot
// produce on demand.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shortly-app/shortly/internal/link"
	"github.com/shortly-app/shortly/internal/user"
)

// StorageMock is a testify mock implementing storage.Storage.
type StorageMock struct {
	mock.Mock
}

// CreateUser mocks user creation.
func (m *StorageMock) CreateUser(ctx context.Context, usr *user.User) (*user.User, error) {
	args := m.Called(ctx, usr)
	created, _ := args.Get(0).(*user.User)
	return created, args.Error(1)
}

// FindUserByEmail mocks the email lookup.
func (m *StorageMock) FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	args := m.Called(ctx, email)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

// FindUserByID mocks the ID lookup.
func (m *StorageMock) FindUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	args := m.Called(ctx, userID)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Bool(1), args.Error(2)
}

// InsertLink mocks link insertion.
func (m *StorageMock) InsertLink(ctx context.Context, lnk *link.Link) error {
	args := m.Called(ctx, lnk)
	return args.Error(0)
}

// FindLinkByCode mocks the short-code lookup.
func (m *StorageMock) FindLinkByCode(ctx context.Context, code string) (*link.Link, bool, error) {
	args := m.Called(ctx, code)
	lnk, _ := args.Get(0).(*link.Link)
	return lnk, args.Bool(1), args.Error(2)
}

// FindLinkByLongURL mocks the (longURL, owner) lookup.
func (m *StorageMock) FindLinkByLongURL(ctx context.Context, longURL string, owner link.Owner) (*link.Link, bool, error) {
	args := m.Called(ctx, longURL, owner)
	lnk, _ := args.Get(0).(*link.Link)
	return lnk, args.Bool(1), args.Error(2)
}

// IncrementClicks mocks the click counter update.
func (m *StorageMock) IncrementClicks(ctx context.Context, code string) (int64, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(int64), args.Error(1)
}

// ListLinksByOwner mocks the per-owner listing.
func (m *StorageMock) ListLinksByOwner(ctx context.Context, owner link.Owner) ([]*link.Link, error) {
	args := m.Called(ctx, owner)
	links, _ := args.Get(0).([]*link.Link)
	return links, args.Error(1)
}

// ListAllLinks mocks the unscoped listing.
func (m *StorageMock) ListAllLinks(ctx context.Context) ([]*link.Link, error) {
	args := m.Called(ctx)
	links, _ := args.Get(0).([]*link.Link)
	return links, args.Error(1)
}

// Ping mocks the health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks releasing the storage.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
