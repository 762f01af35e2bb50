package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shortly-app/shortly/internal/db/memorystorage"
	"github.com/shortly-app/shortly/internal/db/storage"
	"github.com/shortly-app/shortly/internal/link"
	"github.com/shortly-app/shortly/internal/mockstorage"
)

const testShortURLBase = "http://localhost:8080"

// sequentialCodes returns a generator producing code1, code2, ...
func sequentialCodes() CodeGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("code%d", n)
	}
}

func newTestShortener(t *testing.T) *Shortener {
	t.Helper()

	db, err := memorystorage.New()
	require.NoError(t, err)

	return NewShortener(db, sequentialCodes(), testShortURLBase)
}

func TestShortenReturnsExistingLinkForSameOwner(t *testing.T) {
	shortener := newTestShortener(t)
	ctx := context.Background()

	first, err := shortener.Shorten(ctx, "https://example.com/page", link.Anonymous)
	require.NoError(t, err)
	require.NotEmpty(t, first.Code)
	assert.Equal(t, testShortURLBase+"/"+first.Code, first.ShortURL)

	second, err := shortener.Shorten(ctx, "https://example.com/page", link.Anonymous)
	require.NoError(t, err)

	assert.Equal(t, first.Code, second.Code)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(0), second.Clicks)
}

func TestShortenKeepsOwnersApart(t *testing.T) {
	shortener := newTestShortener(t)
	ctx := context.Background()
	const longURL = "https://example.com/shared"

	anonymous, err := shortener.Shorten(ctx, longURL, link.Anonymous)
	require.NoError(t, err)

	alice, err := shortener.Shorten(ctx, longURL, link.OwnedBy("alice"))
	require.NoError(t, err)

	bob, err := shortener.Shorten(ctx, longURL, link.OwnedBy("bob"))
	require.NoError(t, err)

	assert.NotEqual(t, anonymous.Code, alice.Code)
	assert.NotEqual(t, anonymous.Code, bob.Code)
	assert.NotEqual(t, alice.Code, bob.Code)

	// Resubmitting still hits the right bucket.
	again, err := shortener.Shorten(ctx, longURL, link.OwnedBy("alice"))
	require.NoError(t, err)
	assert.Equal(t, alice.Code, again.Code)
}

func TestShortenRejectsInvalidURL(t *testing.T) {
	shortener := newTestShortener(t)
	ctx := context.Background()

	testCases := []struct {
		name    string
		longURL string
	}{
		{name: "empty", longURL: ""},
		{name: "no_scheme", longURL: "example.com/page"},
		{name: "bad_scheme", longURL: "ftp://example.com/file"},
		{name: "no_host", longURL: "https://"},
		{name: "plain_text", longURL: "definitely not a url"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := shortener.Shorten(ctx, testCase.longURL, link.Anonymous)
			assert.ErrorIs(t, err, ErrInvalidURL)
		})
	}

	links, err := shortener.AllLinks(ctx)
	require.NoError(t, err)
	assert.Empty(t, links, "rejected URLs must not be persisted")
}

func TestResolveCountsClicks(t *testing.T) {
	db, err := memorystorage.New()
	require.NoError(t, err)
	shortener := NewShortener(db, sequentialCodes(), testShortURLBase)
	ctx := context.Background()

	lnk, err := shortener.Shorten(ctx, "https://example.com/page", link.Anonymous)
	require.NoError(t, err)
	require.Equal(t, int64(0), lnk.Clicks)

	for expected := int64(1); expected <= 3; expected++ {
		longURL, err := shortener.Resolve(ctx, lnk.Code)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/page", longURL)

		stored, found, err := db.FindLinkByCode(ctx, lnk.Code)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, expected, stored.Clicks)
	}
}

func TestResolveUnknownCode(t *testing.T) {
	shortener := newTestShortener(t)

	_, err := shortener.Resolve(context.Background(), "nosuch")
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestResolveSurvivesIncrementFailure(t *testing.T) {
	db := &mockstorage.StorageMock{}
	db.On("FindLinkByCode", mock.Anything, "abc123").
		Return(&link.Link{Code: "abc123", LongURL: "https://example.com/page"}, true, nil)
	db.On("IncrementClicks", mock.Anything, "abc123").
		Return(int64(0), errors.New("connection reset"))

	shortener := NewShortener(db, sequentialCodes(), testShortURLBase)

	longURL, err := shortener.Resolve(context.Background(), "abc123")
	require.NoError(t, err, "a failed click update must not block the redirect")
	assert.Equal(t, "https://example.com/page", longURL)
	db.AssertExpectations(t)
}

func TestShortenRetriesOnCodeCollision(t *testing.T) {
	db := &mockstorage.StorageMock{}
	db.On("FindLinkByLongURL", mock.Anything, "https://example.com/page", link.Anonymous).
		Return(nil, false, nil)
	db.On("InsertLink", mock.Anything, mock.Anything).
		Return(storage.ErrCodeExists).Once()
	db.On("InsertLink", mock.Anything, mock.Anything).
		Return(nil).Once()

	shortener := NewShortener(db, sequentialCodes(), testShortURLBase)

	lnk, err := shortener.Shorten(context.Background(), "https://example.com/page", link.Anonymous)
	require.NoError(t, err)
	assert.Equal(t, "code2", lnk.Code, "a fresh code is generated after a collision")
	db.AssertExpectations(t)
}

func TestShortenGivesUpAfterRepeatedCollisions(t *testing.T) {
	db := &mockstorage.StorageMock{}
	db.On("FindLinkByLongURL", mock.Anything, "https://example.com/page", link.Anonymous).
		Return(nil, false, nil)
	db.On("InsertLink", mock.Anything, mock.Anything).
		Return(storage.ErrCodeExists).Times(codeGenerationAttempts)

	shortener := NewShortener(db, sequentialCodes(), testShortURLBase)

	_, err := shortener.Shorten(context.Background(), "https://example.com/page", link.Anonymous)
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrCodeExists)
	db.AssertExpectations(t)
}

func TestUserLinksNewestFirst(t *testing.T) {
	db, err := memorystorage.New()
	require.NoError(t, err)
	ctx := context.Background()

	// Inserted directly so the timestamps are unambiguous.
	now := time.Now()
	for i, code := range []string{"old111", "mid222", "new333"} {
		require.NoError(t, db.InsertLink(ctx, &link.Link{
			Code:      code,
			LongURL:   "https://example.com/" + code,
			Owner:     link.OwnedBy("alice"),
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, db.InsertLink(ctx, &link.Link{
		Code:      "other1",
		LongURL:   "https://example.com/other",
		Owner:     link.OwnedBy("bob"),
		CreatedAt: now,
	}))

	shortener := NewShortener(db, sequentialCodes(), testShortURLBase)

	links, err := shortener.UserLinks(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, links, 3)
	assert.Equal(t, "new333", links[0].Code)
	assert.Equal(t, "mid222", links[1].Code)
	assert.Equal(t, "old111", links[2].Code)
}
