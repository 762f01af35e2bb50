// Package service implements the application logic on top of the storage
// layer: shortening and resolving links, and account registration and login.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/shortly-app/shortly/internal/db/storage"
	"github.com/shortly-app/shortly/internal/link"
	"github.com/shortly-app/shortly/internal/logger"
)

// ErrInvalidURL is returned when the submitted string is not an absolute
// http(s) URL.
var ErrInvalidURL = errors.New("invalid URL")

// ErrLinkNotFound is returned when no link exists for a short code.
var ErrLinkNotFound = errors.New("link not found")

// codeGenerationAttempts bounds the retries after a short-code collision.
// With 6 alphanumeric characters a collision is unlikely but not impossible,
// and the store's unique index is the source of truth.
const codeGenerationAttempts = 3

// CodeGenerator produces a fresh short code on each call.
type CodeGenerator func() string

type linkKeeper interface {
	InsertLink(ctx context.Context, lnk *link.Link) error
	FindLinkByCode(ctx context.Context, code string) (*link.Link, bool, error)
	FindLinkByLongURL(ctx context.Context, longURL string, owner link.Owner) (*link.Link, bool, error)
	IncrementClicks(ctx context.Context, code string) (int64, error)
	ListLinksByOwner(ctx context.Context, owner link.Owner) ([]*link.Link, error)
	ListAllLinks(ctx context.Context) ([]*link.Link, error)
	Ping(ctx context.Context) error
}

// Shortener creates short links and resolves them back to their
// destinations.
type Shortener struct {
	db           linkKeeper
	newCode      CodeGenerator
	shortURLBase string
}

// NewShortener creates a Shortener using the given storage, code generator
// and short URL base address.
func NewShortener(db linkKeeper, newCode CodeGenerator, shortURLBase string) *Shortener {
	return &Shortener{
		db:           db,
		newCode:      newCode,
		shortURLBase: shortURLBase,
	}
}

// Shorten returns the link for (longURL, owner), creating it when absent.
// Submitting the same URL twice with the same owner returns the existing
// record untouched; different owners (including the anonymous bucket) get
// independent links.
func (s *Shortener) Shorten(ctx context.Context, longURL string, owner link.Owner) (*link.Link, error) {
	if !isValidURL(longURL) {
		return nil, ErrInvalidURL
	}

	existing, found, err := s.db.FindLinkByLongURL(ctx, longURL, owner)
	if err != nil {
		return nil, err
	}
	if found {
		return existing, nil
	}

	var lastErr error
	for attempt := 0; attempt < codeGenerationAttempts; attempt++ {
		code := s.newCode()
		lnk := &link.Link{
			Code:      code,
			LongURL:   longURL,
			ShortURL:  s.ShortURL(code),
			Owner:     owner,
			Clicks:    0,
			CreatedAt: time.Now(),
		}

		err := s.db.InsertLink(ctx, lnk)
		if err == nil {
			return lnk, nil
		}
		if !errors.Is(err, storage.ErrCodeExists) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("generating a unique short code: %w", lastErr)
}

// Resolve returns the destination URL for a short code and increments its
// click counter. The increment is best effort: a failure to persist it is
// logged but never blocks the redirect.
func (s *Shortener) Resolve(ctx context.Context, code string) (string, error) {
	lnk, found, err := s.db.FindLinkByCode(ctx, code)
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrLinkNotFound
	}

	if _, err := s.db.IncrementClicks(ctx, code); err != nil {
		logger.Log.Warnw("click increment failed", "code", code, "error", err)
	}

	return lnk.LongURL, nil
}

// UserLinks returns the links owned by the given user, newest first.
func (s *Shortener) UserLinks(ctx context.Context, userID string) ([]*link.Link, error) {
	return s.db.ListLinksByOwner(ctx, link.OwnedBy(userID))
}

// AllLinks returns every link, newest first.
func (s *Shortener) AllLinks(ctx context.Context) ([]*link.Link, error) {
	return s.db.ListAllLinks(ctx)
}

// ShortURL composes the public short URL for a code.
func (s *Shortener) ShortURL(code string) string {
	return s.shortURLBase + "/" + code
}

// Ping checks the health of the storage layer.
func (s *Shortener) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func isValidURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil &&
		(u.Scheme == "http" || u.Scheme == "https") &&
		u.Host != ""
}
