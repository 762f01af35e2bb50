// Package link defines the shortened-link model and the owner value type
// used to distinguish authenticated submissions from the anonymous bucket.
package link

import (
	"encoding/json"
	"time"
)

// Owner identifies who created a link. The zero value is the anonymous
// bucket; OwnedBy builds an owner bound to a user ID. Modelling this as a
// value type instead of a nullable string keeps lookup and dedup code from
// silently ignoring one of the two cases.
type Owner struct {
	userID string
	owned  bool
}

// Anonymous is the owner of links created by unauthenticated callers.
var Anonymous = Owner{}

// OwnedBy returns an Owner bound to the given user ID. An empty ID yields
// the anonymous owner.
func OwnedBy(userID string) Owner {
	if userID == "" {
		return Anonymous
	}
	return Owner{userID: userID, owned: true}
}

// UserID returns the owning user's ID and whether the owner is a user at all.
func (o Owner) UserID() (string, bool) {
	return o.userID, o.owned
}

// IsAnonymous reports whether the owner is the anonymous bucket.
func (o Owner) IsAnonymous() bool {
	return !o.owned
}

// MarshalJSON renders the owner as the bare user ID, or null for the
// anonymous bucket, matching the wire format of the links API.
func (o Owner) MarshalJSON() ([]byte, error) {
	if !o.owned {
		return []byte("null"), nil
	}
	return json.Marshal(o.userID)
}

// UnmarshalJSON accepts either null or a user ID string.
func (o *Owner) UnmarshalJSON(data []byte) error {
	var userID *string
	if err := json.Unmarshal(data, &userID); err != nil {
		return err
	}
	if userID == nil {
		*o = Anonymous
		return nil
	}
	*o = OwnedBy(*userID)
	return nil
}

// Link is a single short-code to long-URL mapping.
type Link struct {
	// ID is the store-assigned identifier of the record.
	ID string `json:"id"`

	// Code is the unique short code used as the path segment of the short URL.
	Code string `json:"urlCode"`

	// LongURL is the destination the short code redirects to.
	LongURL string `json:"longUrl"`

	// ShortURL is the full shortened URL composed from the configured base.
	ShortURL string `json:"shortUrl"`

	// Owner is the creating user, or the anonymous bucket.
	Owner Owner `json:"user"`

	// Clicks counts completed redirects. Never decreases.
	Clicks int64 `json:"clicks"`

	// CreatedAt is the creation timestamp of the mapping.
	CreatedAt time.Time `json:"createdAt"`
}
