// Package user defines the user model used for authentication and for
// associating shortened URLs with their owners.
package user

import "time"

// User represents a registered account.
type User struct {
	// ID is the unique identifier of the user, meaning a UUID.
	ID string `json:"id"`

	// Name is the display name supplied at registration.
	Name string `json:"name"`

	// Email is the unique login identifier.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	// It never leaves the server.
	PasswordHash string `json:"-"`

	// CreatedAt is the registration timestamp.
	CreatedAt time.Time `json:"createdAt"`
}
