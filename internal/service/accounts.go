package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/shortly-app/shortly/internal/user"
)

// ErrInvalidCredentials is returned on login with an unknown email or a
// wrong password. The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrUserNotFound is returned when a token references a user that no longer
// exists.
var ErrUserNotFound = errors.New("user not found")

type userKeeper interface {
	CreateUser(ctx context.Context, usr *user.User) (*user.User, error)
	FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error)
	FindUserByID(ctx context.Context, userID string) (*user.User, bool, error)
}

type tokenIssuer interface {
	Issue(userID string) (string, error)
}

// Accounts handles registration, login and user lookup.
type Accounts struct {
	db     userKeeper
	tokens tokenIssuer
}

// NewAccounts creates an account service on top of the given storage and
// token issuer.
func NewAccounts(db userKeeper, tokens tokenIssuer) *Accounts {
	return &Accounts{
		db:     db,
		tokens: tokens,
	}
}

// Register creates a user with a bcrypt-hashed password and issues a session
// token for it. The storage reports a duplicate email as
// storage.ErrEmailExists.
func (a *Accounts) Register(ctx context.Context, name, email, password string) (*user.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	usr, err := a.db.CreateUser(ctx, &user.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return nil, "", err
	}

	tokenString, err := a.tokens.Issue(usr.ID)
	if err != nil {
		return nil, "", err
	}

	return usr, tokenString, nil
}

// Login verifies the credentials and issues a session token. The stored
// bcrypt hash is compared against the supplied password; plaintext is never
// compared or persisted.
func (a *Accounts) Login(ctx context.Context, email, password string) (*user.User, string, error) {
	usr, found, err := a.db.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if !found {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	tokenString, err := a.tokens.Issue(usr.ID)
	if err != nil {
		return nil, "", err
	}

	return usr, tokenString, nil
}

// GetUser returns the user with the given ID.
func (a *Accounts) GetUser(ctx context.Context, userID string) (*user.User, error) {
	usr, found, err := a.db.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrUserNotFound
	}

	return usr, nil
}
