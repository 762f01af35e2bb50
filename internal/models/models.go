// Package models contains the request and response shapes of the HTTP API.
// Every response is wrapped in the {success, message?} envelope the clients
// expect; error responses carry only the envelope.
package models

import (
	"github.com/shortly-app/shortly/internal/link"
	"github.com/shortly-app/shortly/internal/user"
)

// ShortenRequest is the body of POST /shorten.
type ShortenRequest struct {
	LongURL string `json:"longUrl" validate:"required,url"`
}

// ShortenResponse is the body of a successful POST /shorten.
type ShortenResponse struct {
	Success bool       `json:"success"`
	URL     *link.Link `json:"url"`
}

// UrlsResponse is the body of GET /urls/me and GET /urls/all.
type UrlsResponse struct {
	Success bool         `json:"success"`
	URLs    []*link.Link `json:"urls"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is the body of successful register and login calls.
type AuthResponse struct {
	Success bool       `json:"success"`
	User    *user.User `json:"user"`
	Token   string     `json:"token"`
}

// UserResponse is the body of GET /auth/me.
type UserResponse struct {
	Success bool       `json:"success"`
	User    *user.User `json:"user"`
}

// ErrorResponse is the envelope used for every non-2xx response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
