// Package auth provides middleware for bearer-token authentication of HTTP
// requests. Protected routes use RequireUser; routes that merely personalize
// their behavior for logged-in callers use OptionalUser.
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shortly-app/shortly/internal/models"
)

type tokenVerifier interface {
	Verify(tokenString string) (string, error)
}

// Auth authenticates requests against a token verifier.
type Auth struct {
	tokens tokenVerifier
}

type contextKey string

const userIDKey contextKey = "userID"

// New creates an Auth middleware provider backed by the given verifier.
func New(tokens tokenVerifier) *Auth {
	return &Auth{tokens: tokens}
}

// UserIDFromContext returns the authenticated user's ID, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// RequireUser rejects requests without a valid bearer token with 401 and the
// standard error envelope. On success the user ID is stored in the request
// context.
func (a *Auth) RequireUser(h http.Handler) http.Handler {
	return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		tokenString := bearerToken(request)
		if tokenString == "" {
			unauthorized(response, "authorization token required")
			return
		}

		userID, err := a.tokens.Verify(tokenString)
		if err != nil {
			unauthorized(response, "invalid token")
			return
		}

		ctx := context.WithValue(request.Context(), userIDKey, userID)
		h.ServeHTTP(response, request.WithContext(ctx))
	})
}

// OptionalUser attaches the user ID to the context when a valid bearer token
// is present and lets the request proceed unauthenticated otherwise. No error
// is ever surfaced, so anonymous callers can use the same endpoints.
func (a *Auth) OptionalUser(h http.Handler) http.Handler {
	return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		tokenString := bearerToken(request)
		if tokenString != "" {
			if userID, err := a.tokens.Verify(tokenString); err == nil {
				ctx := context.WithValue(request.Context(), userIDKey, userID)
				request = request.WithContext(ctx)
			}
		}

		h.ServeHTTP(response, request)
	})
}

func bearerToken(request *http.Request) string {
	header := request.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func unauthorized(response http.ResponseWriter, message string) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(response).Encode(models.ErrorResponse{
		Success: false,
		Message: message,
	})
}
