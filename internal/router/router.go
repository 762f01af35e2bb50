// Package router wires the HTTP API: shortening, redirecting, link listings
// and the auth endpoints. Handlers translate service errors into the
// {success, message} envelope; unexpected errors become a generic 500 with
// the detail logged server-side only.
package router

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/shortly-app/shortly/internal/auth"
	"github.com/shortly-app/shortly/internal/db/storage"
	"github.com/shortly-app/shortly/internal/ipchecker"
	"github.com/shortly-app/shortly/internal/link"
	"github.com/shortly-app/shortly/internal/logger"
	"github.com/shortly-app/shortly/internal/models"
	"github.com/shortly-app/shortly/internal/service"
)

// Router holds the handlers of the HTTP API.
type Router struct {
	shortener *service.Shortener
	accounts  *service.Accounts
	ipChecker *ipchecker.IPChecker
	validate  *validator.Validate
}

// New assembles the chi mux with all routes and middleware.
func New(
	shortener *service.Shortener,
	accounts *service.Accounts,
	theAuth *auth.Auth,
	ipChecker *ipchecker.IPChecker,
) http.Handler {
	router := &Router{
		shortener: shortener,
		accounts:  accounts,
		ipChecker: ipChecker,
		validate:  validator.New(),
	}

	mux := chi.NewRouter()
	mux.Use(logger.WithRequestLogging)

	mux.With(theAuth.OptionalUser).Post(`/shorten`, router.PostShorten)
	mux.Get(`/urls/all`, router.GetUrlsAll)
	mux.With(theAuth.RequireUser).Get(`/urls/me`, router.GetUrlsMe)

	mux.Post(`/auth/register`, router.PostAuthRegister)
	mux.Post(`/auth/login`, router.PostAuthLogin)
	mux.With(theAuth.RequireUser).Get(`/auth/me`, router.GetAuthMe)

	mux.Get(`/ping`, router.GetPing)
	mux.Get(`/{code}`, router.GetRedirectToLongURL)

	return mux
}

// PostShorten handles POST /shorten. Authentication is optional: requests
// with a valid bearer token attach the link to the user, everything else
// lands in the anonymous bucket.
func (router *Router) PostShorten(res http.ResponseWriter, req *http.Request) {
	var request models.ShortenRequest
	if !router.decodeJSON(res, req, &request, "Invalid URL") {
		return
	}

	owner := link.Anonymous
	if userID, ok := auth.UserIDFromContext(req.Context()); ok {
		owner = link.OwnedBy(userID)
	}

	lnk, err := router.shortener.Shorten(req.Context(), request.LongURL, owner)
	if err != nil {
		if errors.Is(err, service.ErrInvalidURL) {
			respondError(res, http.StatusBadRequest, "Invalid URL")
			return
		}
		logger.Log.Errorw("shorten failed", "error", err)
		respondError(res, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(res, http.StatusOK, models.ShortenResponse{
		Success: true,
		URL:     lnk,
	})
}

// GetRedirectToLongURL handles GET /{code}: it looks up the mapping and
// answers with a redirect to the destination.
func (router *Router) GetRedirectToLongURL(res http.ResponseWriter, req *http.Request) {
	code := chi.URLParam(req, "code")

	longURL, err := router.shortener.Resolve(req.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrLinkNotFound) {
			respondError(res, http.StatusNotFound, "URL not found")
			return
		}
		logger.Log.Errorw("redirect failed", "code", code, "error", err)
		respondError(res, http.StatusInternalServerError, "Server error")
		return
	}

	http.Redirect(res, req, longURL, http.StatusFound)
}

// GetUrlsAll handles GET /urls/all. The listing is unauthenticated but only
// served to clients inside the configured trusted subnet.
func (router *Router) GetUrlsAll(res http.ResponseWriter, req *http.Request) {
	clientIP, err := router.ipChecker.ClientIP(req)
	if err != nil || !router.ipChecker.Check(clientIP) {
		respondError(res, http.StatusForbidden, "forbidden")
		return
	}

	links, err := router.shortener.AllLinks(req.Context())
	if err != nil {
		logger.Log.Errorw("listing all links failed", "error", err)
		respondError(res, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(res, http.StatusOK, models.UrlsResponse{
		Success: true,
		URLs:    links,
	})
}

// GetUrlsMe handles GET /urls/me and returns the authenticated user's links,
// newest first.
func (router *Router) GetUrlsMe(res http.ResponseWriter, req *http.Request) {
	userID, _ := auth.UserIDFromContext(req.Context())

	links, err := router.shortener.UserLinks(req.Context(), userID)
	if err != nil {
		logger.Log.Errorw("listing user links failed", "userID", userID, "error", err)
		respondError(res, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(res, http.StatusOK, models.UrlsResponse{
		Success: true,
		URLs:    links,
	})
}

// PostAuthRegister handles POST /auth/register.
func (router *Router) PostAuthRegister(res http.ResponseWriter, req *http.Request) {
	var request models.RegisterRequest
	if !router.decodeJSON(res, req, &request, "name, email and password are required") {
		return
	}

	usr, tokenString, err := router.accounts.Register(req.Context(), request.Name, request.Email, request.Password)
	if err != nil {
		if errors.Is(err, storage.ErrEmailExists) {
			respondError(res, http.StatusConflict, "email already registered")
			return
		}
		logger.Log.Errorw("registration failed", "error", err)
		respondError(res, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(res, http.StatusOK, models.AuthResponse{
		Success: true,
		User:    usr,
		Token:   tokenString,
	})
}

// PostAuthLogin handles POST /auth/login.
func (router *Router) PostAuthLogin(res http.ResponseWriter, req *http.Request) {
	var request models.LoginRequest
	if !router.decodeJSON(res, req, &request, "email and password are required") {
		return
	}

	usr, tokenString, err := router.accounts.Login(req.Context(), request.Email, request.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(res, http.StatusUnauthorized, "invalid email or password")
			return
		}
		logger.Log.Errorw("login failed", "error", err)
		respondError(res, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(res, http.StatusOK, models.AuthResponse{
		Success: true,
		User:    usr,
		Token:   tokenString,
	})
}

// GetAuthMe handles GET /auth/me.
func (router *Router) GetAuthMe(res http.ResponseWriter, req *http.Request) {
	userID, _ := auth.UserIDFromContext(req.Context())

	usr, err := router.accounts.GetUser(req.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(res, http.StatusNotFound, "user not found")
			return
		}
		logger.Log.Errorw("fetching current user failed", "userID", userID, "error", err)
		respondError(res, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(res, http.StatusOK, models.UserResponse{
		Success: true,
		User:    usr,
	})
}

// GetPing handles GET /ping and reports storage health.
func (router *Router) GetPing(res http.ResponseWriter, req *http.Request) {
	if err := router.shortener.Ping(req.Context()); err != nil {
		logger.Log.Errorw("storage ping failed", "error", err)
		respondError(res, http.StatusInternalServerError, "Server error")
		return
	}

	res.WriteHeader(http.StatusOK)
}

// decodeJSON decodes and validates a request body, answering 400 with the
// given message on any failure. It reports whether the caller may proceed.
func (router *Router) decodeJSON(res http.ResponseWriter, req *http.Request, target any, message string) bool {
	if err := json.NewDecoder(req.Body).Decode(target); err != nil {
		respondError(res, http.StatusBadRequest, message)
		return false
	}

	if err := router.validate.Struct(target); err != nil {
		respondError(res, http.StatusBadRequest, message)
		return false
	}

	return true
}

func writeJSON(res http.ResponseWriter, status int, payload any) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	if err := json.NewEncoder(res).Encode(payload); err != nil {
		logger.Log.Errorw("writing response failed", "error", err)
	}
}

func respondError(res http.ResponseWriter, status int, message string) {
	writeJSON(res, status, models.ErrorResponse{
		Success: false,
		Message: message,
	})
}
