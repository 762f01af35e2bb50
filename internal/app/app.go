// Package app initializes and runs the service. It loads configuration,
// sets up logging, selects a storage backend, builds the token service and
// router, and handles graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jaevor/go-nanoid"

	"github.com/shortly-app/shortly/internal/auth"
	"github.com/shortly-app/shortly/internal/config"
	"github.com/shortly-app/shortly/internal/db/jsondb"
	"github.com/shortly-app/shortly/internal/db/memorystorage"
	"github.com/shortly-app/shortly/internal/db/postgresdb"
	"github.com/shortly-app/shortly/internal/db/storage"
	"github.com/shortly-app/shortly/internal/ipchecker"
	"github.com/shortly-app/shortly/internal/logger"
	"github.com/shortly-app/shortly/internal/router"
	"github.com/shortly-app/shortly/internal/service"
	"github.com/shortly-app/shortly/internal/token"
)

const (
	codeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeLength   = 6

	// devSigningSecret is the fallback JWT secret for non-production
	// environments. Refused in production.
	devSigningSecret = "defaultjwtsecret123"
)

// App ties together the configuration, storage backend and HTTP handler.
type App struct {
	cfg         *config.Config
	db          storage.Storage
	httpHandler http.Handler
}

// New builds a ready-to-run App from configuration.
func New() (*App, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		return nil, err
	}

	db, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	signingSecret := cfg.JWTSigningSecret
	if signingSecret == "" {
		if cfg.Environment == config.EnvProduction {
			return nil, errors.New("JWT_SECRET must be set in production")
		}
		logger.Log.Warnw("JWT_SECRET is not set, using the development fallback secret")
		signingSecret = devSigningSecret
	}

	tokens := token.New([]byte(signingSecret), cfg.TokenTTL)

	newCode, err := nanoid.CustomASCII(codeAlphabet, codeLength)
	if err != nil {
		return nil, fmt.Errorf("creating short code generator: %w", err)
	}

	ipChecker, err := ipchecker.New(cfg.TrustedSubnet)
	if err != nil {
		return nil, err
	}

	shortener := service.NewShortener(db, service.CodeGenerator(newCode), strings.TrimRight(cfg.ShortURLBase, "/"))
	accounts := service.NewAccounts(db, tokens)

	return &App{
		cfg:         cfg,
		db:          db,
		httpHandler: router.New(shortener, accounts, auth.New(tokens), ipChecker),
	}, nil
}

// Run starts the HTTP server and blocks until a shutdown signal or a server
// error. On shutdown the server is drained and the storage flushed.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infow("server running", "addr", a.cfg.RunAddr)

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infow("shutdown signal received, draining server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return a.db.Close()

	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}

func newStorage(cfg *config.Config) (storage.Storage, error) {
	switch {
	case cfg.DatabaseDSN != "":
		return postgresdb.New(
			context.Background(),
			cfg.DatabaseDSN,
			cfg.DBConnectionTimeout,
			cfg.MigrationsDir,
		)

	case cfg.DBFileName != "":
		return jsondb.New(cfg.DBFileName)

	default:
		return memorystorage.New()
	}
}
