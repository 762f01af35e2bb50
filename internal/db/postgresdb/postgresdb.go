// Package postgresdb provides the PostgreSQL implementation of the storage
// interface. Uniqueness of emails and short codes is delegated to unique
// indexes, and click counting is a single atomic UPDATE, so no application
// level locking is needed.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/shortly-app/shortly/internal/db/storage"
	"github.com/shortly-app/shortly/internal/link"
	"github.com/shortly-app/shortly/internal/user"
)

const uniqueViolationCode = "23505"

// PostgresDB is a PostgreSQL-backed implementation of the storage interface.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

// New opens a connection to PostgreSQL, runs schema migrations from
// migrationsDir, and returns a ready-to-use store.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
) (*PostgresDB, error) {
	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(database, migrationsDir); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}, nil
}

// CreateUser inserts a new user and returns it with the generated ID and
// creation timestamp. A duplicate email is reported as ErrEmailExists.
func (db *PostgresDB) CreateUser(ctx context.Context, usr *user.User) (*user.User, error) {
	row := db.database.QueryRowContext(
		ctx,
		`INSERT INTO users (name, email, password_hash)
			VALUES ($1, $2, $3)
			RETURNING id, created_at`,
		usr.Name,
		usr.Email,
		usr.PasswordHash,
	)

	result := *usr
	if err := row.Scan(&result.ID, &result.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrEmailExists
		}
		return nil, err
	}

	return &result, nil
}

// FindUserByEmail returns the user with the given email, if any.
func (db *PostgresDB) FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	return db.findUser(
		ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`,
		email,
	)
}

// FindUserByID returns the user with the given ID, if any.
func (db *PostgresDB) FindUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	return db.findUser(
		ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE id = $1`,
		userID,
	)
}

func (db *PostgresDB) findUser(ctx context.Context, query string, arg any) (*user.User, bool, error) {
	var usr user.User
	err := db.database.QueryRowContext(ctx, query, arg).
		Scan(&usr.ID, &usr.Name, &usr.Email, &usr.PasswordHash, &usr.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return &usr, true, nil
}

// InsertLink persists a new link. A duplicate code is reported as
// ErrCodeExists so the caller can retry with a fresh one.
func (db *PostgresDB) InsertLink(ctx context.Context, lnk *link.Link) error {
	row := db.database.QueryRowContext(
		ctx,
		`INSERT INTO links (code, long_url, short_url, owner_id, clicks, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
		lnk.Code,
		lnk.LongURL,
		lnk.ShortURL,
		ownerParam(lnk.Owner),
		lnk.Clicks,
		lnk.CreatedAt,
	)

	if err := row.Scan(&lnk.ID); err != nil {
		if isUniqueViolation(err) {
			return storage.ErrCodeExists
		}
		return err
	}

	return nil
}

// FindLinkByCode returns the link with the given short code, if any.
func (db *PostgresDB) FindLinkByCode(ctx context.Context, code string) (*link.Link, bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT id, code, long_url, short_url, owner_id, clicks, created_at
			FROM links WHERE code = $1`,
		code,
	)

	return scanLink(row)
}

// FindLinkByLongURL returns the link for (longURL, owner), if any. The
// anonymous bucket is matched with IS NOT DISTINCT FROM NULL, so anonymous
// and owned submissions never share records.
func (db *PostgresDB) FindLinkByLongURL(ctx context.Context, longURL string, owner link.Owner) (*link.Link, bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT id, code, long_url, short_url, owner_id, clicks, created_at
			FROM links
			WHERE long_url = $1 AND owner_id IS NOT DISTINCT FROM $2`,
		longURL,
		ownerParam(owner),
	)

	return scanLink(row)
}

// IncrementClicks increments the click counter in a single UPDATE and
// returns the new value. Lost updates under concurrent redirects are
// impossible because the addition happens inside the database.
func (db *PostgresDB) IncrementClicks(ctx context.Context, code string) (int64, error) {
	row := db.database.QueryRowContext(
		ctx,
		`UPDATE links SET clicks = clicks + 1 WHERE code = $1 RETURNING clicks`,
		code,
	)

	var clicks int64
	if err := row.Scan(&clicks); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, storage.ErrLinkNotFound
		}
		return 0, err
	}

	return clicks, nil
}

// ListLinksByOwner returns the owner's links, newest first.
func (db *PostgresDB) ListLinksByOwner(ctx context.Context, owner link.Owner) ([]*link.Link, error) {
	return db.listLinks(
		ctx,
		`SELECT id, code, long_url, short_url, owner_id, clicks, created_at
			FROM links
			WHERE owner_id IS NOT DISTINCT FROM $1
			ORDER BY created_at DESC`,
		ownerParam(owner),
	)
}

// ListAllLinks returns every link, newest first.
func (db *PostgresDB) ListAllLinks(ctx context.Context) ([]*link.Link, error) {
	return db.listLinks(
		ctx,
		`SELECT id, code, long_url, short_url, owner_id, clicks, created_at
			FROM links
			ORDER BY created_at DESC`,
	)
}

func (db *PostgresDB) listLinks(ctx context.Context, query string, args ...any) ([]*link.Link, error) {
	rows, err := db.database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*link.Link{}
	for rows.Next() {
		var lnk link.Link
		var ownerID sql.NullString
		err = rows.Scan(&lnk.ID, &lnk.Code, &lnk.LongURL, &lnk.ShortURL, &ownerID, &lnk.Clicks, &lnk.CreatedAt)
		if err != nil {
			return nil, err
		}
		lnk.Owner = ownerFromColumn(ownerID)

		result = append(result, &lnk)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Ping verifies connectivity with PostgreSQL within the configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

// Close closes the database connection pool.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}

func scanLink(row *sql.Row) (*link.Link, bool, error) {
	var lnk link.Link
	var ownerID sql.NullString
	err := row.Scan(&lnk.ID, &lnk.Code, &lnk.LongURL, &lnk.ShortURL, &ownerID, &lnk.Clicks, &lnk.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	lnk.Owner = ownerFromColumn(ownerID)

	return &lnk, true, nil
}

func ownerParam(owner link.Owner) sql.NullString {
	if userID, ok := owner.UserID(); ok {
		return sql.NullString{String: userID, Valid: true}
	}
	return sql.NullString{}
}

func ownerFromColumn(column sql.NullString) link.Owner {
	if !column.Valid {
		return link.Anonymous
	}
	return link.OwnedBy(column.String)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
