package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"idracd/internal/auth/hash"
)

var (
	// ErrAlreadyInitialized means a user already exists; registration is
	// permanently closed after the first account.
	ErrAlreadyInitialized = errors.New("registration closed: a user already exists")
	ErrInvalidInput       = errors.New("username and password are required")
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is the single persisted identity. Immutable after creation.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Store persists users in a local SQLite file. All reads go to the
// database; auth traffic is low-frequency enough that no cache is kept.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

func New(path string, logger zerolog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}
	schema := `CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	s := &Store{
		db:     db,
		logger: logger.With().Str("component", "users-store").Logger(),
	}
	s.logger.Info().Str("path", path).Msg("user store ready")
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// HasAny reports whether at least one user is registered.
func (s *Store) HasAny(ctx context.Context) (bool, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Register creates the first and only user. The empty-table guard runs
// inside the INSERT itself, so of any number of concurrent attempts
// exactly one can succeed.
func (s *Store) Register(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", ErrInvalidInput
	}
	phc, err := hash.Password(password)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash)
		 SELECT ?, ?, ? WHERE NOT EXISTS (SELECT 1 FROM users)`,
		id, username, phc)
	if err != nil {
		return "", fmt.Errorf("insert user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", ErrAlreadyInitialized
	}
	s.logger.Info().Str("username", username).Msg("user registered")
	return id, nil
}

// Verify checks a username/password pair and returns the user's identity.
func (s *Store) Verify(ctx context.Context, username, password string) (string, error) {
	var id, phc string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM users WHERE username = ?`, username).Scan(&id, &phc)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if !hash.Verify(phc, password) {
		return "", ErrInvalidCredentials
	}
	return id, nil
}

// GetByID fetches a user by identity.
func (s *Store) GetByID(ctx context.Context, id string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}
