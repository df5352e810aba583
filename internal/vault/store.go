// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vault persists password-gated vaults and the images locked into
// them in a local SQLite database. Image bytes are stored encoded with the
// owning vault's key, so an image can only be unlocked through its vault.
package vault

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/imagecrypt/internal/logger"
	"github.com/pdiddy/imagecrypt/pkg/types"
)

var (
	// ErrNotFound is returned when a vault or image does not exist.
	ErrNotFound = errors.New("not found")

	// ErrWrongPassword is returned when no vault matches a password.
	ErrWrongPassword = errors.New("wrong password or no such vault")

	// ErrPasswordTooShort is returned when a new vault's password has fewer
	// than MinPasswordLength characters.
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)

	// ErrUnsupportedImage is returned when a file does not have an
	// admissible image extension.
	ErrUnsupportedImage = errors.New("not a supported image file")

	// ErrPasswordInUse is returned when another vault already uses a password.
	ErrPasswordInUse = errors.New("password already used by another vault")

	// ErrForeignImage is returned when an image payload was not encoded with
	// the vault's key.
	ErrForeignImage = errors.New("image does not belong to this vault")
)

// MinPasswordLength is the minimum number of characters in a vault password.
const MinPasswordLength = 8

const (
	appDir = "imagecrypt"
	dbFile = "imagecrypt.db"
)

var log = logger.Named("vault")

// Store manages the vault SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultDBPath returns <UserConfigDir>/imagecrypt/imagecrypt.db.
func DefaultDBPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(dir, appDir, dbFile), nil
}

// Open opens or creates the vault database and its schema.
func Open(cfg types.VaultConfig) (*Store, error) {
	path := cfg.DBPath
	if path == "" {
		p, err := DefaultDBPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating vault directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Path returns the database file in use.
func (s *Store) Path() string { return s.path }

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS vault (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			vault_name TEXT NOT NULL,
			password TEXT NOT NULL,
			created_at TEXT NOT NULL,
			encryption_key TEXT NOT NULL,
			last_login TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS image (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			vault_id INTEGER NOT NULL REFERENCES vault(id) ON DELETE CASCADE,
			image_name TEXT NOT NULL,
			image_ext TEXT NOT NULL DEFAULT '',
			image_crypt_key TEXT NOT NULL,
			size INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			last_accessed TEXT
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_vault_password ON vault(password)`,
		`CREATE INDEX IF NOT EXISTS idx_image_vault_id ON image(vault_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// HashPassword returns the hex SHA-256 of password, the form stored per vault.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// CreateVault creates a vault with a fresh key. Each password opens exactly
// one vault, so a password already in use is rejected, as is one shorter
// than MinPasswordLength.
func (s *Store) CreateVault(ctx context.Context, name, password string) (types.Vault, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Vault{}, fmt.Errorf("vault name is empty")
	}
	if password == "" {
		return types.Vault{}, fmt.Errorf("vault password is empty")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return types.Vault{}, ErrPasswordTooShort
	}

	hashed := HashPassword(password)
	var existing int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM vault WHERE password = ?`, hashed).Scan(&existing)
	if err == nil {
		return types.Vault{}, ErrPasswordInUse
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return types.Vault{}, fmt.Errorf("checking password: %w", err)
	}

	key, err := GenerateKey()
	if err != nil {
		return types.Vault{}, err
	}
	now := time.Now().UTC().Truncate(time.Second)

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO vault (vault_name, password, created_at, encryption_key) VALUES (?, ?, ?, ?)`,
		name, hashed, formatTime(now), key,
	)
	if err != nil {
		return types.Vault{}, fmt.Errorf("inserting vault: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return types.Vault{}, fmt.Errorf("reading vault id: %w", err)
	}

	log.WithField("vault_id", id).Debug("vault created")
	return types.Vault{ID: id, Name: name, CreatedAt: now}, nil
}

// Login opens the vault whose password matches and records the login time.
// The returned session carries the login recorded before this one.
func (s *Store) Login(ctx context.Context, password string) (types.Session, error) {
	var (
		v         types.Vault
		createdAt string
		lastLogin sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, vault_name, created_at, last_login FROM vault WHERE password = ?`,
		HashPassword(password),
	).Scan(&v.ID, &v.Name, &createdAt, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Session{}, ErrWrongPassword
	}
	if err != nil {
		return types.Session{}, fmt.Errorf("looking up vault: %w", err)
	}
	v.CreatedAt = parseTime(createdAt)

	now := time.Now().UTC().Truncate(time.Second)
	if _, err := s.db.ExecContext(ctx,
		`UPDATE vault SET last_login = ? WHERE id = ?`, formatTime(now), v.ID,
	); err != nil {
		return types.Session{}, fmt.Errorf("recording login: %w", err)
	}

	previous := parseTime(lastLogin.String)
	v.LastLogin = now
	log.WithField("vault_id", v.ID).Debug("vault opened")
	return types.Session{Vault: v, PreviousLogin: previous, LoginAt: now}, nil
}

// vaultKey returns the key of vaultID.
func (s *Store) vaultKey(ctx context.Context, vaultID int64) (string, error) {
	var key string
	err := s.db.QueryRowContext(ctx, `SELECT encryption_key FROM vault WHERE id = ?`, vaultID).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("vault %d: %w", vaultID, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("reading vault key: %w", err)
	}
	return key, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// parseTime returns the zero time for empty or malformed values.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
