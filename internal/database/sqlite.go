package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jasypt-go/internal/database/migrations"
	"jasypt-go/internal/properties"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	// DefaultApplication is the application name used when none is given.
	DefaultApplication = "application"
	// DefaultProfile is the profile whose properties apply to every profile
	// of an application.
	DefaultProfile = "default"
)

// SQLiteDatabase stores properties per application and profile, in the
// layout of a Spring Cloud Config JDBC backend.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewSQLiteDatabase creates a new SQLite database connection.
// path can be a file path or ":memory:" for in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return NewSQLiteDatabaseFromDB(db, path), nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB, path string) *SQLiteDatabase {
	return &SQLiteDatabase{db: db, path: path, now: time.Now}
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// Property operations

// SetProperty inserts or replaces a single property.
func (s *SQLiteDatabase) SetProperty(ctx context.Context, application, profile, key, value string) error {
	if key == "" {
		return fmt.Errorf("property key must not be empty")
	}
	_, err := s.db.ExecContext(ctx, upsertProperty, application, profile, key, value, s.now().UTC())
	if err != nil {
		return fmt.Errorf("setting property %s: %w", key, err)
	}
	return nil
}

// GetProperty returns the value stored for exactly (application, profile, key).
func (s *SQLiteDatabase) GetProperty(ctx context.Context, application, profile, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM properties WHERE application = ? AND profile = ? AND key = ?",
		application, profile, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("getting property %s: %w", key, err)
	}
	return value, true, nil
}

// DeleteProperty removes a property. It reports whether a row was deleted.
func (s *SQLiteDatabase) DeleteProperty(ctx context.Context, application, profile, key string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM properties WHERE application = ? AND profile = ? AND key = ?",
		application, profile, key)
	if err != nil {
		return false, fmt.Errorf("deleting property %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting property %s: %w", key, err)
	}
	return n > 0, nil
}

// ImportProperties stores all of props in a single transaction, replacing
// existing values. It returns the number of properties written.
func (s *SQLiteDatabase) ImportProperties(ctx context.Context, application, profile string, props properties.Map) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertProperty)
	if err != nil {
		return 0, fmt.Errorf("preparing import: %w", err)
	}
	defer stmt.Close()

	now := s.now().UTC()
	for _, key := range props.Keys() {
		if _, err := stmt.ExecContext(ctx, application, profile, key, props[key], now); err != nil {
			return 0, fmt.Errorf("importing property %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing import: %w", err)
	}
	return len(props), nil
}

// LoadProperties returns the properties visible to application running with
// profile: the default profile's properties, overridden by the profile's own.
func (s *SQLiteDatabase) LoadProperties(ctx context.Context, application, profile string) (properties.Map, error) {
	if profile == "" {
		profile = DefaultProfile
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT key, value FROM properties
		WHERE application = ? AND profile IN (?, ?)
		ORDER BY CASE profile WHEN ? THEN 1 ELSE 0 END`,
		application, DefaultProfile, profile, profile)
	if err != nil {
		return nil, fmt.Errorf("loading properties: %w", err)
	}
	defer rows.Close()

	out := properties.Map{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning property: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading properties: %w", err)
	}
	return out, nil
}

const upsertProperty = `
	INSERT INTO properties (application, profile, key, value, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (application, profile, key)
	DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// Migrate brings the schema up to the latest version.
func (s *SQLiteDatabase) Migrate() error {
	return migrations.MigrateUp(s.db)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	_, err := s.db.Exec("VACUUM INTO ?", destPath)
	if err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
