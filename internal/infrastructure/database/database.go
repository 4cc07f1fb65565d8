package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	// dirPermissions is the permission mode for the database directory.
	dirPermissions = 0750

	// filePermissions is the permission mode for the database file.
	filePermissions = 0600

	// msPerSecond converts seconds to milliseconds for the busy timeout pragma.
	msPerSecond = 1000

	// connectionTimeout is the timeout for verifying database connectivity.
	connectionTimeout = 5 * time.Second

	// connMaxIdleTime is how long idle connections are kept open.
	connMaxIdleTime = 30 * time.Minute
)

// DB wraps a sql.DB connection with Argent-specific functionality.
// It provides migration support, health checks, and lifecycle management.
type DB struct {
	*sql.DB
	path string
}

// Config contains database configuration options.
// These map to the database section of config.yaml.
type Config struct {
	// Path is the filesystem path to the SQLite database file.
	// The directory will be created if it doesn't exist.
	Path string

	// WALMode enables Write-Ahead Logging for concurrent reads during writes.
	WALMode bool

	// BusyTimeout is the maximum time to wait for a database lock (seconds).
	BusyTimeout int
}

// Open creates a new database connection with the specified configuration.
//
// It creates the database directory if needed, opens the file with the
// configured pragmas, restricts file permissions, and verifies the
// connection with a ping.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	// See: https://github.com/mattn/go-sqlite3#connection-string
	connStr := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on",
		cfg.Path,
		cfg.BusyTimeout*msPerSecond,
	)
	if cfg.WALMode {
		connStr += "&_journal_mode=WAL&_synchronous=NORMAL"
	}

	sqlDB, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite supports only one writer; keep the pool tiny.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	db := &DB{
		DB:   sqlDB,
		path: cfg.Path,
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	// File might not exist yet on first run; permissions are applied after
	// the first write in that case.
	_ = os.Chmod(cfg.Path, filePermissions) //nolint:errcheck

	return db, nil
}

// Close closes the database connection gracefully.
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// Path returns the filesystem path to the database file.
func (db *DB) Path() string {
	return db.path
}

// HealthCheck verifies the database is accessible and functioning.
func (db *DB) HealthCheck(ctx context.Context) error {
	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}
