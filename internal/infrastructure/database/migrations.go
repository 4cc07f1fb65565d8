package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"
)

// MigrationsFS should be set by the migrations package to embed migration
// files into the binary:
//
//	//go:embed *.sql
//	var migrationsFS embed.FS
//
//	func init() {
//	    database.MigrationsFS = migrationsFS
//	    database.MigrationsDir = "."
//	}
var MigrationsFS embed.FS

// MigrationsDir is the directory within MigrationsFS containing migration files.
var MigrationsDir = "migrations"

// Migration represents a single database migration.
type Migration struct {
	// Version is extracted from the filename prefix, e.g. "20260301_100000".
	Version string

	// Name is the human-readable part of the filename.
	Name string

	// UpSQL contains the SQL to apply this migration.
	UpSQL string

	// DownSQL contains the SQL to roll this migration back.
	DownSQL string
}

// Migrate applies all pending migrations in version order.
//
// Each migration runs in its own transaction: if migration N fails, earlier
// migrations stay committed, N is rolled back, and later migrations are not
// attempted. Re-running Migrate after fixing the issue continues from N.
func (db *DB) Migrate(ctx context.Context) error {
	if err := db.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	migrations, err := loadMigrations()
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	if len(migrations) == 0 {
		return nil
	}

	applied, err := db.appliedVersions(ctx)
	if err != nil {
		return fmt.Errorf("getting applied migrations: %w", err)
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := db.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("applying migration %s (%s): %w", m.Version, m.Name, err)
		}
	}

	return nil
}

// createMigrationsTable ensures the schema_migrations bookkeeping table exists.
func (db *DB) createMigrationsTable(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL
		)`)
	return err
}

// appliedVersions returns the set of migration versions already applied.
func (db *DB) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// applyMigration runs a single migration inside its own transaction.
func (db *DB) applyMigration(ctx context.Context, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	if _, err := tx.ExecContext(ctx, m.UpSQL); err != nil {
		return fmt.Errorf("executing migration SQL: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
		m.Version, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("recording migration: %w", err)
	}

	return tx.Commit()
}

// loadMigrations reads and pairs up/down migration files from MigrationsFS.
//
// Filenames follow VERSION_description.up.sql / VERSION_description.down.sql
// where VERSION sorts lexicographically (YYYYMMDD_HHMMSS).
func loadMigrations() ([]Migration, error) {
	entries, err := fs.ReadDir(MigrationsFS, MigrationsDir)
	if err != nil {
		// No embedded migrations registered; nothing to do.
		return nil, nil
	}

	byVersion := make(map[string]*Migration)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		up := strings.HasSuffix(name, ".up.sql")
		down := strings.HasSuffix(name, ".down.sql")
		if !up && !down {
			continue
		}

		base := strings.TrimSuffix(strings.TrimSuffix(name, ".up.sql"), ".down.sql")
		version, desc, ok := splitVersion(base)
		if !ok {
			return nil, fmt.Errorf("invalid migration filename: %s", name)
		}

		path := name
		if MigrationsDir != "." {
			path = MigrationsDir + "/" + name
		}
		data, err := fs.ReadFile(MigrationsFS, path)
		if err != nil {
			return nil, fmt.Errorf("reading migration %s: %w", name, err)
		}

		m, exists := byVersion[version]
		if !exists {
			m = &Migration{Version: version, Name: desc}
			byVersion[version] = m
		}
		if up {
			m.UpSQL = string(data)
		} else {
			m.DownSQL = string(data)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.UpSQL == "" {
			return nil, fmt.Errorf("migration %s has no up file", m.Version)
		}
		migrations = append(migrations, *m)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// splitVersion separates "20260301_100000_initial_schema" into version and
// description parts.
func splitVersion(base string) (version, desc string, ok bool) {
	parts := strings.SplitN(base, "_", 3)
	if len(parts) < 3 {
		return "", "", false
	}
	return parts[0] + "_" + parts[1], parts[2], true
}
