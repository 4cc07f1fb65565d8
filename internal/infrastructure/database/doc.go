// Package database manages the SQLite connection for Argent Core.
//
// It wraps database/sql with lifecycle management (directory creation,
// WAL pragmas, connection pool limits suited to SQLite's single-writer
// model) and embedded schema migrations.
//
// Migrations are SQL files named VERSION_description.up.sql /
// VERSION_description.down.sql, embedded by the migrations package and
// applied in version order, each in its own transaction.
package database
