package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens the sqlite file at path with a single connection, so
// transactions in the store never contend with each other.
func Open(path string) (*sql.DB, error) {
	if err := registerFunctions(); err != nil {
		return nil, err
	}
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	sqldb.SetMaxOpenConns(1)
	if err := sqldb.Ping(); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	for _, pragma := range []string{
		`PRAGMA foreign_keys = ON;`,
		`PRAGMA busy_timeout = 5000;`,
	} {
		if _, err := sqldb.Exec(pragma); err != nil {
			_ = sqldb.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}
	return sqldb, nil
}

// OpenMigrated opens path and brings the schema up to date.
func OpenMigrated(path string) (*sql.DB, error) {
	sqldb, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := ApplyMigrations(sqldb); err != nil {
		_ = sqldb.Close()
		return nil, err
	}
	return sqldb, nil
}
