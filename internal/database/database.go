package database

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // CGO-free SQLite driver
)

// Open opens a SQLite database at the given DSN. When the DSN carries no
// query string of its own, WAL mode, a 5s busy timeout and foreign key
// enforcement are applied; foreign keys back the session cascade deletes.
func Open(dsn string) (*sql.DB, error) {
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if strings.Contains(dsn, ":memory:") {
		// Every pooled connection to :memory: would otherwise see its own
		// empty database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
