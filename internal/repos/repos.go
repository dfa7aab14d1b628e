package repos

import (
	"database/sql"
	"errors"
)

// ErrNotFound signals a lookup that resolved no row for the caller's scope.
var ErrNotFound = errors.New("not found")

// withTx runs fn inside a transaction, rolling back when fn errors and
// committing otherwise. This is the unit of atomicity for every mutating
// operation in the service.
func withTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
