package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrVersionConflict is returned by CAS updates when the row was
// modified since it was read. Services reload and retry.
var ErrVersionConflict = errors.New("entity was modified concurrently")

// SQLExecutor abstracts *sql.DB and *sql.Tx so repository writes can
// participate in caller-managed transactions.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func checkAffectedRows(result sql.Result, zeroRowsError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return zeroRowsError
	}
	return nil
}
