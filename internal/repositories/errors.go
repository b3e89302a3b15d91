package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bsead/budget-pro/internal/ledger"
)

const pgForeignKeyViolation = "23503"

func storeError(op string, err error) error {
	return &ledger.StoreError{Op: op, Err: err}
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
