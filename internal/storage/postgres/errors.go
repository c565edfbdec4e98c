package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/GoSim-25-26J-441/taskroom-backend/internal/apperr"
)

// Classify maps a pgx error to an apperr kind. notFound is the message
// used when the query matched no row.
func Classify(op, notFound string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(notFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return apperr.Wrap(apperr.KindConflict, "record already exists", err)
		case "23502", "23514", "22P02", "23503":
			return apperr.Wrap(apperr.KindValidation, "invalid fields", err)
		}
	}
	return apperr.Internal(op, err)
}
