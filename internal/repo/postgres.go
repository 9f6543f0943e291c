package repo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/BuzzLyutic/taskpad/internal/model"
)

// mapError переводит ошибки pgx в ошибки домена
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return model.ErrConflict
		case "23514":
			return fmt.Errorf("%w: %s", model.ErrValidation, pgErr.ConstraintName)
		}
	}
	return err
}

// orderClause only ever interpolates whitelisted column names.
func orderClause(o model.Order) (string, error) {
	if !o.Valid() {
		return "", fmt.Errorf("%w: unknown order field %q", model.ErrValidation, o.Field)
	}
	dir := "ASC"
	if o.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s, id %s", o.Field, dir, dir), nil
}

func stringPtr[S ~string](p *S) *string {
	if p == nil {
		return nil
	}
	s := string(*p)
	return &s
}
