package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNoEncontrado    = errors.New("registro no encontrado")
	ErrDuplicado       = errors.New("registro duplicado")
	ErrEnUso           = errors.New("registro referenciado por otros datos")
	ErrRestriccion     = errors.New("restriccion de datos violada")
	ErrConflictoEstado = errors.New("el estado cambio antes de la actualizacion")
)

// PostgreSQL SQLSTATE codes the repositories translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgExclusionViolation  = "23P01"
)

// traducirError maps driver errors onto the package sentinels, keeping the
// constraint name in the message. Unknown errors pass through untouched.
func traducirError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNoEncontrado
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation, pgExclusionViolation:
		return fmt.Errorf("%w: %s", ErrDuplicado, pgErr.ConstraintName)
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %s", ErrEnUso, pgErr.ConstraintName)
	case pgCheckViolation:
		return fmt.Errorf("%w: %s", ErrRestriccion, pgErr.ConstraintName)
	}
	return err
}
