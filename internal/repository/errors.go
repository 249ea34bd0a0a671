package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound            = errors.New("user not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrConnection          = errors.New("store unavailable")
)

// storeError maps a gorm error onto the repository sentinels. Errors that
// already carry a sentinel pass through untouched.
func storeError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConstraintViolation), errors.Is(err, ErrConnection):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w: %w", op, ErrConstraintViolation, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrConnection, err)
	}
}
