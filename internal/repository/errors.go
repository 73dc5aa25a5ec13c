package repository

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrUniqueViolation is returned when an insert or update breaks a
	// uniqueness constraint (voucher_code, barcode, employee_code).
	ErrUniqueViolation = errors.New("unique constraint violation")

	// ErrDuplicateName is returned when creating or renaming an
	// employee would collide with another active employee's name.
	// Names are compared case-insensitively; inactive employees do not
	// participate, so a re-hired name can be registered again.
	ErrDuplicateName = errors.New("active employee with this name already exists")

	// ErrEmployeeNotFound is returned by updates against a missing id.
	ErrEmployeeNotFound = errors.New("employee not found")
)

// classify maps driver-level errors to typed storage errors so callers
// never inspect sqlite error strings.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return ErrUniqueViolation
		}
	}
	return err
}
