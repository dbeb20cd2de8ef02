package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jacoblehr/codex/pkg/types"
)

// classify maps engine constraint failures (unique, foreign key, check,
// not null) to types.ErrConstraintViolation. Other errors pass through.
func classify(err error) error {
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if errors.Is(err, types.ErrConstraintViolation) {
		return err
	}
	if isConstraint(err) {
		return fmt.Errorf("%w: %w", types.ErrConstraintViolation, err)
	}
	return err
}

func isConstraint(err error) bool {
	var se *sqlitedrv.Error
	if errors.As(err, &se) {
		// Extended result codes keep the primary code in the low byte.
		return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return strings.Contains(err.Error(), "constraint failed")
}
