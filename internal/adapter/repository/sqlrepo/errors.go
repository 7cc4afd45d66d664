package sqlrepo

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	sqlite "modernc.org/sqlite"

	"github.com/rlx-labs/coinledger/internal/domain"
)

// SQLite extended result codes for constraint violations.
const (
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == "23505"
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqliteConstraintPrimaryKey || code == sqliteConstraintUnique
	}
	return false
}

func wrapStorage(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}

// normalizePage applies the defensive pagination defaults shared by every
// list query.
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return page, pageSize
}
