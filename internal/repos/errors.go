package repos

import (
	"database/sql"
	"strings"

	"github.com/lib/pq"

	ierr "bizdir/internal/errors"
)

// NotFound builds the error every store returns for a missing row.
func NotFound(what string) error {
	return ierr.NewError(what+" not found").
		WithHintf("%s not found", what).
		Mark(ierr.ErrNotFound)
}

// DuplicateSlug builds the error for a slug already held by another row.
func DuplicateSlug(slug string) error {
	return ierr.NewError("slug already taken: " + slug).
		WithHint("This slug is already taken. Please choose another one.").
		Mark(ierr.ErrDuplicateSlug)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if ierr.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// translate maps driver errors onto error kinds.
func translate(err error, what, slug string) error {
	switch {
	case err == nil:
		return nil
	case err == sql.ErrNoRows || ierr.Is(err, sql.ErrNoRows):
		return NotFound(what)
	case isUniqueViolation(err):
		return DuplicateSlug(slug)
	}
	return ierr.Internal(err, what)
}

func mustAffect(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return ierr.Internal(err, what)
	}
	if n == 0 {
		return NotFound(what)
	}
	return nil
}
