package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Error kinds surfaced to callers. Handlers branch on these, never on message text.
var (
	ErrUnauthenticated      = new(CodeUnauthenticated, "not signed in")
	ErrForbidden            = new(CodeForbidden, "forbidden")
	ErrNotFound             = new(CodeNotFound, "resource not found")
	ErrDuplicateSlug        = new(CodeDuplicateSlug, "slug already taken")
	ErrInvalidCategory      = new(CodeInvalidCategory, "invalid category")
	ErrMissingRequiredField = new(CodeMissingRequiredField, "missing required fields")
	ErrInvalidRoleUpgrade   = new(CodeInvalidRoleUpgrade, "invalid role upgrade")
	ErrInvalidInput         = new(CodeInvalidInput, "invalid input")
	ErrInternal             = new(CodeInternal, "internal error")

	kinds = []struct {
		err    *InternalError
		status int
	}{
		{ErrUnauthenticated, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrNotFound, http.StatusNotFound},
		{ErrDuplicateSlug, http.StatusConflict},
		{ErrInvalidCategory, http.StatusBadRequest},
		{ErrMissingRequiredField, http.StatusBadRequest},
		{ErrInvalidRoleUpgrade, http.StatusBadRequest},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrInternal, http.StatusInternalServerError},
	}
)

const (
	CodeUnauthenticated      = "unauthenticated"
	CodeForbidden            = "forbidden"
	CodeNotFound             = "not_found"
	CodeDuplicateSlug        = "duplicate_slug"
	CodeInvalidCategory      = "invalid_category"
	CodeMissingRequiredField = "missing_required_field"
	CodeInvalidRoleUpgrade   = "invalid_role_upgrade"
	CodeInvalidInput         = "invalid_input"
	CodeInternal             = "internal_error"
)

// InternalError is the sentinel type behind every error kind.
type InternalError struct {
	Code    string
	Message string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func new(code, message string) *InternalError {
	return &InternalError{Code: code, Message: message}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func Is(err, reference error) bool {
	return errors.Is(err, reference)
}

// kindOf returns the sentinel err is marked with, or nil for unexpected errors.
func kindOf(err error) *InternalError {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.err
		}
	}
	return nil
}

// CodeOf returns the stable identifier for err. Unmarked errors are internal.
func CodeOf(err error) string {
	if k := kindOf(err); k != nil {
		return k.Code
	}
	return CodeInternal
}

// HTTPStatus maps err to the response status of its kind.
func HTTPStatus(err error) int {
	k := kindOf(err)
	for _, e := range kinds {
		if e.err == k {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// Hint is the caller-facing message. Internal errors never expose their cause.
func Hint(err error) string {
	k := kindOf(err)
	if k == nil || k == ErrInternal {
		return "Something went wrong. Please try again."
	}
	if h := errors.FlattenHints(err); h != "" {
		return h
	}
	return k.Message
}

func IsUnauthenticated(err error) bool      { return errors.Is(err, ErrUnauthenticated) }
func IsForbidden(err error) bool            { return errors.Is(err, ErrForbidden) }
func IsNotFound(err error) bool             { return errors.Is(err, ErrNotFound) }
func IsDuplicateSlug(err error) bool        { return errors.Is(err, ErrDuplicateSlug) }
func IsInvalidCategory(err error) bool      { return errors.Is(err, ErrInvalidCategory) }
func IsMissingRequiredField(err error) bool { return errors.Is(err, ErrMissingRequiredField) }
func IsInvalidRoleUpgrade(err error) bool   { return errors.Is(err, ErrInvalidRoleUpgrade) }
func IsInvalidInput(err error) bool         { return errors.Is(err, ErrInvalidInput) }
