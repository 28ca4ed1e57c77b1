package errors

import (
	"database/sql"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternalKeepsCauseAndHidesIt(t *testing.T) {
	err := Internal(sql.ErrConnDone, "load business")

	assert.True(t, Is(err, ErrInternal))
	assert.True(t, Is(err, sql.ErrConnDone))
	assert.Contains(t, err.Error(), "load business")
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
	assert.Equal(t, CodeInternal, CodeOf(err))
	assert.NotContains(t, Hint(err), "connection")
}

func TestBuilderKinds(t *testing.T) {
	err := NewError("slug already taken: joes-coffee").
		WithMessage("create business").
		WithHint("This slug is already taken.").
		Mark(ErrDuplicateSlug)

	assert.True(t, IsDuplicateSlug(err))
	assert.Equal(t, http.StatusConflict, HTTPStatus(err))
	assert.Equal(t, "This slug is already taken.", Hint(err))
	assert.Contains(t, err.Error(), "create business")
}
