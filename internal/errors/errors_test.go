package errors_test

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/dancerank/internal/errors"
)

func TestAs_FindsWrappedAppError(t *testing.T) {
	inner := errors.NewNotFoundError("music", 7)
	wrapped := fmt.Errorf("loading sheet: %w", inner)

	appErr, ok := errors.As(wrapped)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeNotFound, appErr.Code)
	assert.Equal(t, 404, appErr.Status)
	assert.Equal(t, "NOT_FOUND: music not found: 7", appErr.Error())

	_, ok = errors.As(sql.ErrNoRows)
	assert.False(t, ok)
}

func TestUnavailableError(t *testing.T) {
	err := errors.NewUnavailableError("score", sql.ErrConnDone)

	assert.True(t, err.Retryable())
	assert.Equal(t, 503, err.Status)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.Contains(t, err.Error(), "score could not be saved")

	assert.False(t, errors.NewInternalError(sql.ErrConnDone).Retryable())
	assert.False(t, errors.NewConflictError("sheet", 1).Retryable())
}

func TestNotFoundErrorf(t *testing.T) {
	err := errors.NewNotFoundErrorf(sql.ErrNoRows, "music %d or user %d not found", 1, 2)

	assert.Equal(t, errors.ErrCodeNotFound, err.Code)
	assert.Equal(t, 404, err.Status)
	assert.Equal(t, "music 1 or user 2 not found", err.Message)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.False(t, err.Retryable())
}
