package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorKnownCode(t *testing.T) {
	err := NewError(ErrDuplicateUsername)
	require.NotNil(t, err)
	assert.Equal(t, ErrDuplicateUsername, err.Code)
	assert.Equal(t, http.StatusOK, err.Status, "codes without explicit status default to 200")
	assert.Contains(t, err.Error(), "taken")
}

func TestNewErrorUnknownCodeFallsBack(t *testing.T) {
	err := NewError(999999)
	assert.Equal(t, ErrUnknown, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestNewErrorFormatsDetails(t *testing.T) {
	err := NewError(ErrUnrecognizedEvent, "room-nuke")
	assert.Contains(t, err.Message, `"room-nuke"`)
}

func TestWrapExposesCause(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := Wrap(ErrDeliveryFailed, cause, "conn-1")

	assert.True(t, HasCode(err, ErrDeliveryFailed))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestHasCode(t *testing.T) {
	err := NewError(ErrMemberNotFound)

	assert.True(t, HasCode(err, ErrMemberNotFound))
	assert.False(t, HasCode(err, ErrDuplicateUsername))
	assert.False(t, HasCode(errors.New("plain"), ErrMemberNotFound))
	assert.False(t, HasCode(nil, ErrMemberNotFound))

	wrapped := fmt.Errorf("dispatch: %w", err)
	assert.True(t, HasCode(wrapped, ErrMemberNotFound))
}
