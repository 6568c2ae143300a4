package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodes(t *testing.T) {
	t.Run("new error carries its code", func(t *testing.T) {
		err := New(CodeConflict, "already registered")
		assert.True(t, HasCode(err, CodeConflict))
		assert.Equal(t, CodeConflict, CodeOf(err))
		assert.Equal(t, "already registered", err.Error())
	})

	t.Run("wrapped error keeps cause", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Wrap(cause, CodeInternal, "failed to load application")
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "failed to load application: connection reset", err.Error())
	})

	t.Run("code survives fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("submit: %w", New(CodeValidation, "license document is required"))
		assert.True(t, HasCode(err, CodeValidation))
	})

	t.Run("plain errors are internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
		assert.False(t, HasCode(errors.New("boom"), CodeNotFound))
	})

	t.Run("wrap of nil is nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "unused"))
	})

	t.Run("message of domain and plain errors", func(t *testing.T) {
		assert.Equal(t, "email is required", MessageOf(New(CodeValidation, "email is required")))
		assert.Equal(t, "internal error", MessageOf(errors.New("dial tcp: refused")))
	})
}
