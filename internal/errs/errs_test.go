package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain", errors.New("boom"), EInternal},
		{"coded", NotFound("site not found"), ENotFound},
		{"wrapped", fmt.Errorf("deleting site: %w", Conflict("has bags")), EConflict},
		{"empty code", &Error{Msg: "x"}, EInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Code(tt.err))
		})
	}
}

func TestErrorString(t *testing.T) {
	cause := errors.New("disk full")

	assert.Equal(t, "name is required", Invalid("name is required").Error())
	assert.Equal(t, "store.CreateBag: generating token: disk full",
		(&Error{Code: EInternal, Op: "store.CreateBag", Msg: "generating token", Err: cause}).Error())
	assert.Equal(t, "<NOT_FOUND>", (&Error{Code: ENotFound}).Error())
	assert.ErrorIs(t, &Error{Code: EInternal, Err: cause}, cause)
}

func TestMessageAndIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Invalid("active must be a boolean"))

	assert.Equal(t, "active must be a boolean", Message(err))
	assert.True(t, Is(err, EInvalid))
	assert.False(t, Is(err, ENotFound))
	assert.Empty(t, Message(errors.New("plain")))
}
