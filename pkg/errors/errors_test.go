package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errSentinel = errors.New("tiles per vertex must be at least 3")

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"new", New(ErrCodeInvalidWord, "invalid symbol %q", 'x'), "INVALID_WORD: invalid symbol 'x'"},
		{"wrap", Wrap(ErrCodeInvalidConfig, errSentinel, "profile"), "INVALID_CONFIG: profile: tiles per vertex must be at least 3"},
		{"no args", New(ErrCodeNonConvergent, "rule loop"), "NON_CONVERGENT: rule loop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapKeepsSentinel(t *testing.T) {
	err := Wrap(ErrCodeInvalidConfig, fmt.Errorf("%w: got 2", errSentinel), "tiles_per_vertex")

	assert.True(t, errors.Is(err, errSentinel), "sentinel lost in %v", err)
	assert.Equal(t, ErrCodeInvalidConfig, err.Code)
	assert.Equal(t, "tiles_per_vertex", err.Message)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestIs(t *testing.T) {
	inner := New(ErrCodeInvalidWord, "bad symbol")

	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"matching code", inner, ErrCodeInvalidWord, true},
		{"other code", inner, ErrCodeInvalidInput, false},
		{"outermost code wins", Wrap(ErrCodeInvalidConfig, inner, "rule 3"), ErrCodeInvalidConfig, true},
		{"inner code hidden", Wrap(ErrCodeInvalidConfig, inner, "rule 3"), ErrCodeInvalidWord, false},
		{"through fmt wrapping", fmt.Errorf("load: %w", inner), ErrCodeInvalidWord, true},
		{"plain error", errSentinel, ErrCodeInvalidInput, false},
		{"nil", nil, ErrCodeInvalidInput, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is(%v, %s) = %v, want %v", tt.err, tt.code, got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeNonConvergent, GetCode(New(ErrCodeNonConvergent, "loop")))
	assert.Equal(t, ErrCodeTimeout, GetCode(fmt.Errorf("render: %w", New(ErrCodeTimeout, "deadline"))))
	assert.Equal(t, Code(""), GetCode(errSentinel))
	assert.Equal(t, Code(""), GetCode(nil))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "unknown format \"gif\"", UserMessage(New(ErrCodeInvalidFormat, "unknown format %q", "gif")))
	assert.Equal(t, errSentinel.Error(), UserMessage(errSentinel))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeInvalidConfig, http.StatusBadRequest},
		{ErrCodeInvalidWord, http.StatusBadRequest},
		{ErrCodeInvalidFormat, http.StatusBadRequest},
		{ErrCodeInvalidProjection, http.StatusBadRequest},
		{ErrCodeInvalidPath, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeFileNotFound, http.StatusNotFound},
		{ErrCodeNonConvergent, http.StatusUnprocessableEntity},
		{ErrCodeUnsupported, http.StatusNotImplemented},
		{ErrCodeTimeout, http.StatusGatewayTimeout},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeNetwork, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPStatus(New(tt.code, "x")); got != tt.want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
	if got := HTTPStatus(errSentinel); got != http.StatusInternalServerError {
		t.Errorf("HTTPStatus(plain) = %d, want 500", got)
	}
}
