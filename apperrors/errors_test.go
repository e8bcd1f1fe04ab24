package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{NotFound("Friend request not found."), http.StatusBadRequest},
		{Conflict("email", "taken"), http.StatusBadRequest},
		{Authentication("Invalid credentials"), http.StatusUnauthorized},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.HTTPStatus(), tc.err.Error())
	}
}

func TestAsWrapsUntypedErrors(t *testing.T) {
	cause := errors.New("connection refused")

	got := As(fmt.Errorf("load user: %w", cause))

	assert.Equal(t, KindInternal, got.Kind)
	assert.ErrorIs(t, got, cause)
}

func TestAsFindsWrappedAppError(t *testing.T) {
	orig := Field("receiver_email", "User with this email does not exist.")

	got := As(fmt.Errorf("send: %w", orig))

	assert.Same(t, orig, got)
	assert.True(t, IsKind(got, KindValidation))
	assert.Equal(t, []string{"User with this email does not exist."}, got.Fields["receiver_email"])
}
