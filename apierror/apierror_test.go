package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCodeByKind(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{SessionExpired(), http.StatusBadRequest},
		{InvalidCode(), http.StatusBadRequest},
		{SessionNotFound(), http.StatusPaymentRequired},
		{NotFound("user not found"), http.StatusNotFound},
		{RoleMismatch("nope"), http.StatusForbidden},
		{Forbidden("nope"), http.StatusForbidden},
		{Unauthorized("nope"), http.StatusUnauthorized},
		{Conflict("dup"), http.StatusConflict},
		{TooManyRequests("slow down"), http.StatusTooManyRequests},
		{Persistence("db", errors.New("boom")), http.StatusInternalServerError},
		{Delivery("smtp", errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.StatusCode(), tc.err.Kind.String())
	}
}

func TestWrappedCauseIsPreserved(t *testing.T) {
	root := errors.New("connection refused")
	err := fmt.Errorf("resend: %w", Delivery("Failed to send OTP", root))

	apiErr, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, KindDelivery, apiErr.Kind)
	assert.ErrorIs(t, err, root)
	assert.Equal(t, KindDelivery, KindOf(err))
	assert.Equal(t, []string{"resend: Failed to send OTP: connection refused", "Failed to send OTP", "connection refused"}, Chain(err))
}

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("verify: %w", InvalidCode())
	assert.True(t, errors.Is(err, &Error{Kind: KindInvalidCode}))
	assert.False(t, errors.Is(err, &Error{Kind: KindSessionExpired}))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}
