package web

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{common.ErrorNotFound, http.StatusNotFound},
		{common.ErrAlreadyRegistered, http.StatusConflict},
		{common.ErrorAlreadyExists, http.StatusConflict},
		{common.ErrTxConflict, http.StatusConflict},
		{common.ErrorInvalidCredentials, http.StatusUnauthorized},
		{common.ErrPasswordTooShort, http.StatusBadRequest},
		{common.ErrPasswordTooLong, http.StatusBadRequest},
		{fmt.Errorf("%w: %q", common.ErrUnknownRole, "root"), http.StatusBadRequest},
		{common.ErrMailFailed, http.StatusServiceUnavailable},
		{common.ErrorInternal, http.StatusInternalServerError},
		{errors.New("pq: connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			got, msg := statusFor(tt.err)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestStatusFor_HidesInternalDetail(t *testing.T) {
	_, msg := statusFor(errors.New("db error: password authentication failed for user gk"))
	assert.Equal(t, "internal error", msg)
}
