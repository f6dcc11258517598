package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campuscart/backend/internal/lifecycle"
	"github.com/campuscart/backend/internal/services"
)

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{lifecycle.ErrPreconditionFailed, http.StatusPreconditionFailed},
		{fmt.Errorf("update: %w", services.ErrStatusConflict), http.StatusConflict},
		{fmt.Errorf("get: %w", services.ErrProductNotFound), http.StatusNotFound},
		{services.ErrForbidden, http.StatusForbidden},
		{services.ErrImageRejected, http.StatusUnprocessableEntity},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		got, _ := errorStatus(c.err)
		require.Equal(t, c.want, got, c.err.Error())
	}
}
