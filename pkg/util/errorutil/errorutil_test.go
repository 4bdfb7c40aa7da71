package errorutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPanelFailure_StatusByCode(t *testing.T) {
	cases := map[string]int{
		"NOT_CONFIGURED":  http.StatusServiceUnavailable,
		"NO_AUTH_METHOD":  http.StatusServiceUnavailable,
		"TRANSPORT":       http.StatusBadGateway,
		"PARSE":           http.StatusBadGateway,
		"INVALID_FORMAT":  http.StatusBadGateway,
		"ALL_AUTH_FAILED": http.StatusBadGateway,
		"TIMEOUT":         http.StatusGatewayTimeout,
		"DOMAIN_CONFLICT": http.StatusConflict,
		"AUTH_REJECTED":   http.StatusBadRequest,
		"UNKNOWN":         http.StatusBadRequest,
	}
	for code, status := range cases {
		err := NewPanelFailure("Failed to create website in CyberPanel", code, "panel said no")
		var domainErr *DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, status, domainErr.HTTPStatus, code)
		assert.Equal(t, code, domainErr.Code)
		assert.Equal(t, "panel said no", domainErr.Details["details"])
	}

	var domainErr *DomainError
	require.True(t, errors.As(NewPanelFailure("x", "", "y"), &domainErr))
	assert.Equal(t, "PANEL_ERROR", domainErr.Code)
}

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	wrapped := fmt.Errorf("load: %w", NewConflict("taken", nil))
	assert.Equal(t, "CONFLICT", ToDomainError(wrapped).Code)

	assert.Equal(t, http.StatusNotFound, ToDomainError(pgx.ErrNoRows).HTTPStatus)
	assert.Equal(t, http.StatusGatewayTimeout, ToDomainError(context.DeadlineExceeded).HTTPStatus)

	internal := ToDomainError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, internal.HTTPStatus)
	assert.ErrorContains(t, internal, "boom")
}
