package errorutil_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sro-service/pkg/util/errorutil"
)

func TestConstructorsCarryCodeAndStatus(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{errorutil.NewGuardViolation("blocked", nil), errorutil.CodeGuardViolation, http.StatusUnprocessableEntity},
		{errorutil.NewConflict("duplicate", nil), errorutil.CodeConflict, http.StatusConflict},
		{errorutil.NewNotFound("callout", nil), errorutil.CodeNotFound, http.StatusNotFound},
		{errorutil.NewBusy("in flight", nil), errorutil.CodeBusy, http.StatusConflict},
		{errorutil.NewRemoteFailure("store down", nil), errorutil.CodeRemoteFailure, http.StatusBadGateway},
		{errorutil.NewValidationError("bad input", nil), errorutil.CodeValidation, http.StatusBadRequest},
	}
	for _, tc := range cases {
		var de *errorutil.DomainError
		require.ErrorAs(t, tc.err, &de)
		assert.Equal(t, tc.code, de.Code)
		assert.Equal(t, tc.status, de.HTTPStatus)
	}
}

func TestToDomainErrorMapsRowMisses(t *testing.T) {
	de := errorutil.ToDomainError(fmt.Errorf("loading: %w", pgx.ErrNoRows))
	require.NotNil(t, de)
	assert.Equal(t, errorutil.CodeNotFound, de.Code)
}

func TestToDomainErrorPassesThroughDomainErrors(t *testing.T) {
	original := errorutil.NewConflict("duplicate", map[string]any{"id": "x"})
	de := errorutil.ToDomainError(fmt.Errorf("handling: %w", original))
	require.NotNil(t, de)
	assert.Equal(t, errorutil.CodeConflict, de.Code)
	assert.Equal(t, "x", de.Details["id"])
}

func TestToDomainErrorWrapsUnknownErrors(t *testing.T) {
	de := errorutil.ToDomainError(errors.New("boom"))
	require.NotNil(t, de)
	assert.Equal(t, errorutil.CodeInternal, de.Code)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)

	assert.Nil(t, errorutil.ToDomainError(nil))
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := errorutil.NewRemoteFailure("store unavailable", cause)
	assert.ErrorIs(t, err, cause)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, errorutil.CodeBusy, errorutil.CodeOf(errorutil.NewBusy("hold", nil)))
	assert.Equal(t, errorutil.CodeInternal, errorutil.CodeOf(errors.New("boom")))
	assert.Equal(t, "", errorutil.CodeOf(nil))
}
