package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "heirloom/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"validation maps to 400", derrors.New(derrors.CodeValidation, "title is required"), http.StatusBadRequest, "validation"},
		{"invalid input maps to 400", derrors.New(derrors.CodeInvalidInput, "bad id"), http.StatusBadRequest, "invalid_input"},
		{"bad request maps to 400", derrors.New(derrors.CodeBadRequest, "bad body"), http.StatusBadRequest, "bad_request"},
		{"unauthorized maps to 401", derrors.New(derrors.CodeUnauthorized, "no token"), http.StatusUnauthorized, "unauthorized"},
		{"forbidden maps to 403", derrors.New(derrors.CodeForbidden, "not yours"), http.StatusForbidden, "forbidden"},
		{"not found maps to 404", derrors.New(derrors.CodeNotFound, "plan not found"), http.StatusNotFound, "not_found"},
		{"conflict maps to 409", derrors.New(derrors.CodeConflict, "already claimed"), http.StatusConflict, "conflict"},
		{"invariant violation maps to 422", derrors.New(derrors.CodeInvariantViolation, "over limit"), http.StatusUnprocessableEntity, "invariant_violation"},
		{"internal maps to 500", derrors.New(derrors.CodeInternal, "db down"), http.StatusInternalServerError, "internal_error"},
		{"uncoded error maps to 500", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tc.err)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.wantError, body["error"])
		})
	}

	t.Run("internal errors omit the description", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, derrors.New(derrors.CodeInternal, "connection refused to db-1"))

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Empty(t, body["error_description"])
	})

	t.Run("client errors carry the description", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, derrors.New(derrors.CodeConflict, "already claimed"))

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "already claimed", body["error_description"])
	})
}

func TestWriteJSON(t *testing.T) {
	t.Run("encodes the payload with the given status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteJSON(rec, http.StatusCreated, map[string]int{"version": 2})

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"version":2}`, rec.Body.String())
	})

	t.Run("nil payload writes no body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteJSON(rec, http.StatusNoContent, nil)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Zero(t, rec.Body.Len())
	})
}
