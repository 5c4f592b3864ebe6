// Package httputil maps domain errors onto JSON HTTP responses so handlers
// stay free of status-code switch statements.
package httputil

import (
	"encoding/json"
	"net/http"

	derrors "heirloom/pkg/domain-errors"
)

type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

var statusByCode = map[derrors.Code]int{
	derrors.CodeValidation:         http.StatusBadRequest,
	derrors.CodeInvalidInput:       http.StatusBadRequest,
	derrors.CodeBadRequest:         http.StatusBadRequest,
	derrors.CodeUnauthorized:       http.StatusUnauthorized,
	derrors.CodeForbidden:          http.StatusForbidden,
	derrors.CodeNotFound:           http.StatusNotFound,
	derrors.CodeConflict:           http.StatusConflict,
	derrors.CodeInvariantViolation: http.StatusUnprocessableEntity,
	derrors.CodeInternal:           http.StatusInternalServerError,
}

// WriteError renders err as a JSON error response. Internal errors omit the
// description so infrastructure details never leak to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := derrors.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	body := errorBody{Error: string(code)}
	if code != derrors.CodeInternal {
		body.ErrorDescription = derrors.MessageOf(err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteJSON renders v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
