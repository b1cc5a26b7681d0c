// Package httputil maps domain errors onto HTTP responses.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "fundledger/pkg/domain-errors"
	"fundledger/pkg/requestcontext"
)

// Validatable is implemented by request DTOs that validate and parse their
// own fields.
type Validatable interface {
	Validate() error
}

// DecodeAndPrepare decodes the request body into T, runs its validation, and
// writes the error response itself on failure. Handlers bail out when ok is
// false.
func DecodeAndPrepare[T Validatable](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(r.Context(), "invalid request body",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err.Error(),
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		var zero T
		return zero, false
	}
	if err := req.Validate(); err != nil {
		WriteError(w, err)
		var zero T
		return zero, false
	}
	return req, true
}

// errorResponse is the JSON error envelope. Description is omitted for
// internal errors so failure detail never leaks to callers.
type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

var statusByCode = map[dErrors.Code]int{
	dErrors.CodeInvalidInput:  http.StatusBadRequest,
	dErrors.CodeBadRequest:    http.StatusBadRequest,
	dErrors.CodeNotFound:      http.StatusNotFound,
	dErrors.CodeUnauthorized:  http.StatusForbidden,
	dErrors.CodeInvalidState:  http.StatusConflict,
	dErrors.CodeLimitExceeded: http.StatusUnprocessableEntity,
	dErrors.CodeInternal:      http.StatusInternalServerError,
}

// WriteError writes err as a JSON error response with the status its code
// maps to. Uncoded errors are treated as internal.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	resp := errorResponse{Error: string(code)}
	if code != dErrors.CodeInternal {
		resp.Description = dErrors.MessageOf(err)
	}

	WriteJSON(w, status, resp)
}

// WriteJSON writes v as a JSON response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
