package api

import (
	"encoding/json"
	"net/http"

	"github.com/pedalstack/pedalstack/pkg/errors"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a domain error code to an HTTP status and writes the
// error body.
func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidGeometry,
		errors.ErrCodeInvalidBoard,
		errors.ErrCodeInvalidPedal,
		errors.ErrCodeInvalidChain,
		errors.ErrCodeInvalidConfig,
		errors.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound,
		errors.ErrCodePedalNotFound,
		errors.ErrCodeBoardNotFound,
		errors.ErrCodeSessionNotFound:
		status = http.StatusNotFound
	case errors.ErrCodePlacementInfeasible:
		status = http.StatusUnprocessableEntity
	case errors.ErrCodeRoutingBlocked:
		status = http.StatusConflict
	case errors.ErrCodeUnsupported:
		status = http.StatusNotImplemented
	}
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, errorBody{Code: string(code), Message: errors.UserMessage(err)})
}

// decode parses a JSON request body into v.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parsing request body")
	}
	return nil
}
