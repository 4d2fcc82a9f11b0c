package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/erazemk/torba/internal/errs"
)

// statusByCode maps error codes to HTTP status codes.
var statusByCode = map[string]int{
	errs.EInvalid:      http.StatusBadRequest,
	errs.EUnauthorized: http.StatusUnauthorized,
	errs.ENotFound:     http.StatusNotFound,
	errs.EConflict:     http.StatusConflict,
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error envelope.
func jsonError(w http.ResponseWriter, status int, code, message string) {
	jsonResponse(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// handleError writes the response for an error returned by a store call.
// Coded errors keep their message. Anything else is logged and reported as
// fallback so storage details never reach the client.
func handleError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	code := errs.Code(err)
	if status, ok := statusByCode[code]; ok {
		jsonError(w, status, code, errs.Message(err))
		return
	}

	slog.Error(fallback, "error", err, "method", r.Method, "path", r.URL.Path)
	jsonError(w, http.StatusBadRequest, errs.EInvalid, fallback)
}

// invalidInput writes a 400 INVALID_INPUT response.
func invalidInput(w http.ResponseWriter, format string, args ...any) {
	jsonError(w, http.StatusBadRequest, errs.EInvalid, fmt.Sprintf(format, args...))
}

// noContent writes an empty 204 response.
func noContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
