package httpapi

import (
	"encoding/json"
	"net/http"

	"tailor-engine/internal/apperr"
)

type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, e)
}

// WriteAppError maps an apperr kind onto a status code.
func WriteAppError(w http.ResponseWriter, r *http.Request, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindInvalidInput:
		WriteError(w, r, http.StatusBadRequest, "invalid_input", err.Error())
	case apperr.KindNotFound:
		WriteError(w, r, http.StatusNotFound, "not_found", err.Error())
	case apperr.KindUnavailable:
		WriteError(w, r, http.StatusBadGateway, "unavailable", err.Error())
	default:
		WriteError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
