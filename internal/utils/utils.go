package utils

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Error codes carried in ErrorResponse.Code.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeInvalidReading = "INVALID_READING"
	CodeNotFound       = "NOT_FOUND"
	CodeBadRequest     = "BAD_REQUEST"
	CodeInternal       = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  any    `json:"detail,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to write JSON", "error", err)
	}
}

func WriteError(w http.ResponseWriter, status int, code string, msg string) {
	WriteJSON(w, status, ErrorResponse{Code: code, Message: msg})
}

// WriteErrorDetail is WriteError with a machine-readable detail payload.
func WriteErrorDetail(w http.ResponseWriter, status int, code string, msg string, detail any) {
	WriteJSON(w, status, ErrorResponse{Code: code, Message: msg, Detail: detail})
}
