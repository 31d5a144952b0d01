package http

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON envelope for every error response. Message is a
// stable, machine-checkable string; Field names the offending request field
// for validation failures. Internal detail never goes into either.
type ErrorBody struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

// WriteError writes a JSON error envelope with the given status and message.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorBody{Message: message})
}

// WriteFieldError writes a JSON validation error envelope naming the
// offending field.
func WriteFieldError(w http.ResponseWriter, status int, message, field string) {
	WriteJSON(w, status, ErrorBody{Message: message, Field: field})
}

// WriteInternalError writes a generic 500 response. The cause stays in the
// server logs only.
func WriteInternalError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, "Internal Server Error")
}
