package middleware

import (
	"encoding/json"
	"net/http"
)

// errorCodes mirrors the handler envelope codes for the statuses middleware emits.
var errorCodes = map[int]string{
	http.StatusUnauthorized:    "Unauthorized",
	http.StatusForbidden:       "Forbidden",
	http.StatusTooManyRequests: "RateLimited",
}

// writeJSONError writes the same {"error","error_code"} body as the handlers.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(struct {
		Error     string `json:"error"`
		ErrorCode string `json:"error_code,omitempty"`
	}{msg, errorCodes[status]})
}
