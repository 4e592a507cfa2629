package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/glam-looks-api/internal/domain"
	"github.com/glam-looks-api/internal/transport/http/middleware"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string       `json:"message,omitempty"`
	Error     string       `json:"error,omitempty"`
	Stage     domain.Stage `json:"stage,omitempty"`
	ErrorCode string       `json:"error_code,omitempty"`
}

// DataEnvelope wraps single-resource responses.
type DataEnvelope struct {
	Data interface{} `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg, ErrorCode: codeFor(status)})
}

// errorMapping orders sentinel checks; the first match wins.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "Timeout"},
	{domain.ErrValidation, http.StatusUnprocessableEntity, "ValidationError"},
	{domain.ErrBadRequest, http.StatusBadRequest, "BadRequest"},
	{domain.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	{domain.ErrForbidden, http.StatusForbidden, "Forbidden"},
	{domain.ErrNotFound, http.StatusNotFound, "NotFound"},
	{domain.ErrConflict, http.StatusConflict, "Conflict"},
	{domain.ErrCredentialExpired, http.StatusGone, "CredentialExpired"},
	{domain.ErrGenerationMalformed, http.StatusBadGateway, "GenerationMalformed"},
	{domain.ErrAnalysisUnavailable, http.StatusServiceUnavailable, "AnalysisUnavailable"},
	{domain.ErrGenerationUnavailable, http.StatusServiceUnavailable, "GenerationUnavailable"},
	{domain.ErrStorageUnavailable, http.StatusServiceUnavailable, "StorageUnavailable"},
}

// statusFor maps a service error onto an HTTP status and error code.
func statusFor(err error) (int, string) {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "InternalError"
}

func codeFor(status int) string {
	for _, m := range errorMapping {
		if m.status == status {
			return m.code
		}
	}
	if status == http.StatusInternalServerError {
		return "InternalError"
	}
	return ""
}

// writeDomainError writes err with its mapped status; pipeline failures
// carry the stage they ended in.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("unhandled error", "path", r.URL.Path, "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, MessageEnvelope{Error: msg, Stage: domain.StageOf(err), ErrorCode: code})
}

// callerID resolves the user a request acts for. A JWT identity is
// authoritative: a different explicit user id is forbidden. When JWT is
// configured an anonymous caller cannot act for any user; otherwise the
// explicit id is required.
func callerID(r *http.Request, explicit string) (string, error) {
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		if explicit != "" && explicit != claims.UserID {
			return "", fmt.Errorf("user_id does not match token: %w", domain.ErrForbidden)
		}
		return claims.UserID, nil
	}
	if middleware.IdentityEnforced(r.Context()) {
		return "", fmt.Errorf("bearer token required: %w", domain.ErrUnauthorized)
	}
	if explicit == "" {
		return "", fmt.Errorf("user_id is required: %w", domain.ErrBadRequest)
	}
	return explicit, nil
}

// decodeBody strictly decodes a JSON request body into v. An empty body
// leaves v untouched when allowEmpty is set.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}, allowEmpty bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid request body: %w", domain.ErrBadRequest)
	}
	return nil
}
