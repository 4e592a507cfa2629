package handler

import (
	"net/http"

	"github.com/glam-looks-api/internal/application/upload"
	"github.com/glam-looks-api/internal/transport/http/middleware"
)

// UploadHandler issues selfie upload credentials.
type UploadHandler struct {
	svc upload.Service
}

func NewUploadHandler(svc upload.Service) *UploadHandler { return &UploadHandler{svc: svc} }

type uploadURLRequest struct {
	UserID string `json:"user_id"`
}

// Issue handles POST /v1/upload-url. The body is optional; the caller's
// user id, when known, is bound into the credential.
func (h *UploadHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req uploadURLRequest
	if err := decodeBody(w, r, &req, true); err != nil {
		writeDomainError(w, r, err)
		return
	}
	userID := req.UserID
	if _, ok := middleware.ClaimsFromContext(r.Context()); ok || req.UserID != "" {
		id, err := callerID(r, req.UserID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		userID = id
	}
	cred, err := h.svc.Issue(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cred)
}
