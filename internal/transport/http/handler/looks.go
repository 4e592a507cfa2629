package handler

import (
	"net/http"
	"strconv"

	"github.com/glam-looks-api/internal/application/look"
	"github.com/glam-looks-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

// LookHandler serves stored look recommendations.
type LookHandler struct {
	svc look.Service
}

func NewLookHandler(svc look.Service) *LookHandler { return &LookHandler{svc: svc} }

// List handles GET /v1/looks?user_id=&limit=&cursor=, newest first.
func (h *LookHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID, err := callerID(r, q.Get("user_id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	page, err := h.svc.List(r.Context(), userID, limit, q.Get("cursor"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Get handles GET /v1/looks/{uploadId}.
func (h *LookHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r, r.URL.Query().Get("user_id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	l, err := h.svc.Get(r.Context(), userID, chi.URLParam(r, "uploadId"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Data: l})
}

// Save handles POST /v1/looks/save, the admin bypass that writes a full
// recommendation directly.
func (h *LookHandler) Save(w http.ResponseWriter, r *http.Request) {
	var l domain.LookRecommendation
	if err := decodeBody(w, r, &l, false); err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := h.svc.Save(r.Context(), &l); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, DataEnvelope{Data: l})
}
