package handler

import (
	"net/http"

	"github.com/glam-looks-api/internal/application/pipeline"
	"github.com/glam-looks-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

// PipelineHandler runs the look pipeline and reports run state.
type PipelineHandler struct {
	svc pipeline.Service
}

func NewPipelineHandler(svc pipeline.Service) *PipelineHandler { return &PipelineHandler{svc: svc} }

// Analyze handles POST /v1/analyze. It blocks until the run is Saved or Failed.
func (h *PipelineHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req domain.RunRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		writeDomainError(w, r, err)
		return
	}
	userID, err := callerID(r, req.UserID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	req.UserID = userID

	rec, err := h.svc.Run(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// RunStatus handles GET /v1/runs/{uploadId}.
func (h *PipelineHandler) RunStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r, r.URL.Query().Get("user_id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	run, err := h.svc.RunStatus(r.Context(), userID, chi.URLParam(r, "uploadId"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}
