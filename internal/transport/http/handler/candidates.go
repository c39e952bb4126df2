package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/recruit-notes/internal/application/candidate"
	"github.com/recruit-notes/internal/application/summary"
	"github.com/recruit-notes/internal/domain"
	s3infra "github.com/recruit-notes/internal/infrastructure/s3"
)

const maxResumeBytes = 10 << 20

// CandidateHandler handles the shared candidate pipeline.
type CandidateHandler struct {
	svc     candidate.Service
	summary summary.Service
}

func NewCandidateHandler(svc candidate.Service, summarySvc summary.Service) *CandidateHandler {
	return &CandidateHandler{svc: svc, summary: summarySvc}
}

func (h *CandidateHandler) List(w http.ResponseWriter, r *http.Request) {
	me, ok := actor(w, r)
	if !ok {
		return
	}
	list, err := h.svc.List(r.Context(), me.UserID, r.URL.Query().Get("search"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *CandidateHandler) Create(w http.ResponseWriter, r *http.Request) {
	me, ok := actor(w, r)
	if !ok {
		return
	}
	var req domain.CreateCandidateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.svc.Create(r.Context(), me, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CandidateHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CandidateHandler) Update(w http.ResponseWriter, r *http.Request) {
	me, ok := actor(w, r)
	if !ok {
		return
	}
	var req domain.UpdateCandidateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.svc.Update(r.Context(), me, chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CandidateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	me, ok := actor(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), me, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "candidate deleted"})
}

// UploadResume accepts a multipart form with the file in the "file" field.
func (h *CandidateHandler) UploadResume(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxResumeBytes)
	if err := r.ParseMultipartForm(maxResumeBytes); err != nil {
		writeError(w, http.StatusBadRequest, "resume must be a multipart upload of at most 10MB")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = s3infra.DetectContentType(header.Filename)
	}
	c, err := h.svc.UploadResume(r.Context(), chi.URLParam(r, "id"), header.Filename, contentType, file)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *CandidateHandler) ResumeURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.svc.ResumeURL(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, URLEnvelope{URL: url})
}

func (h *CandidateHandler) Summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.summary.Summarize(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *CandidateHandler) FollowUpQuestions(w http.ResponseWriter, r *http.Request) {
	qs, err := h.summary.FollowUpQuestions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, QuestionsEnvelope{Questions: qs})
}
