package search

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/amishk599/jobsearch/internal/model"
)

// maxBodyBytes bounds the request body; the largest field is a 100k-char resume.
const maxBodyBytes = 1 << 20

// Handler exposes the Service over HTTP.
type Handler struct {
	svc    *Service
	logger *slog.Logger
	mux    *http.ServeMux
}

// NewHandler creates the HTTP handler with its routes registered.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	h := &Handler{svc: svc, logger: logger, mux: http.NewServeMux()}
	h.mux.HandleFunc("POST /api/jobs/search", h.handleSearch)
	h.mux.HandleFunc("GET /health", h.handleHealth)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequestBody
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	resp, err := h.svc.Search(r.Context(), req.toModel())
	if err != nil {
		if IsInvalidRequest(err) {
			h.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("search failed", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, InternalMessage)
		return
	}
	h.jsonResponse(w, http.StatusOK, resp)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("encoding JSON response", "error", err)
	}
}

func (h *Handler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]any{"jobs": []any{}, "error": message})
}

// searchRequestBody accepts skills as either a list or a single
// comma-separated string.
type searchRequestBody struct {
	Skills     skillList `json:"skills"`
	Query      string    `json:"query"`
	ResumeText string    `json:"resumeText"`
}

func (b searchRequestBody) toModel() model.SearchRequest {
	return model.SearchRequest{Skills: b.Skills, Query: b.Query, ResumeText: b.ResumeText}
}

type skillList []string

func (s *skillList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return errors.New("skills must be a list of strings")
	}
	*s = strings.Split(single, ",")
	return nil
}
