// Package server exposes the newsletter pipeline over HTTP. The handlers
// stay thin: decode the request, call the app layer, map the error
// taxonomy to a status code.
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jkautto/letterpress/internal/app"
	"github.com/jkautto/letterpress/internal/extract"
	"github.com/jkautto/letterpress/internal/model"
	"github.com/jkautto/letterpress/internal/prompt"
)

type Server struct {
	App *app.App
	// MaxUploadBytes caps multipart file reads. Zero means the extract
	// package default.
	MaxUploadBytes int
}

func New(a *app.App) *Server {
	return &Server{App: a, MaxUploadBytes: extract.DefaultMaxUploadBytes}
}

// Routes returns the HTTP handler for all API endpoints.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate-from-url", s.handleGenerateFromURL)
	mux.HandleFunc("/api/generate-from-file", s.handleGenerateFromFile)
	mux.HandleFunc("/api/models", s.handleModels)
	mux.HandleFunc("/api/audiences", s.handleAudiences)
	return logMiddleware(mux)
}

type generateURLReq struct {
	URL      string `json:"url"`
	Model    string `json:"model"`
	Audience string `json:"audience"`
}

type errorResp struct {
	ErrorKind string `json:"error_kind"`
	Message   string `json:"message"`
}

func (s *Server) handleGenerateFromURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req generateURLReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, app.KindParse, "invalid JSON body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, app.KindParse, "url is required")
		return
	}
	s.generate(w, r, app.Request{URL: req.URL}, req.Model, req.Audience)
}

func (s *Server) handleGenerateFromFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// ParseMultipartForm buffers the whole form, spilling parts over the
	// memory limit to temp files net/http removes when the request ends.
	// The size cap is applied when the part is read back below, so the
	// overage still surfaces as a size-limit error.
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeError(w, app.KindParse, "invalid multipart form: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, app.KindParse, "file field is required")
		return
	}
	defer file.Close()

	kind, ok := originForFilename(header.Filename)
	if !ok {
		writeError(w, app.KindParse, "unsupported file type, expected .pdf or .docx")
		return
	}
	// Read one byte past the cap so the extractor sees the overage and
	// reports it through the taxonomy.
	data, err := io.ReadAll(io.LimitReader(file, int64(s.MaxUploadBytes)+1))
	if err != nil {
		writeError(w, app.KindNetwork, "reading upload: "+err.Error())
		return
	}
	s.generate(w, r, app.Request{Document: data, DocumentKind: kind},
		r.FormValue("model"), r.FormValue("audience"))
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request, req app.Request, modelID, audience string) {
	id, err := model.ParseID(modelID)
	if err != nil {
		writeError(w, app.KindModel, err.Error())
		return
	}
	aud, err := prompt.ParseAudience(audience)
	if err != nil {
		writeError(w, app.KindParse, err.Error())
		return
	}
	req.Model = id
	req.Audience = aud

	n, err := s.App.Generate(r.Context(), req)
	if err != nil {
		if e, ok := app.AsError(err); ok {
			writeError(w, e.Kind, e.Message)
			return
		}
		writeError(w, app.KindModel, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, app.Models())
}

func (s *Server) handleAudiences(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, app.Audiences())
}

func originForFilename(name string) (extract.OriginKind, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return extract.OriginPDF, true
	case ".docx":
		return extract.OriginDOCX, true
	}
	return "", false
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(kind app.ErrorKind) int {
	switch kind {
	case app.KindNetwork:
		return http.StatusBadRequest
	case app.KindSizeLimit:
		return http.StatusRequestEntityTooLarge
	case app.KindParse:
		return http.StatusUnprocessableEntity
	case app.KindModel:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, kind app.ErrorKind, msg string) {
	writeJSON(w, statusFor(kind), errorResp{ErrorKind: string(kind), Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("writing response")
	}
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Dur("elapsed", time.Since(start)).Msg("request served")
	})
}
