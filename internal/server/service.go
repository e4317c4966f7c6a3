package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ThiagoRGoveia/csv-files/internal/models"
	"github.com/ThiagoRGoveia/csv-files/pkg/checksum"
	"go.uber.org/zap"
)

// FilesProcessor is the pipeline the HTTP layer exposes.
type FilesProcessor interface {
	ListFiles(ctx context.Context) ([]string, error)
	Process(ctx context.Context, fileName string) ([]models.FileResult, error)
}

type FilesHandler struct {
	Service FilesProcessor
	logger  *zap.Logger
}

func NewFilesHandler(service FilesProcessor, logger *zap.Logger) *FilesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FilesHandler{Service: service, logger: logger}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type filesListResponse struct {
	Files []string `json:"files"`
}

// GetFilesList serves GET /files/list.
func (h *FilesHandler) GetFilesList(w http.ResponseWriter, r *http.Request) {
	files, err := h.Service.ListFiles(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, filesListResponse{Files: files})
}

// GetFilesData serves GET /files/data. The optional fileName query parameter
// restricts the run to files with exactly that name.
func (h *FilesHandler) GetFilesData(w http.ResponseWriter, r *http.Request) {
	fileName := r.URL.Query().Get("fileName")

	results, err := h.Service.Process(r.Context(), fileName)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	body, err := encodeJSON(results)
	if err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal Server Error", Message: "Failed to encode response"})
		return
	}

	etag := checksum.ETag(body)
	w.Header().Set("ETag", etag)
	if etagMatches(r.Header.Values("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// etagMatches applies the weak comparison If-None-Match calls for: each header
// may list several tags, a W/ prefix is ignored and * matches anything.
func etagMatches(headers []string, etag string) bool {
	for _, header := range headers {
		for _, candidate := range strings.Split(header, ",") {
			candidate = strings.TrimSpace(candidate)
			if candidate == "*" || strings.TrimPrefix(candidate, "W/") == strings.TrimPrefix(etag, "W/") {
				return true
			}
		}
	}
	return false
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not Found"})
}

func (h *FilesHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		h.logger.Debug("Request cancelled by client", zap.String("path", r.URL.Path))
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "Service Unavailable", Message: err.Error()})
		return
	}

	var listingErr *models.ListingError
	if !errors.As(err, &listingErr) {
		h.logger.Error("Unexpected error while serving request", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal Server Error", Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := encodeJSON(v)
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
