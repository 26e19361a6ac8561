package handlers

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/lazobello/cvagent/internal/api"
)

// Fixed user-visible strings of the knowledge endpoints.
const (
	msgUploadMissingFile = "Debes adjuntar un archivo."
	msgUploadNotJSON     = "El archivo debe ser un JSON."
	msgUploadSuccess     = "Base de conocimiento actualizada exitosamente."
	msgPurgeSuccess      = "Base de conocimiento purgada exitosamente."
)

type KnowledgeService interface {
	ReplaceKnowledgeBase(ctx context.Context, raw []byte) (int, error)
	ClearKnowledgeBase(ctx context.Context)
}

type KnowledgeHandler struct {
	svc KnowledgeService
}

func NewKnowledgeHandler(svc KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{svc: svc}
}

type UploadResponse struct {
	Message         string `json:"message"`
	FragmentsLoaded int    `json:"fragmentsLoaded"`
}

type PurgeResponse struct {
	Message string `json:"message"`
}

// Upload handles POST /knowledge/upload: a multipart "file" part carrying
// the pre-computed embeddings JSON. The whole corpus is replaced at once.
func (h *KnowledgeHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, msgUploadMissingFile)
		return
	}
	defer file.Close()

	if !isJSONUpload(header.Filename, header.Header.Get("Content-Type")) {
		api.Error(w, http.StatusBadRequest, msgUploadNotJSON)
		return
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}

	count, err := h.svc.ReplaceKnowledgeBase(r.Context(), raw)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, UploadResponse{
		Message:         msgUploadSuccess,
		FragmentsLoaded: count,
	})
}

// Purge handles DELETE /knowledge: drops the in-memory corpus and its
// disk snapshot.
func (h *KnowledgeHandler) Purge(w http.ResponseWriter, r *http.Request) {
	h.svc.ClearKnowledgeBase(r.Context())
	api.Success(w, http.StatusOK, PurgeResponse{Message: msgPurgeSuccess})
}

func isJSONUpload(filename, contentType string) bool {
	if strings.EqualFold(filepath.Ext(filename), ".json") {
		return true
	}

	mediaType := contentType
	if idx := strings.Index(mediaType, ";"); idx >= 0 {
		mediaType = mediaType[:idx]
	}
	mediaType = strings.TrimSpace(strings.ToLower(mediaType))
	return mediaType == "application/json" || mediaType == "text/json"
}
