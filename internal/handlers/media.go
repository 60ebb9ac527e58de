package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"teacher-gallery-backend/internal/directory"
	"teacher-gallery-backend/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// MediaHandler handles media-related HTTP requests
type MediaHandler struct {
	store *directory.Store
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(store *directory.Store) *MediaHandler {
	return &MediaHandler{store: store}
}

// ListMedia handles GET /api/v1/teachers/{teacher_id}/media
func (h *MediaHandler) ListMedia(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "teacher_id")
	category := models.MediaCategory(r.URL.Query().Get("category"))

	media, err := h.store.ListMedia(r.Context(), teacherID, category)
	if err != nil {
		log.Error().Err(err).Str("teacher_id", teacherID).Msg("Failed to list media")
		respondTaxonomyError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"media": media,
		"total": len(media),
	})
}

// RecentMedia handles GET /api/v1/media/recent
func (h *MediaHandler) RecentMedia(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}

	items, err := h.store.RecentMedia(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list recent media")
		respondTaxonomyError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"media": items,
		"total": len(items),
	})
}

// uploadResult reports the outcome for one file of a batch.
type uploadResult struct {
	Name  string        `json:"name"`
	Media *models.Media `json:"media,omitempty"`
	Error string        `json:"error,omitempty"`
}

// UploadMedia handles POST /api/v1/teachers/{teacher_id}/media. Several
// files may arrive in one multipart request; a file that fails validation
// is skipped and reported while the rest proceed.
func (h *MediaHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "teacher_id")

	if err := r.ParseMultipartForm(directory.MaxUploadSize); err != nil {
		respondError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	category := models.MediaCategory(r.FormValue("category"))
	form := r.MultipartForm
	if form == nil || len(form.File["files"]) == 0 {
		respondError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	var results []uploadResult
	uploaded := 0
	for _, header := range form.File["files"] {
		file, err := header.Open()
		if err != nil {
			results = append(results, uploadResult{Name: header.Filename, Error: "failed to open file"})
			continue
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			results = append(results, uploadResult{Name: header.Filename, Error: "failed to read file"})
			continue
		}

		media, err := h.store.UploadMedia(r.Context(), teacherID, directory.Upload{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}, category)
		if err != nil {
			var validationErr *directory.ValidationError
			if errors.As(err, &validationErr) {
				// Skip invalid files, keep going with the rest of the batch.
				results = append(results, uploadResult{Name: header.Filename, Error: validationErr.Message})
				continue
			}
			log.Error().Err(err).Str("teacher_id", teacherID).Str("file", header.Filename).Msg("Failed to upload media")
			respondTaxonomyError(w, err)
			return
		}

		uploaded++
		results = append(results, uploadResult{Name: header.Filename, Media: media})
	}

	log.Info().Str("teacher_id", teacherID).Int("uploaded", uploaded).Int("total", len(results)).Msg("Media upload processed")
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"results":  results,
		"uploaded": uploaded,
	})
}

// DeleteMediaRequest carries the blob ref alongside the metadata id
type DeleteMediaRequest struct {
	BlobRef string `json:"blob_ref"`
}

// DeleteMedia handles DELETE /api/v1/media/{media_id}
func (h *MediaHandler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "media_id")

	var req DeleteMediaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.store.DeleteMedia(r.Context(), id, req.BlobRef); err != nil {
		log.Error().Err(err).Str("media_id", id).Msg("Failed to delete media")
		respondTaxonomyError(w, err)
		return
	}

	log.Info().Str("media_id", id).Msg("Media deleted")
	w.WriteHeader(http.StatusNoContent)
}
