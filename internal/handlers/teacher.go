package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"teacher-gallery-backend/internal/directory"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// TeacherHandler handles teacher-related HTTP requests
type TeacherHandler struct {
	store *directory.Store
}

// NewTeacherHandler creates a new teacher handler
func NewTeacherHandler(store *directory.Store) *TeacherHandler {
	return &TeacherHandler{store: store}
}

// ListTeachers handles GET /api/v1/teachers. An optional "q" parameter
// filters by name or description.
func (h *TeacherHandler) ListTeachers(w http.ResponseWriter, r *http.Request) {
	teachers := h.store.FilterTeachers(r.URL.Query().Get("q"))
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"teachers": teachers,
		"total":    len(teachers),
	})
}

// GetTeacher handles GET /api/v1/teachers/{teacher_id}
func (h *TeacherHandler) GetTeacher(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "teacher_id")
	teacher := h.store.Teacher(id)
	if teacher == nil {
		respondError(w, "teacher not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, teacher)
}

// CreateTeacher handles POST /api/v1/teachers (multipart, optional photo)
func (h *TeacherHandler) CreateTeacher(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(directory.MaxUploadSize); err != nil {
		respondError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	var photo *directory.Upload
	if file, header, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			respondError(w, "Failed to read photo", http.StatusBadRequest)
			return
		}
		photo = &directory.Upload{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}
	}

	teacher, err := h.store.AddTeacher(
		r.Context(),
		r.FormValue("first_name"),
		r.FormValue("last_name"),
		r.FormValue("description"),
		photo,
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to add teacher")
		respondTaxonomyError(w, err)
		return
	}

	log.Info().Str("teacher_id", teacher.ID).Msg("Teacher added")
	respondJSON(w, http.StatusCreated, teacher)
}

// UpdateTeacherRequest represents the update request body
type UpdateTeacherRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Description string `json:"description"`
}

// UpdateTeacher handles PUT /api/v1/teachers/{teacher_id}
func (h *TeacherHandler) UpdateTeacher(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "teacher_id")

	var req UpdateTeacherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.store.UpdateTeacher(r.Context(), id, req.FirstName, req.LastName, req.Description); err != nil {
		log.Error().Err(err).Str("teacher_id", id).Msg("Failed to update teacher")
		respondTaxonomyError(w, err)
		return
	}

	log.Info().Str("teacher_id", id).Msg("Teacher updated")
	w.WriteHeader(http.StatusNoContent)
}

// DeleteTeacher handles DELETE /api/v1/teachers/{teacher_id}
func (h *TeacherHandler) DeleteTeacher(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "teacher_id")

	if err := h.store.DeleteTeacher(r.Context(), id); err != nil {
		log.Error().Err(err).Str("teacher_id", id).Msg("Failed to delete teacher")
		respondTaxonomyError(w, err)
		return
	}

	log.Info().Str("teacher_id", id).Msg("Teacher deleted")
	w.WriteHeader(http.StatusNoContent)
}
