package handlers

import (
	"encoding/json"
	"net/http"

	"teacher-gallery-backend/internal/directory"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// QuoteHandler handles quote-related HTTP requests
type QuoteHandler struct {
	store *directory.Store
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(store *directory.Store) *QuoteHandler {
	return &QuoteHandler{store: store}
}

// ListQuotes handles GET /api/v1/teachers/{teacher_id}/quotes
func (h *QuoteHandler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "teacher_id")

	quotes, err := h.store.ListQuotes(r.Context(), teacherID)
	if err != nil {
		log.Error().Err(err).Str("teacher_id", teacherID).Msg("Failed to list quotes")
		respondTaxonomyError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"quotes": quotes,
		"total":  len(quotes),
	})
}

// AddQuoteRequest represents the add-quote request body
type AddQuoteRequest struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// AddQuote handles POST /api/v1/teachers/{teacher_id}/quotes
func (h *QuoteHandler) AddQuote(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "teacher_id")

	var req AddQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	quote, err := h.store.AddQuote(r.Context(), teacherID, req.Text, req.Author)
	if err != nil {
		log.Error().Err(err).Str("teacher_id", teacherID).Msg("Failed to add quote")
		respondTaxonomyError(w, err)
		return
	}

	log.Info().Str("teacher_id", teacherID).Str("quote_id", quote.ID).Msg("Quote added")
	respondJSON(w, http.StatusCreated, quote)
}

// DeleteQuote handles DELETE /api/v1/quotes/{quote_id}
func (h *QuoteHandler) DeleteQuote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "quote_id")

	if err := h.store.DeleteQuote(r.Context(), id); err != nil {
		log.Error().Err(err).Str("quote_id", id).Msg("Failed to delete quote")
		respondTaxonomyError(w, err)
		return
	}

	log.Info().Str("quote_id", id).Msg("Quote deleted")
	w.WriteHeader(http.StatusNoContent)
}
