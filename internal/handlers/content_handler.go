package handlers

import (
	"context"
	"net/http"

	"spellinghive/internal/audio"
	"spellinghive/internal/logger"
	"spellinghive/internal/models"
	"spellinghive/internal/validation"
)

// ContentSource serves cached or freshly generated content packs
type ContentSource interface {
	SpellingWords(ctx context.Context, grade, level int) ([]models.SpellingWord, error)
	StoryPack(ctx context.Context, grade, level int) ([]models.Story, error)
}

// Pronouncer renders word audio in the background
type Pronouncer interface {
	PronounceAsync(word string, rate float64)
}

// ContentHandler serves generated content and pronunciations
type ContentHandler struct {
	content    ContentSource
	pronouncer Pronouncer
	audioPath  string
	log        *logger.Logger
}

// NewContentHandler creates a new content handler. audioPath is the URL
// prefix the audio directory is served under.
func NewContentHandler(content ContentSource, pronouncer Pronouncer, audioPath string, log *logger.Logger) *ContentHandler {
	return &ContentHandler{
		content:    content,
		pronouncer: pronouncer,
		audioPath:  audioPath,
		log:        log.With("handler", "content"),
	}
}

type gradeLevelRequest struct {
	Grade int `json:"grade"`
	Level int `json:"level"`
}

func (h *ContentHandler) decodeGradeLevel(w http.ResponseWriter, r *http.Request) (gradeLevelRequest, error) {
	var req gradeLevelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return req, err
	}
	return req, validation.First(
		validation.ValidateContentGrade(req.Grade),
		validation.ValidateContentLevel(req.Level),
	)
}

// SpellingWords handles POST /api/content/spelling-words
func (h *ContentHandler) SpellingWords(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeGradeLevel(w, r)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to generate spelling words", err)
		return
	}

	words, err := h.content.SpellingWords(r.Context(), req.Grade, req.Level)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to generate spelling words", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"words": words})
}

// StoryPack handles POST /api/content/story-pack
func (h *ContentHandler) StoryPack(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeGradeLevel(w, r)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to generate story pack", err)
		return
	}

	stories, err := h.content.StoryPack(r.Context(), req.Grade, req.Level)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to generate story pack", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stories": stories})
}

type pronounceRequest struct {
	Word string  `json:"word"`
	Rate float64 `json:"rate"`
}

// Pronounce handles POST /api/pronounce. Rendering happens in the background
// and the response only says where the audio will appear.
func (h *ContentHandler) Pronounce(w http.ResponseWriter, r *http.Request) {
	var req pronounceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithServiceError(w, h.log, "Failed to pronounce word", err)
		return
	}
	if err := validation.ValidateWord(req.Word); err != nil {
		respondWithServiceError(w, h.log, "Failed to pronounce word", err)
		return
	}

	h.pronouncer.PronounceAsync(req.Word, req.Rate)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"audio_url": h.audioPath + audio.Filename(req.Word, req.Rate),
	})
}
