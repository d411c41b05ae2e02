package handlers

import (
	"net/http"

	"spellinghive/internal/logger"
	"spellinghive/internal/phonics"
	"spellinghive/internal/validation"
)

// PhonicsHandler serves the phonics rule table
type PhonicsHandler struct {
	log *logger.Logger
}

// NewPhonicsHandler creates a new phonics handler
func NewPhonicsHandler(log *logger.Logger) *PhonicsHandler {
	return &PhonicsHandler{log: log.With("handler", "phonics")}
}

// Rules handles GET /api/phonics/rules?category=
func (h *PhonicsHandler) Rules(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("category")
	if name == "" {
		writeJSON(w, http.StatusOK, map[string]any{"rules": phonics.Rules()})
		return
	}

	category, ok := phonics.ParseCategory(name)
	if !ok {
		err := validation.ValidationError{Field: "category", Message: "unknown phonics category"}
		respondWithServiceError(w, h.log, "Failed to list phonics rules", err)
		return
	}
	rules := phonics.RulesByCategory(category)
	if rules == nil {
		rules = []phonics.Rule{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rules": rules})
}

// Rule handles GET /api/phonics/rules/{pattern}; an unknown pattern yields a null rule
func (h *PhonicsHandler) Rule(w http.ResponseWriter, r *http.Request) {
	rule, ok := phonics.Lookup(r.PathValue("pattern"))
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"rule": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rule": rule})
}
