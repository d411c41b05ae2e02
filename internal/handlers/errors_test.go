package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"spellinghive/internal/logger"
	"spellinghive/internal/models"
	"spellinghive/internal/validation"
)

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func TestRespondWithErrorWritesStatusAndBody(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondWithError(recorder, logger.NewNop(), 418, "Teapot", "", nil)

	if recorder.Code != 418 {
		t.Fatalf("expected status 418, got %d", recorder.Code)
	}
	if got := recorder.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected JSON content type, got %q", got)
	}
	if body := decodeError(t, recorder); body.Error != "Teapot" {
		t.Fatalf("expected error 'Teapot', got %q", body.Error)
	}
}

func TestRespondWithErrorLogsMessage(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	recorder := httptest.NewRecorder()

	respondWithError(recorder, logger.FromZap(zap.New(core)), 500, "Internal server error", "", errors.New("boom"))

	entries := logs.FilterMessage("Internal server error").All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	if got := fmt.Sprint(entries[0].ContextMap()["error"]); got != "boom" {
		t.Fatalf("expected logged error 'boom', got %q", got)
	}
}

func TestRespondWithServiceErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", validation.ValidationError{Field: "grade", Message: "bad"}, 400},
		{"wrapped validation", fmt.Errorf("submit: %w", models.ErrValidation), 400},
		{"not found", fmt.Errorf("user u1: %w", models.ErrNotFound), 404},
		{"generation", fmt.Errorf("openai: %w", models.ErrGenerationFailed), 503},
		{"storage", errors.New("disk I/O error"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respondWithServiceError(recorder, logger.NewNop(), "Failed", tt.err)
			if recorder.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, recorder.Code)
			}
		})
	}
}

func TestRespondWithServiceErrorReportsField(t *testing.T) {
	recorder := httptest.NewRecorder()
	respondWithServiceError(recorder, logger.NewNop(), "Failed",
		validation.ValidationError{Field: "level", Message: "level must be at least 1"})

	body := decodeError(t, recorder)
	if body.Field != "level" || body.Error != "level must be at least 1" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestGenerationFailureSetsRetryAfter(t *testing.T) {
	recorder := httptest.NewRecorder()
	respondWithServiceError(recorder, logger.NewNop(), "Failed", models.ErrGenerationFailed)

	if recorder.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}
