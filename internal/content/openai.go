package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"spellinghive/internal/logger"
	"spellinghive/internal/models"
)

// OpenAIGenerator generates content packs with the chat completions API
type OpenAIGenerator struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	log     *logger.Logger
}

// NewOpenAIGenerator creates a generator. baseURL defaults to the public API.
func NewOpenAIGenerator(apiKey, baseURL, model string, timeout time.Duration, log *logger.Logger) (*OpenAIGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &OpenAIGenerator{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
		log:     log.With("service", "OpenAIGenerator"),
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
	Temperature    float64        `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateSpellingWords asks for one word list
func (g *OpenAIGenerator) GenerateSpellingWords(ctx context.Context, grade, level int) ([]models.SpellingWord, error) {
	var result struct {
		Words []models.SpellingWord `json:"words"`
	}
	if err := g.complete(ctx, spellingSystemPrompt, spellingPrompt(grade, level), 0.7, &result); err != nil {
		return nil, fmt.Errorf("failed to generate spelling words: %w", err)
	}
	return result.Words, nil
}

// GenerateStoryPack asks for one story pack
func (g *OpenAIGenerator) GenerateStoryPack(ctx context.Context, grade, level int) ([]models.Story, error) {
	var result struct {
		Stories []models.Story `json:"stories"`
	}
	if err := g.complete(ctx, storySystemPrompt, storyPrompt(grade, level), 0.8, &result); err != nil {
		return nil, fmt.Errorf("failed to generate story pack: %w", err)
	}
	return result.Stories, nil
}

// complete sends one JSON-mode chat completion and decodes the message into out
func (g *OpenAIGenerator) complete(ctx context.Context, system, user string, temperature float64, out any) error {
	body, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
		Temperature:    temperature,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	g.log.Debug("OpenAI request finished", "status", resp.StatusCode, "duration", time.Since(start))

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return fmt.Errorf("API error: %s", parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return fmt.Errorf("no content received from OpenAI")
	}

	if err := json.Unmarshal([]byte(parsed.Choices[0].Message.Content), out); err != nil {
		return fmt.Errorf("failed to decode generated content: %w", err)
	}
	return nil
}

// ErrGeneratorDisabled is returned when no generator is configured
var ErrGeneratorDisabled = errors.New("content generator not configured")

// DisabledGenerator stands in when no API key is configured; cached packs
// are still served and every miss fails.
type DisabledGenerator struct{}

func (DisabledGenerator) GenerateSpellingWords(ctx context.Context, grade, level int) ([]models.SpellingWord, error) {
	return nil, ErrGeneratorDisabled
}

func (DisabledGenerator) GenerateStoryPack(ctx context.Context, grade, level int) ([]models.Story, error) {
	return nil, ErrGeneratorDisabled
}
