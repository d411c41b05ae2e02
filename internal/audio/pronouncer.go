// Package audio renders word pronunciations to MP3 files on disk.
package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"spellinghive/internal/logger"
)

// GoogleTTSURL is the Google Translate speech endpoint
const GoogleTTSURL = "https://translate.google.com/translate_tts"

const ttsRequestTimeout = 10 * time.Second

// Speaking rates accepted by Pronounce
const (
	MinRate     = 0.1
	MaxRate     = 1.0
	DefaultRate = 1.0
)

// Pronouncer fetches speech for words and caches it in a directory
type Pronouncer struct {
	audioDir string
	baseURL  string
	client   *http.Client
	log      *logger.Logger
}

// NewPronouncer creates a pronouncer writing into audioDir
func NewPronouncer(audioDir string, log *logger.Logger) *Pronouncer {
	return &Pronouncer{
		audioDir: audioDir,
		baseURL:  GoogleTTSURL,
		client:   &http.Client{Timeout: ttsRequestTimeout},
		log:      log.With("service", "audio"),
	}
}

// WithBaseURL points the pronouncer at another speech endpoint
func (p *Pronouncer) WithBaseURL(baseURL string) *Pronouncer {
	p.baseURL = baseURL
	return p
}

// ClampRate keeps a rate hint inside the accepted range; zero means default
func ClampRate(rate float64) float64 {
	switch {
	case rate == 0:
		return DefaultRate
	case rate < MinRate:
		return MinRate
	case rate > MaxRate:
		return MaxRate
	default:
		return rate
	}
}

// Filename is the cache file name for a word at a rate. Only letters,
// digits and dashes survive so the name cannot leave the audio directory.
func Filename(word string, rate float64) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(word)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		}
	}
	return fmt.Sprintf("word_%s_%s.mp3", b.String(), strconv.FormatFloat(ClampRate(rate), 'f', 2, 64))
}

// Pronounce makes sure an MP3 for word exists and returns its file name
func (p *Pronouncer) Pronounce(ctx context.Context, word string, rate float64) (string, error) {
	rate = ClampRate(rate)
	filename := Filename(word, rate)
	path := filepath.Join(p.audioDir, filename)

	if _, err := os.Stat(path); err == nil {
		return filename, nil
	}

	if err := os.MkdirAll(p.audioDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %w", err)
	}
	if err := p.fetch(ctx, word, rate, path); err != nil {
		return "", fmt.Errorf("failed to generate audio: %w", err)
	}

	p.log.Debug("Audio generated", "word", word, "file", filename)
	return filename, nil
}

// PronounceAsync renders in the background; failures are only logged
func (p *Pronouncer) PronounceAsync(word string, rate float64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), ttsRequestTimeout)
		defer cancel()
		if _, err := p.Pronounce(ctx, word, rate); err != nil {
			p.log.Warn("Pronounce failed", "word", word, "error", err)
		}
	}()
}

func (p *Pronouncer) fetch(ctx context.Context, text string, rate float64, outputPath string) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", "en")
	params.Set("client", "tw-ob")
	params.Set("textlen", strconv.Itoa(len(text)))
	params.Set("ttsspeed", strconv.FormatFloat(rate, 'f', 2, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	// Google rejects requests without a browser user agent
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// A failed download must not leave a truncated MP3 behind
	tmp, err := os.CreateTemp(filepath.Dir(outputPath), ".tts-*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	return os.Rename(tmp.Name(), outputPath)
}
