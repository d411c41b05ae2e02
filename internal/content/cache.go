// Package content serves generated spelling words and story packs through a
// generate-once cache keyed by (kind, grade, level).
package content

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/singleflight"

	"spellinghive/internal/logger"
	"spellinghive/internal/models"
)

// Store persists serialized content packs
type Store interface {
	Load(ctx context.Context, kind models.ContentKind, grade, level int) ([]byte, bool, error)
	Save(ctx context.Context, kind models.ContentKind, grade, level int, data []byte) error
}

// Generator produces new content packs. Output is not deterministic.
type Generator interface {
	GenerateSpellingWords(ctx context.Context, grade, level int) ([]models.SpellingWord, error)
	GenerateStoryPack(ctx context.Context, grade, level int) ([]models.Story, error)
}

// WordFilter reports words that must never reach a learner
type WordFilter interface {
	FindBadWords(ctx context.Context, words []string) ([]string, error)
}

// GenerateFunc produces a fresh value for one key
type GenerateFunc func(ctx context.Context, grade, level int) (any, error)

// Cache is the generate-once content cache
type Cache struct {
	store  Store
	gen    Generator
	filter WordFilter
	group  singleflight.Group
	log    *logger.Logger
}

// NewCache creates a content cache. filter may be nil.
func NewCache(store Store, gen Generator, filter WordFilter, log *logger.Logger) *Cache {
	return &Cache{
		store:  store,
		gen:    gen,
		filter: filter,
		log:    log.With("service", "content"),
	}
}

func cacheKey(kind models.ContentKind, grade, level int) string {
	return fmt.Sprintf("%s:%d:%d", kind, grade, level)
}

// GetOrGenerate fills out with the cached value for the key, invoking gen only
// on a miss. A generator failure is wrapped in models.ErrGenerationFailed and
// nothing is cached. Concurrent misses for one key share a single generation.
func (c *Cache) GetOrGenerate(ctx context.Context, kind models.ContentKind, grade, level int, gen GenerateFunc, out any) error {
	data, ok, err := c.store.Load(ctx, kind, grade, level)
	if err != nil {
		return fmt.Errorf("failed to read content cache: %w", err)
	}
	if ok {
		c.log.Debug("Using cached content", "kind", kind, "grade", grade, "level", level)
		return decode(data, out)
	}

	v, err, shared := c.group.Do(cacheKey(kind, grade, level), func() (any, error) {
		return c.generate(ctx, kind, grade, level, gen)
	})
	if err != nil {
		return err
	}
	if shared {
		c.log.Debug("Joined in-flight generation", "kind", kind, "grade", grade, "level", level)
	}
	return decode(v.([]byte), out)
}

func (c *Cache) generate(ctx context.Context, kind models.ContentKind, grade, level int, gen GenerateFunc) ([]byte, error) {
	// Another caller may have finished while this one waited
	data, ok, err := c.store.Load(ctx, kind, grade, level)
	switch {
	case err != nil:
		c.log.Warn("Content cache re-check failed, generating anyway", "kind", kind, "grade", grade, "level", level, "error", err)
	case ok:
		return data, nil
	}

	c.log.Info("Generating new content", "kind", kind, "grade", grade, "level", level)
	value, err := gen(ctx, grade, level)
	if err != nil {
		return nil, fmt.Errorf("%s grade %d level %d: %w: %w", kind, grade, level, models.ErrGenerationFailed, err)
	}

	data, err = json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s: %v", models.ErrGenerationFailed, kind, err)
	}

	if err := c.store.Save(ctx, kind, grade, level, data); err != nil {
		return nil, fmt.Errorf("failed to write content cache: %w", err)
	}
	return data, nil
}

func decode(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode cached content: %w", err)
	}
	return nil
}

// SpellingWords returns the word list for a grade and level
func (c *Cache) SpellingWords(ctx context.Context, grade, level int) ([]models.SpellingWord, error) {
	var words []models.SpellingWord
	err := c.GetOrGenerate(ctx, models.KindSpellingWords, grade, level, c.generateWords, &words)
	if err != nil {
		return nil, err
	}
	return words, nil
}

// StoryPack returns the stories for a grade and level
func (c *Cache) StoryPack(ctx context.Context, grade, level int) ([]models.Story, error) {
	var stories []models.Story
	err := c.GetOrGenerate(ctx, models.KindStoryPack, grade, level, func(ctx context.Context, grade, level int) (any, error) {
		stories, err := c.gen.GenerateStoryPack(ctx, grade, level)
		if err != nil {
			return nil, err
		}
		if len(stories) == 0 {
			return nil, fmt.Errorf("generator returned no stories")
		}
		return stories, nil
	}, &stories)
	if err != nil {
		return nil, err
	}
	return stories, nil
}

// generateWords asks the generator for words and rejects packs the filter flags
func (c *Cache) generateWords(ctx context.Context, grade, level int) (any, error) {
	words, err := c.gen.GenerateSpellingWords(ctx, grade, level)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("generator returned no words")
	}

	if c.filter != nil {
		list := make([]string, 0, len(words))
		for _, w := range words {
			list = append(list, w.Word)
		}
		bad, err := c.filter.FindBadWords(ctx, list)
		if err != nil {
			return nil, err
		}
		if len(bad) > 0 {
			c.log.Warn("Rejected generated word list", "grade", grade, "level", level, "blocked", len(bad))
			return nil, fmt.Errorf("generated list contains %d blocked words", len(bad))
		}
	}
	return words, nil
}
