package content

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"spellinghive/internal/logger"
	"spellinghive/internal/models"
)

type memoryStore struct {
	mu    sync.Mutex
	data  map[string][]byte
	saves int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]byte)}
}

func (s *memoryStore) Load(_ context.Context, kind models.ContentKind, grade, level int) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.data[cacheKey(kind, grade, level)]
	return d, ok, nil
}

func (s *memoryStore) Save(_ context.Context, kind models.ContentKind, grade, level int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[cacheKey(kind, grade, level)] = data
	s.saves++
	return nil
}

// recheckFailStore misses on the first Load and errors on every later one
type recheckFailStore struct {
	*memoryStore
	loads atomic.Int32
}

func (s *recheckFailStore) Load(ctx context.Context, kind models.ContentKind, grade, level int) ([]byte, bool, error) {
	if s.loads.Add(1) > 1 {
		return nil, false, errors.New("connection reset")
	}
	return s.memoryStore.Load(ctx, kind, grade, level)
}

type fakeGenerator struct {
	wordCalls  atomic.Int32
	storyCalls atomic.Int32
	failLevel  int
	gate       chan struct{}
}

func (g *fakeGenerator) GenerateSpellingWords(ctx context.Context, grade, level int) ([]models.SpellingWord, error) {
	g.wordCalls.Add(1)
	if g.gate != nil {
		<-g.gate
	}
	if level == g.failLevel {
		return nil, errors.New("upstream timeout")
	}
	return []models.SpellingWord{
		{Word: fmt.Sprintf("rain-%d-%d", grade, level), PhonicsPattern: "ai"},
		{Word: "boat", PhonicsPattern: "oa"},
	}, nil
}

func (g *fakeGenerator) GenerateStoryPack(ctx context.Context, grade, level int) ([]models.Story, error) {
	g.storyCalls.Add(1)
	return []models.Story{{ID: "story_1", Title: fmt.Sprintf("Level %d", level)}}, nil
}

type stubFilter struct{ bad map[string]bool }

func (f stubFilter) FindBadWords(_ context.Context, words []string) ([]string, error) {
	var out []string
	for _, w := range words {
		if f.bad[w] {
			out = append(out, w)
		}
	}
	return out, nil
}

func TestCacheHitSkipsGenerator(t *testing.T) {
	store := newMemoryStore()
	gen := &fakeGenerator{}
	cache := NewCache(store, gen, nil, logger.NewNop())
	ctx := context.Background()

	first, err := cache.SpellingWords(ctx, 2, 1)
	require.NoError(t, err)
	second, err := cache.SpellingWords(ctx, 2, 1)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), gen.wordCalls.Load())
	assert.Equal(t, 1, store.saves)
}

func TestCacheKeysAreIndependent(t *testing.T) {
	gen := &fakeGenerator{}
	cache := NewCache(newMemoryStore(), gen, nil, logger.NewNop())
	ctx := context.Background()

	_, err := cache.SpellingWords(ctx, 2, 1)
	require.NoError(t, err)
	_, err = cache.SpellingWords(ctx, 2, 2)
	require.NoError(t, err)
	_, err = cache.StoryPack(ctx, 2, 1)
	require.NoError(t, err)

	assert.Equal(t, int32(2), gen.wordCalls.Load())
	assert.Equal(t, int32(1), gen.storyCalls.Load())
}

func TestGenerationFailureIsNotCached(t *testing.T) {
	store := newMemoryStore()
	gen := &fakeGenerator{failLevel: 4}
	cache := NewCache(store, gen, nil, logger.NewNop())
	ctx := context.Background()

	_, err := cache.SpellingWords(ctx, 2, 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrGenerationFailed)
	assert.Equal(t, 0, store.saves)

	_, err = cache.SpellingWords(ctx, 2, 4)
	assert.ErrorIs(t, err, models.ErrGenerationFailed)
	assert.Equal(t, int32(2), gen.wordCalls.Load())
}

func TestRecheckFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	store := &recheckFailStore{memoryStore: newMemoryStore()}
	gen := &fakeGenerator{}
	cache := NewCache(store, gen, nil, logger.FromZap(zap.New(core)))

	words, err := cache.SpellingWords(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.Len(t, words, 2)
	assert.Equal(t, int32(1), gen.wordCalls.Load())

	warnings := logs.FilterMessage("Content cache re-check failed, generating anyway").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "connection reset", fmt.Sprint(warnings[0].ContextMap()["error"]))
}

type emptyGenerator struct{}

func (emptyGenerator) GenerateSpellingWords(context.Context, int, int) ([]models.SpellingWord, error) {
	return []models.SpellingWord{}, nil
}

func (emptyGenerator) GenerateStoryPack(context.Context, int, int) ([]models.Story, error) {
	return nil, nil
}

func TestEmptyPacksAreNotCached(t *testing.T) {
	store := newMemoryStore()
	cache := NewCache(store, emptyGenerator{}, nil, logger.NewNop())
	ctx := context.Background()

	_, err := cache.SpellingWords(ctx, 2, 1)
	assert.ErrorIs(t, err, models.ErrGenerationFailed)
	_, err = cache.StoryPack(ctx, 2, 1)
	assert.ErrorIs(t, err, models.ErrGenerationFailed)
	assert.Equal(t, 0, store.saves)
}

func TestConcurrentMissesGenerateOnce(t *testing.T) {
	store := newMemoryStore()
	gen := &fakeGenerator{gate: make(chan struct{})}
	cache := NewCache(store, gen, nil, logger.NewNop())
	ctx := context.Background()

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = cache.SpellingWords(ctx, 3, 5)
		}(i)
	}

	// Let every caller reach the in-flight generation before releasing it
	require.Eventually(t, func() bool { return gen.wordCalls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(gen.gate)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), gen.wordCalls.Load())
	assert.Equal(t, 1, store.saves)
}

func TestBlockedWordsRejectPack(t *testing.T) {
	store := newMemoryStore()
	gen := &fakeGenerator{}
	cache := NewCache(store, gen, stubFilter{bad: map[string]bool{"boat": true}}, logger.NewNop())

	_, err := cache.SpellingWords(context.Background(), 2, 1)
	assert.ErrorIs(t, err, models.ErrGenerationFailed)
	assert.Equal(t, 0, store.saves)
}

func TestGetOrGenerateRejectsUnencodableOutput(t *testing.T) {
	store := newMemoryStore()
	cache := NewCache(store, &fakeGenerator{}, nil, logger.NewNop())

	var out []string
	err := cache.GetOrGenerate(context.Background(), models.KindStoryPack, 1, 1,
		func(ctx context.Context, grade, level int) (any, error) {
			return func() {}, nil
		}, &out)
	assert.ErrorIs(t, err, models.ErrGenerationFailed)
	assert.Equal(t, 0, store.saves)
}

func TestPregenerateToleratesFailingLevel(t *testing.T) {
	store := newMemoryStore()
	gen := &fakeGenerator{failLevel: 3}
	cache := NewCache(store, gen, nil, logger.NewNop())

	report := cache.Pregenerate(context.Background(), 2, 5)

	assert.Equal(t, []int{1, 2, 4, 5}, report.Completed)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, 3, report.Failed[0].Level)
	assert.False(t, report.OK())
	assert.Error(t, report.Err())

	// The failing level skips its story pack
	assert.Equal(t, int32(4), gen.storyCalls.Load())
	assert.Equal(t, 8, store.saves)

	// A second sweep only regenerates the failed level
	gen.failLevel = 0
	report = cache.Pregenerate(context.Background(), 2, 5)
	assert.True(t, report.OK())
	assert.NoError(t, report.Err())
	assert.Equal(t, int32(6), gen.wordCalls.Load())
}

func TestPregenerateStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &fakeGenerator{}
	report := NewCache(newMemoryStore(), gen, nil, logger.NewNop()).Pregenerate(ctx, 2, 10)

	assert.Empty(t, report.Completed)
	assert.Len(t, report.Failed, 1)
	assert.Equal(t, int32(0), gen.wordCalls.Load())
}

func TestDisabledGeneratorServesCachedPacks(t *testing.T) {
	store := newMemoryStore()
	store.data[cacheKey(models.KindSpellingWords, 2, 1)] = []byte(`[{"word":"cake"}]`)
	cache := NewCache(store, DisabledGenerator{}, nil, logger.NewNop())

	words, err := cache.SpellingWords(context.Background(), 2, 1)
	require.NoError(t, err)
	require.Len(t, words, 1)
	assert.Equal(t, "cake", words[0].Word)

	_, err = cache.SpellingWords(context.Background(), 2, 2)
	assert.ErrorIs(t, err, models.ErrGenerationFailed)
	assert.ErrorIs(t, err, ErrGeneratorDisabled)
}
