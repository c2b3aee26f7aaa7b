package pricing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenderanalyzer/internal/infrastructure/ai"
)

// countingProvider считает вызовы и отдает один и тот же ответ.
type countingProvider struct {
	mu       sync.Mutex
	calls    int
	response string
	err      error
}

func (p *countingProvider) Generate(_ context.Context, _ []ai.Message, _ ai.GenerateOptions) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.response, nil
}

func (p *countingProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func TestSearchPricesNoProvider(t *testing.T) {
	s := NewService(nil, "test-model", DefaultLimits())

	q := s.SearchPrices(context.Background(), "Бурение свай", "Казань")
	assert.False(t, q.OK)
	assert.Equal(t, "none", q.Source)
}

func TestSearchPricesEmptyTask(t *testing.T) {
	s := NewService(&countingProvider{}, "test-model", DefaultLimits())

	q := s.SearchPrices(context.Background(), "   ", "Казань")
	assert.False(t, q.OK)
	assert.Equal(t, "none", q.Source)
}

func TestSearchPricesCacheHit(t *testing.T) {
	provider := &countingProvider{response: `{"price_min": 1000, "price_max": 2000, "unit": "шт"}`}
	s := NewService(provider, "test-model", DefaultLimits())

	first := s.SearchPrices(context.Background(), "Бурение свай", "Казань")
	require.True(t, first.OK)
	assert.Equal(t, "llm", first.Source)

	second := s.SearchPrices(context.Background(), "Бурение свай", "Казань")
	require.True(t, second.OK)
	assert.Equal(t, "cache", second.Source)
	assert.Equal(t, first.PriceMin, second.PriceMin)
	assert.Equal(t, 1, provider.callCount())
}

func TestSearchPricesStemmedKeysShareCache(t *testing.T) {
	provider := &countingProvider{response: `{"price_min": 1000, "price_max": 2000}`}
	s := NewService(provider, "test-model", DefaultLimits())

	s.SearchPrices(context.Background(), "Бурение свай", "Казань")
	q := s.SearchPrices(context.Background(), "бурение сваи", "КАЗАНЬ")

	assert.Equal(t, "cache", q.Source)
	assert.Equal(t, 1, provider.callCount())
}

func TestSearchPricesFailuresAreCached(t *testing.T) {
	provider := &countingProvider{err: errors.New("503 service unavailable")}
	s := NewService(provider, "test-model", DefaultLimits())

	first := s.SearchPrices(context.Background(), "Бурение свай", "Казань")
	assert.False(t, first.OK)
	assert.Equal(t, "llm_error", first.Source)

	second := s.SearchPrices(context.Background(), "Бурение свай", "Казань")
	assert.False(t, second.OK)
	assert.Equal(t, "cache", second.Source)
	assert.Equal(t, 1, provider.callCount())
}

func TestSearchPricesConcurrentLookups(t *testing.T) {
	provider := &countingProvider{response: `{"price_min": 100, "price_max": 200}`}
	s := NewService(provider, "test-model", DefaultLimits())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q := s.SearchPrices(context.Background(), "Бетонные работы", "Москва")
			assert.True(t, q.OK)
		}()
	}
	wg.Wait()
}
