package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 20000, cfg.ChunkSize)
	assert.Equal(t, 500, cfg.ChunkOverlap)
	assert.Equal(t, 60000, cfg.MaxLLMTextLen)
	assert.Equal(t, float64(10_000_000), cfg.PriceCeiling)
	assert.Equal(t, float64(10), cfg.PriceFloor)
	assert.Equal(t, 1.5, cfg.NarrowRatio)
	assert.Equal(t, 0.3, cfg.MinSpreadShare)
	assert.Equal(t, "Россия", cfg.DefaultCity)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "1000")
	t.Setenv("CHUNK_OVERLAP", "100")
	t.Setenv("MAX_LLM_TEXT_LEN", "5000")
	t.Setenv("PRICE_CEILING", "500000")
	t.Setenv("DEFAULT_CITY", "Казань")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 100, cfg.ChunkOverlap)
	assert.Equal(t, 5000, cfg.MaxLLMTextLen)
	assert.Equal(t, float64(500000), cfg.PriceCeiling)
	assert.Equal(t, "Казань", cfg.DefaultCity)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }, true},
		{"overlap not below chunk size", func(c *Config) { c.ChunkOverlap = c.ChunkSize }, true},
		{"negative overlap", func(c *Config) { c.ChunkOverlap = -1 }, true},
		{"llm limit below chunk size", func(c *Config) { c.MaxLLMTextLen = c.ChunkSize - 1 }, true},
		{"ceiling below floor", func(c *Config) { c.PriceCeiling = 5; c.PriceFloor = 10 }, true},
		{"narrow ratio at most 1", func(c *Config) { c.NarrowRatio = 1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
