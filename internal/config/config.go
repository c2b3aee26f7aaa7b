package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config конфигурация анализатора тендерной документации.
// Загружается из переменных окружения; все численные пороги имеют
// документированные значения по умолчанию.
type Config struct {
	// Сервер
	Port string

	// AI конфигурация
	OpenRouterAPIKey string
	ExtractionModel  string
	PriceModel       string
	AITimeout        time.Duration

	// Поиск исполнителей
	PlacesAPIKey string

	// Разбиение текста на чанки
	ChunkSize    int
	ChunkOverlap int

	// Максимальная длина текста, отправляемого в LLM (символов)
	MaxLLMTextLen int

	// Ценовые пороги
	PriceCeiling   float64 // максимально разумная цена за единицу, руб.
	PriceFloor     float64 // минимальная учитываемая цена
	NarrowRatio    float64 // отношение max/min, ниже которого диапазон считается узким
	MinSpreadShare float64 // минимальный разброс как доля от середины диапазона

	// База данных с результатами анализа
	DatabasePath string

	// Город/регион по умолчанию
	DefaultCity string

	// Логирование
	LogLevel string
}

// Load загружает конфигурацию из переменных окружения.
func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("SERVER_PORT", "9999"),
		OpenRouterAPIKey: getEnv("OPENROUTER_API_KEY", ""),
		ExtractionModel:  getEnv("MODEL_NAME", "openai/gpt-oss-120b"),
		PriceModel:       getEnv("PRICE_LLM_MODEL", "deepseek/deepseek-r1"),
		AITimeout:        getEnvDuration("AI_TIMEOUT", 30*time.Second),
		PlacesAPIKey:     getEnv("PLACES_API_KEY", ""),
		ChunkSize:        getEnvInt("CHUNK_SIZE", 20000),
		ChunkOverlap:     getEnvInt("CHUNK_OVERLAP", 500),
		MaxLLMTextLen:    getEnvInt("MAX_LLM_TEXT_LEN", 60000),
		PriceCeiling:     getEnvFloat("PRICE_CEILING", 10_000_000),
		PriceFloor:       getEnvFloat("PRICE_FLOOR", 10),
		NarrowRatio:      getEnvFloat("PRICE_NARROW_RATIO", 1.5),
		MinSpreadShare:   getEnvFloat("PRICE_MIN_SPREAD", 0.3),
		DatabasePath:     getEnv("DATABASE_PATH", "tender_runs.db"),
		DefaultCity:      getEnv("DEFAULT_CITY", "Россия"),
		LogLevel:         getEnv("LOG_LEVEL", "INFO"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет согласованность конфигурации.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk overlap must be in [0, chunk size), got %d", c.ChunkOverlap)
	}
	if c.MaxLLMTextLen < c.ChunkSize {
		return fmt.Errorf("max LLM text length %d is smaller than chunk size %d", c.MaxLLMTextLen, c.ChunkSize)
	}
	if c.PriceCeiling <= c.PriceFloor {
		return fmt.Errorf("price ceiling %.2f must exceed floor %.2f", c.PriceCeiling, c.PriceFloor)
	}
	if c.NarrowRatio <= 1 {
		return fmt.Errorf("narrow ratio must be > 1, got %.2f", c.NarrowRatio)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
