package ai

import (
	"context"
	"time"
)

// Message одно сообщение диалога с моделью
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateOptions параметры одного запроса к модели
type GenerateOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Provider способность "generate(messages) -> text".
// Конкретный транспорт (OpenRouter и т.п.) скрыт за интерфейсом,
// поэтому в тестах провайдер тривиально подменяется заглушкой.
type Provider interface {
	Generate(ctx context.Context, messages []Message, opts GenerateOptions) (string, error)
}

// RetryConfig конфигурация повторных попыток
type RetryConfig struct {
	MaxRetries        int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// DefaultRetryConfig возвращает конфигурацию повторных попыток по умолчанию
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        3,
		InitialDelay:      500 * time.Millisecond,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2.0,
	}
}
