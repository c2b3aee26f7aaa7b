package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// OpenRouterClient клиент для работы с OpenRouter API.
// Реализует интерфейс Provider.
type OpenRouterClient struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	limiter     *rate.Limiter
	retryConfig RetryConfig
	logger      *slog.Logger
}

// NewOpenRouterClient создает новый клиент OpenRouter
func NewOpenRouterClient(apiKey string, timeout time.Duration) *OpenRouterClient {
	// Оптимизированный HTTP Transport с connection pooling
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxConnsPerHost:     5,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConnsPerHost: 5,
	}

	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &OpenRouterClient{
		baseURL: "https://openrouter.ai/api/v1",
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		limiter:     rate.NewLimiter(rate.Every(time.Second), 2),
		retryConfig: DefaultRetryConfig(),
		logger:      slog.Default().With("component", "openrouter_client"),
	}
}

// IsConfigured сообщает, задан ли API ключ.
// Без ключа запросы к OpenRouter не выполняются.
func (c *OpenRouterClient) IsConfigured() bool {
	return c.apiKey != ""
}

// Generate выполняет запрос chat/completions и возвращает текст первого choice.
// Поддерживает retry с экспоненциальной задержкой для ошибок rate limit и 5xx.
func (c *OpenRouterClient) Generate(ctx context.Context, messages []Message, opts GenerateOptions) (string, error) {
	if !c.IsConfigured() {
		return "", fmt.Errorf("openrouter: API key is not configured")
	}

	url := fmt.Sprintf("%s/chat/completions", c.baseURL)

	requestBody := map[string]interface{}{
		"model":    opts.Model,
		"messages": messages,
	}
	if opts.MaxTokens > 0 {
		requestBody["max_tokens"] = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		requestBody["temperature"] = opts.Temperature
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	delay := c.retryConfig.InitialDelay

	for attempt := 0; attempt <= c.retryConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying chat completion",
				"attempt", attempt,
				"max_retries", c.retryConfig.MaxRetries,
				"delay", delay)
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("context cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.retryConfig.BackoffMultiplier)
			if delay > c.retryConfig.MaxDelay {
				delay = c.retryConfig.MaxDelay
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait failed: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			c.logger.Warn("Chat completion request failed", "attempt", attempt+1, "error", lastErr)
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			if retryAfter := parseRetryAfter(resp); retryAfter > 0 {
				delay = retryAfter
			}
			lastErr = fmt.Errorf("rate limit exceeded (429)")
			c.logger.Warn("OpenRouter rate limit exceeded", "attempt", attempt+1, "retry_after", delay)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			var errorResp struct {
				Error *struct {
					Message string `json:"message"`
					Type    string `json:"type"`
				} `json:"error,omitempty"`
			}
			_ = json.Unmarshal(body, &errorResp)

			errorMsg := string(body)
			if errorResp.Error != nil {
				errorMsg = errorResp.Error.Message
				if strings.Contains(strings.ToLower(errorMsg), "quota") {
					// quota exceeded не временная ошибка, retry бессмысленен
					return "", fmt.Errorf("quota exceeded: %s", errorMsg)
				}
			}

			lastErr = fmt.Errorf("API returned status %d: %s", resp.StatusCode, errorMsg)
			if resp.StatusCode >= 500 {
				c.logger.Warn("OpenRouter server error, will retry",
					"status", resp.StatusCode,
					"attempt", attempt+1)
				continue
			}
			return "", lastErr
		}

		var response struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
			Error *struct {
				Message string `json:"message"`
				Type    string `json:"type"`
			} `json:"error,omitempty"`
		}

		if err := json.Unmarshal(body, &response); err != nil {
			lastErr = fmt.Errorf("failed to decode response: %w", err)
			c.logger.Warn("Failed to decode chat completion response", "attempt", attempt+1, "error", err)
			continue
		}

		if response.Error != nil {
			return "", fmt.Errorf("API error: %s (type: %s)", response.Error.Message, response.Error.Type)
		}

		if len(response.Choices) == 0 {
			return "", fmt.Errorf("no choices in response")
		}

		return response.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("all retry attempts failed: %w", lastErr)
}

// parseRetryAfter парсит заголовок Retry-After из ответа
func parseRetryAfter(resp *http.Response) time.Duration {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}
	if d, err := time.ParseDuration(retryAfter + "s"); err == nil {
		return d
	}
	return 0
}
