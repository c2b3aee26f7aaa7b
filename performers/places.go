package performers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const placesBaseURL = "https://search-maps.yandex.ru/v1/"

// PlacesClient клиент API Яндекс Поиска по организациям.
// Любая ошибка (403, сеть, битый JSON) дает пустой список без отказа.
type PlacesClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewPlacesClient создает клиент поиска организаций. Пустой ключ допустим:
// IsConfigured() вернет false и резолвер уйдет на резервный путь.
func NewPlacesClient(apiKey string) *PlacesClient {
	return &PlacesClient{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: placesBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     60 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
		logger:  slog.Default().With("component", "places"),
	}
}

// IsConfigured сообщает, задан ли API-ключ.
func (c *PlacesClient) IsConfigured() bool {
	return c.apiKey != ""
}

// Search ищет организации по тексту "вид работ + город".
func (c *PlacesClient) Search(ctx context.Context, task, city string, limit int) []Record {
	if !c.IsConfigured() {
		return nil
	}

	text := strings.TrimSpace(task + " " + city)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil
	}

	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("text", text)
	params.Set("lang", "ru_RU")
	params.Set("type", "biz")
	params.Set("results", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Не удалось обратиться к API организаций", "query", text, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		c.logger.Warn("API организаций вернул 403, продолжаем без него", "query", text)
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("API организаций вернул ошибочный статус",
			"query", text, "status", resp.StatusCode)
		return nil
	}

	var payload struct {
		Features []placesFeature `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Warn("Не удалось распарсить JSON от API организаций", "query", text, "error", err)
		return nil
	}

	return parsePlacesFeatures(payload.Features)
}

type placesFeature struct {
	Properties struct {
		Description     string `json:"description"`
		CompanyMetaData struct {
			Name    string          `json:"name"`
			Address string          `json:"address"`
			URL     string          `json:"url"`
			Phones  []placesPhone   `json:"Phones"`
			Rating  json.RawMessage `json:"rating"`
			Reviews struct {
				Rating json.RawMessage `json:"rating"`
			} `json:"Reviews"`
		} `json:"CompanyMetaData"`
	} `json:"properties"`
}

type placesPhone struct {
	Formatted string `json:"formatted"`
	Number    string `json:"number"`
}

// parsePlacesFeatures превращает ответ search-maps в список Record.
// Формат берется из CompanyMetaData.
func parsePlacesFeatures(features []placesFeature) []Record {
	var records []Record

	for _, f := range features {
		company := f.Properties.CompanyMetaData

		name := strings.TrimSpace(company.Name)
		if name == "" {
			continue
		}

		address := strings.TrimSpace(company.Address)
		if address == "" {
			address = strings.TrimSpace(f.Properties.Description)
		}

		var phone string
		if len(company.Phones) > 0 {
			phone = strings.TrimSpace(company.Phones[0].Formatted)
			if phone == "" {
				phone = strings.TrimSpace(company.Phones[0].Number)
			}
		}

		rating := parseRating(company.Rating)
		if rating == nil {
			rating = parseRating(company.Reviews.Rating)
		}

		records = append(records, Record{
			Name:    name,
			Site:    strings.TrimSpace(company.URL),
			Phone:   phone,
			Address: address,
			Rating:  rating,
		})
	}

	return records
}

// parseRating принимает рейтинг и числом, и строкой.
func parseRating(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return &num
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return &v
		}
	}
	return nil
}
