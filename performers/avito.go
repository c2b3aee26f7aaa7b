package performers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

const avitoSearchURL = "https://www.avito.ru/rossiya"

// браузерный User-Agent: без него Avito чаще режет запросы
const avitoUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// AvitoClient резервный поиск исполнителей по объявлениям Avito.
// Телефон и почту без авторизации не вытащить, поэтому записи содержат
// название объявления и прямую ссылку.
type AvitoClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewAvitoClient создает клиент поиска по Avito.
func NewAvitoClient() *AvitoClient {
	return &AvitoClient{
		baseURL: avitoSearchURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     60 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
		logger:  slog.Default().With("component", "avito"),
	}
}

// Search открывает страницу поиска и разбирает первые limit объявлений.
// При ошибках, включая 429 Too Many Requests, возвращает пустой список.
func (c *AvitoClient) Search(ctx context.Context, task, city string, limit int) []Record {
	query := strings.TrimSpace(task + " " + city)
	if query == "" {
		return nil
	}
	if limit <= 0 {
		limit = 5
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil
	}

	params := url.Values{}
	params.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", avitoUserAgent)
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en-US;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Ошибка сети при обращении к Avito", "query", query, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.logger.Warn("Avito вернул 429 Too Many Requests", "query", query)
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Avito вернул ошибочный статус", "query", query, "status", resp.StatusCode)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		c.logger.Warn("Не удалось распарсить HTML от Avito", "query", query, "error", err)
		return nil
	}

	return parseAvitoListings(doc, limit)
}

// parseAvitoListings вытаскивает ссылки объявлений из разметки страницы.
// Основной селектор — data-marker="item-title"; запасной на случай смены
// разметки — itemprop="url".
func parseAvitoListings(doc *goquery.Document, limit int) []Record {
	links := doc.Find(`a[data-marker="item-title"]`)
	if links.Length() == 0 {
		links = doc.Find(`a[itemprop="url"]`)
	}

	var records []Record
	links.EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return true
		}
		if !strings.HasPrefix(href, "http") {
			href = "https://www.avito.ru" + href
		}

		title := strings.TrimSpace(a.Text())
		if title == "" {
			title = "Объявление Avito"
		}

		records = append(records, Record{
			Name:    title,
			Site:    href,
			Address: "Avito",
		})
		return len(records) < limit
	})

	return records
}
