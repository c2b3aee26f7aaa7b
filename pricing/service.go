package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"tenderanalyzer/internal/infrastructure/ai"
	"tenderanalyzer/normalization"
)

// Service сервис поиска цен: кэш по (вид работ, город), один LLM-запрос
// на промах кэша, живучий разбор ответа. В кэш попадают и неудачи,
// чтобы не дергать модель по кругу с тем же ключом.
type Service struct {
	provider ai.Provider
	model    string
	limits   Limits
	logger   *slog.Logger

	mu    sync.RWMutex
	cache map[string]Quote
}

// NewService создает сервис цен. Провайдер может быть nil — тогда все
// запросы возвращают Quote{OK:false, Source:"none"}.
func NewService(provider ai.Provider, model string, limits Limits) *Service {
	return &Service{
		provider: provider,
		model:    model,
		limits:   limits,
		logger:   slog.Default().With("component", "pricing"),
		cache:    make(map[string]Quote),
	}
}

// SearchPrices возвращает диапазон цен за единицу для вида работ в городе.
// Никогда не возвращает ошибку: любой сбой — Quote с OK=false и пояснением.
func (s *Service) SearchPrices(ctx context.Context, task, city string) Quote {
	task = trimOrDefault(task, "")
	city = trimOrDefault(city, "Россия")

	if task == "" {
		return Quote{
			Source:  "none",
			Comment: "Не задано описание вида работ для поиска цены.",
		}
	}

	key := normalization.CacheKey(task, city)

	s.mu.RLock()
	cached, hit := s.cache[key]
	s.mu.RUnlock()
	if hit {
		s.logger.Info("Используем кэш цен", "task", task, "city", city)
		cached.Source = "cache"
		return cached
	}

	if s.provider == nil {
		quote := Quote{
			Source:  "none",
			Comment: "LLM-провайдер не настроен, поиск цен недоступен.",
		}
		s.store(key, quote)
		return quote
	}

	s.logger.Info("LLM-поиск цены", "task", task, "city", city)

	raw, err := s.askLLMPrice(ctx, task, city)
	var quote Quote
	if err != nil {
		s.logger.Warn("Ошибка при LLM-оценке цены", "task", task, "error", err)
		quote = Quote{
			Source:  "llm_error",
			Comment: fmt.Sprintf("Ошибка при запросе LLM: %v", err),
		}
	} else {
		quote = ParseLLMPrice(raw, s.limits)
	}

	if quote.OK {
		s.logger.Info("LLM-оценка цены получена",
			"task", task,
			"price_min", quote.PriceMin,
			"price_max", quote.PriceMax,
			"unit", quote.Unit,
			"confidence", quote.Confidence)
	} else {
		s.logger.Info("Не удалось извлечь цену из ответа LLM",
			"task", task, "comment", quote.Comment)
	}

	s.store(key, quote)
	return quote
}

func (s *Service) store(key string, quote Quote) {
	s.mu.Lock()
	s.cache[key] = quote
	s.mu.Unlock()
}

// askLLMPrice запрашивает у модели ориентировочный диапазон цен.
func (s *Service) askLLMPrice(ctx context.Context, task, city string) (string, error) {
	systemMsg := "Ты выступаешь как опытный российский сметчик и аналитик рынка стройматериалов. " +
		"Твоя задача — оценить ориентировочную текущую рыночную цену " +
		"за единицу работы или услуги в рублях для указанных работ в указанном городе России. " +
		"Нужно дать реалистичный диапазон цен (price_min и price_max), " +
		"который отражает разброс цен по рынку: не слишком узкий и не экстремально широкий. " +
		"Ориентируйся на массовый сегмент и типичных подрядчиков, а не на премиум- или демпинговые цены. " +
		"Цена должна быть за 1 условную единицу измерения (unit), " +
		"например 'шт', 'м', 'м²', 'п.м.' и т.п.\n\n" +
		"Ответь СТРОГО в формате JSON БЕЗ дополнительных комментариев, текста, " +
		"объяснений до или после JSON.\n\n" +
		"Формат JSON:\n" +
		"{\n" +
		"  \"price_min\": <минимальная_цена_за_единицу>,\n" +
		"  \"price_max\": <максимальная_цена_за_единицу>,\n" +
		"  \"unit\": \"<единица_измерения>\",\n" +
		"  \"currency\": \"RUB\",\n" +
		"  \"confidence\": <число_от_0_до_1>,\n" +
		"  \"comment\": \"<краткий комментарий или уточнение>\"\n" +
		"}\n\n" +
		"Если данных почти нет, всё равно постарайся дать аккуратную оценку с пониженной confidence. " +
		"Если цены в источниках очень разные, лучше дай достаточно широкий диапазон, " +
		"например примерно от 0.6× до 1.6× средней типичной цены."

	userMsg := fmt.Sprintf(
		"Вид работ: %s\nГород / регион: %s\n\n"+
			"Нужно оценить ориентировочную рыночную цену за 1 единицу работы "+
			"в рублях на основании типичных российских прайсов, коммерческих предложений "+
			"и открытых источников. Укажи разумный диапазон цен (price_min и price_max) "+
			"для массового рынка. Не завышай и не занижай диапазон искусственно.",
		task, city)

	return s.provider.Generate(ctx, []ai.Message{
		{Role: "system", Content: systemMsg},
		{Role: "user", Content: userMsg},
	}, ai.GenerateOptions{
		Model:       s.model,
		Temperature: 0.1,
		MaxTokens:   512,
	})
}

func trimOrDefault(s, def string) string {
	if t := strings.TrimSpace(s); t != "" {
		return t
	}
	return def
}
