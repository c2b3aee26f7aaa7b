// Package performers ищет потенциальных исполнителей (компании, продавцов)
// под заданный вид работ в конкретном городе: основной путь через API поиска
// организаций, резервный — разбор объявлений Avito. Любая внешняя ошибка
// превращается в пустой список, а не в отказ всего анализа.
package performers

import (
	"context"
	"log/slog"
	"strings"
)

// Record описание найденного исполнителя для вида работ.
type Record struct {
	Name    string   `json:"name"`
	Site    string   `json:"site"`
	Phone   string   `json:"phone"`
	Email   string   `json:"email"`
	Address string   `json:"address"`
	Rating  *float64 `json:"rating,omitempty"`
}

// Resolver двухступенчатый поиск исполнителей. Резервный путь вызывается
// только когда основной не дал ни одного результата, так что число внешних
// запросов на один вид работ ограничено.
type Resolver struct {
	places *PlacesClient
	avito  *AvitoClient
	logger *slog.Logger
}

// NewResolver создает резолвер. places может быть nil (нет API-ключа) —
// тогда сразу работает резервный путь.
func NewResolver(places *PlacesClient, avito *AvitoClient) *Resolver {
	return &Resolver{
		places: places,
		avito:  avito,
		logger: slog.Default().With("component", "performers"),
	}
}

// Find возвращает до limit исполнителей для вида работ в городе.
// Никогда не возвращает ошибку: худший случай — пустой список.
func (r *Resolver) Find(ctx context.Context, task, city string, limit int) []Record {
	task = strings.TrimSpace(task)
	city = strings.TrimSpace(city)
	if city == "" {
		city = "Россия"
	}
	if task == "" {
		return nil
	}
	if limit <= 0 {
		limit = 5
	}

	var found []Record

	if r.places != nil && r.places.IsConfigured() {
		r.logger.Info("Поиск исполнителей через API организаций", "task", task, "city", city)
		found = r.places.Search(ctx, task, city, limit)
	}

	if len(found) == 0 && r.avito != nil {
		r.logger.Info("Резервный поиск исполнителей через Avito", "task", task, "city", city)
		found = r.avito.Search(ctx, task, city, limit)
	}

	return found
}
