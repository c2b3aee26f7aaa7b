package market

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"tenderanalyzer/performers"
	"tenderanalyzer/pricing"
	"tenderanalyzer/schema"
)

// PriceSearcher контракт поиска цен (реализуется pricing.Service).
type PriceSearcher interface {
	SearchPrices(ctx context.Context, task, city string) pricing.Quote
}

// PerformerSearcher контракт поиска исполнителей (реализуется performers.Resolver).
type PerformerSearcher interface {
	Find(ctx context.Context, task, city string, limit int) []performers.Record
}

// Enricher считает минимальную смету и подбирает исполнителей по каждому
// виду работ из записи тендера.
type Enricher struct {
	prices     PriceSearcher
	performers PerformerSearcher
	logger     *slog.Logger
}

// NewEnricher создает обогатитель. Оба сервиса могут быть nil — тогда
// соответствующая часть market_analysis не заполняется.
func NewEnricher(prices PriceSearcher, perf PerformerSearcher) *Enricher {
	return &Enricher{
		prices:     prices,
		performers: perf,
		logger:     slog.Default().With("component", "market"),
	}
}

// Enrich дописывает в запись секцию market_analysis: построчную смету
// с итогами и исполнителей по каждому виду работ. Запись меняется на месте;
// строки со статусом no_data в итоги не входят.
func (e *Enricher) Enrich(ctx context.Context, record schema.Record, city string) {
	works := CollectWorkItems(record)
	if len(works) == 0 {
		return
	}

	city = strings.TrimSpace(city)
	searchCity := city
	if searchCity == "" {
		searchCity = "Россия"
	}

	e.logger.Info("Расчет минимальной сметы", "works", len(works), "city", searchCity)

	var rows []any
	var totalMin, totalMax float64

	for _, w := range works {
		row := e.priceRow(ctx, w, searchCity)
		if status, _ := row["status"].(string); status == "calculated" {
			totalMin += row["subtotal_min"].(float64)
			totalMax += row["subtotal_max"].(float64)
		}
		rows = append(rows, row)
	}

	ma, ok := record["market_analysis"].(map[string]any)
	if !ok {
		ma = map[string]any{}
		record["market_analysis"] = ma
	}

	calc := map[string]any{
		"total_min":       roundedOrEmpty(totalMin),
		"total_max":       roundedOrEmpty(totalMax),
		"currency":        "RUB",
		"confidence":      "0.5",
		"works_breakdown": rows,
	}
	ma["minimum_sum_calculation"] = calc

	if byTask := e.findPerformers(ctx, rows, searchCity); len(byTask) > 0 {
		ma["performers_by_task"] = byTask
	}

	ma["city"] = city
	ma["search_engine"] = "Tender Search Engine"
}

// priceRow считает одну строку сметы для вида работ.
func (e *Enricher) priceRow(ctx context.Context, w WorkItem, city string) map[string]any {
	var quote pricing.Quote
	if e.prices != nil {
		quote = e.prices.SearchPrices(ctx, w.Name, city)
	}

	if !quote.OK {
		comment := quote.Comment
		if comment == "" {
			comment = "Недостаточно данных для расчёта цен"
		}
		return map[string]any{
			"status":    "no_data",
			"work_name": w.Name,
			"volume":    w.Volume,
			"unit":      w.Unit,
			"comment":   comment,
		}
	}

	unit := quote.Unit
	if unit == "" {
		unit = w.Unit
	}
	currency := quote.Currency
	if currency == "" {
		currency = "RUB"
	}

	subtotalMin := quote.PriceMin * w.Volume
	subtotalMax := quote.PriceMax * w.Volume

	return map[string]any{
		"status":       "calculated",
		"work_name":    w.Name,
		"volume":       w.Volume,
		"unit":         unit,
		"price_min":    quote.PriceMin,
		"price_max":    quote.PriceMax,
		"subtotal_min": subtotalMin,
		"subtotal_max": subtotalMax,
		"currency":     currency,
		"confidence":   0.5,
	}
}

// findPerformers подбирает исполнителей по каждой строке сметы.
func (e *Enricher) findPerformers(ctx context.Context, rows []any, city string) map[string]any {
	if e.performers == nil {
		return nil
	}

	byTask := map[string]any{}

	for _, r := range rows {
		row, ok := r.(map[string]any)
		if !ok {
			continue
		}
		workName, _ := row["work_name"].(string)
		workName = strings.TrimSpace(workName)
		if workName == "" {
			continue
		}

		found := e.performers.Find(ctx, workName, city, 5)
		if len(found) == 0 {
			continue
		}

		unit, _ := row["unit"].(string)
		currency, _ := row["currency"].(string)
		if strings.TrimSpace(currency) == "" {
			currency = "RUB"
		}

		var entries []any
		for _, p := range found {
			var rating any = ""
			if p.Rating != nil {
				rating = *p.Rating
			}
			entries = append(entries, map[string]any{
				"name":        p.Name,
				"type":        "поставщик",
				"profile_url": p.Site,
				"reviews": map[string]any{
					"average_rating": rating,
					"reviews":        []any{},
				},
				"prices": []any{
					map[string]any{
						"value_min": row["price_min"],
						"value_max": row["price_max"],
						"unit":      unit,
						"currency":  currency,
						"source":    "places_api",
					},
				},
				"contacts": map[string]any{
					"phone": p.Phone,
					"email": p.Email,
				},
			})
		}

		byTask[workName] = entries
	}

	return byTask
}

// roundedOrEmpty округляет сумму до копеек; нулевой итог отдаем пустой
// строкой, чтобы в отчете не было "0.00".
func roundedOrEmpty(v float64) any {
	if v == 0 {
		return ""
	}
	return math.Round(v*100) / 100
}
