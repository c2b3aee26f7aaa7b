// Команда analyze прогоняет конвейер анализа по файлам из аргументов
// командной строки и пишет агрегированную карточку тендера в JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"tenderanalyzer/internal/config"
	"tenderanalyzer/internal/infrastructure/ai"
	"tenderanalyzer/market"
	"tenderanalyzer/performers"
	"tenderanalyzer/pipeline"
	"tenderanalyzer/pricing"
)

func main() {
	city := flag.String("city", "", "город/регион закупки (по умолчанию из DEFAULT_CITY)")
	output := flag.String("o", "aggregated_tender.json", "путь к итоговому JSON")
	noMarket := flag.Bool("no-market", false, "пропустить рыночный анализ (цены и исполнители)")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "использование: analyze [флаги] файл [файл...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Не удалось загрузить конфигурацию: %v", err)
	}
	if *city == "" {
		*city = cfg.DefaultCity
	}

	var provider ai.Provider
	client := ai.NewOpenRouterClient(cfg.OpenRouterAPIKey, cfg.AITimeout)
	if client.IsConfigured() {
		provider = client
	} else {
		slog.Warn("OPENROUTER_API_KEY не задан, анализ без LLM")
	}

	var enricher *market.Enricher
	if !*noMarket {
		prices := pricing.NewService(provider, cfg.PriceModel, pricing.Limits{
			Ceiling:        cfg.PriceCeiling,
			Floor:          cfg.PriceFloor,
			NarrowRatio:    cfg.NarrowRatio,
			MinSpreadShare: cfg.MinSpreadShare,
		})
		resolver := performers.NewResolver(
			performers.NewPlacesClient(cfg.PlacesAPIKey),
			performers.NewAvitoClient(),
		)
		enricher = market.NewEnricher(prices, resolver)
	}

	p := pipeline.New(cfg, provider, enricher)

	aggregated, results := p.AnalyzeFiles(context.Background(), flag.Args(), *city)
	if len(results) == 0 {
		log.Fatal("Ни один из файлов не удалось прочитать")
	}

	for _, r := range results {
		slog.Info("Файл проанализирован", "path", r.Path, "type", r.DocumentType)
	}

	data, err := json.MarshalIndent(aggregated, "", "  ")
	if err != nil {
		log.Fatalf("Не удалось сериализовать карточку: %v", err)
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		log.Fatalf("Не удалось записать %s: %v", *output, err)
	}

	fmt.Printf("Итоговая карточка сохранена в %s\n", *output)
}
