package main

import (
	"log"
	"log/slog"
	"os"
	"strings"

	"tenderanalyzer/internal/config"
	"tenderanalyzer/internal/infrastructure/ai"
	"tenderanalyzer/market"
	"tenderanalyzer/performers"
	"tenderanalyzer/pipeline"
	"tenderanalyzer/pricing"
	"tenderanalyzer/server"
	"tenderanalyzer/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Не удалось загрузить конфигурацию: %v", err)
	}

	setupLogger(cfg.LogLevel)
	logger := slog.Default().With("component", "main")

	var provider ai.Provider
	client := ai.NewOpenRouterClient(cfg.OpenRouterAPIKey, cfg.AITimeout)
	if client.IsConfigured() {
		provider = client
		logger.Info("OPENROUTER_API_KEY найден, LLM-анализ включен")
	} else {
		logger.Warn("OPENROUTER_API_KEY не найден, работаем только на эвристиках")
	}

	priceLimits := pricing.Limits{
		Ceiling:        cfg.PriceCeiling,
		Floor:          cfg.PriceFloor,
		NarrowRatio:    cfg.NarrowRatio,
		MinSpreadShare: cfg.MinSpreadShare,
	}
	prices := pricing.NewService(provider, cfg.PriceModel, priceLimits)
	resolver := performers.NewResolver(
		performers.NewPlacesClient(cfg.PlacesAPIKey),
		performers.NewAvitoClient(),
	)
	enricher := market.NewEnricher(prices, resolver)

	p := pipeline.New(cfg, provider, enricher)

	store, err := storage.NewRunStore(cfg.DatabasePath)
	if err != nil {
		logger.Warn("Не удалось открыть базу прогонов, работаем без сохранения", "error", err)
		store = nil
	} else {
		defer store.Close()
	}

	srv := server.New(cfg, p, store)
	if err := srv.Run(); err != nil {
		log.Fatalf("Сервер завершился с ошибкой: %v", err)
	}
}

func setupLogger(level string) {
	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "WARN", "WARNING":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}
