// Package pipeline собирает полный конвейер анализа тендерной документации:
// чтение документов, эвристический разбор, LLM-извлечение по чанкам,
// слияние, сверку полей, рыночное обогащение и межфайловую агрегацию.
package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"tenderanalyzer/chunker"
	"tenderanalyzer/documents"
	"tenderanalyzer/extraction"
	"tenderanalyzer/headerparse"
	"tenderanalyzer/internal/config"
	"tenderanalyzer/internal/infrastructure/ai"
	"tenderanalyzer/market"
	"tenderanalyzer/schema"
)

// Pipeline конвейер анализа одного или нескольких документов тендера.
type Pipeline struct {
	cfg       *config.Config
	provider  ai.Provider
	extractor *extraction.Orchestrator
	enricher  *market.Enricher
	logger    *slog.Logger
}

// New создает конвейер. provider и enricher могут быть nil: без провайдера
// анализ работает только на эвристиках, без обогатителя пропускается
// рыночный анализ.
func New(cfg *config.Config, provider ai.Provider, enricher *market.Enricher) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		provider: provider,
		enricher: enricher,
		logger:   slog.Default().With("component", "pipeline"),
	}
	if provider != nil {
		p.extractor = extraction.NewOrchestrator(provider, cfg.ExtractionModel)
	}
	return p
}

// AnalyzeText анализирует текст тендерной документации и возвращает
// полную карточку по схеме.
//
// Главное правило: если LLM доступен и вернул хотя бы один валидный JSON,
// именно его результат становится основой карточки; эвристический разбор
// используется как запасной источник для пустых полей. Функция никогда
// не возвращает ошибку — худший случай это карточка с пустыми полями
// и fallback_used=true.
func (p *Pipeline) AnalyzeText(ctx context.Context, text, userCity string) schema.Record {
	if strings.TrimSpace(text) == "" {
		return schema.Template()
	}

	// 1) Базовый разбор без ИИ — всегда, как резерв.
	fallback := headerparse.Parse(text)

	useLLM := p.extractor != nil
	textLen := len([]rune(text))
	if useLLM && textLen > p.cfg.MaxLLMTextLen {
		p.logger.Info("Текст превышает лимит LLM, отключаем LLM для ускорения",
			"len", textLen, "limit", p.cfg.MaxLLMTextLen)
		useLLM = false
	}

	var record schema.Record
	if useLLM {
		record = p.extractWithLLM(ctx, text, userCity, fallback)
	} else {
		record = fallback
	}

	// Финальная зачистка полей: LLM-first, fallback-only-if-empty.
	record = extraction.Reconcile(record, fallback)

	meta := record["analysis_meta"].(map[string]any)
	meta["user_city"] = userCity

	if p.enricher != nil {
		p.enricher.Enrich(ctx, record, userCity)
	}

	return record
}

// extractWithLLM гонит LLM по чанкам и возвращает агрегат частичных
// результатов, либо fallback, если модель не вернула ни одного JSON.
func (p *Pipeline) extractWithLLM(ctx context.Context, text, userCity string, fallback schema.Record) schema.Record {
	runes := []rune(text)
	if len(runes) > p.cfg.MaxLLMTextLen {
		runes = runes[:p.cfg.MaxLLMTextLen]
	}

	chunks := chunker.Split(string(runes), p.cfg.ChunkSize, p.cfg.ChunkOverlap)
	p.logger.Info("Запуск LLM-анализа", "chunks", len(chunks), "text_len", len(runes))

	partials := p.extractor.Extract(ctx, chunks, userCity)
	if len(partials) == 0 {
		p.logger.Warn("LLM не вернул ни одного валидного JSON, используем только эвристику")
		return fallback
	}

	return schema.Aggregate(partials)
}

// FileResult результат анализа одного файла.
type FileResult struct {
	Path         string
	DocumentType string
	Record       schema.Record
}

// AnalyzeFiles читает и анализирует каждый файл, затем сливает карточки
// файлов в одну итоговую. Нечитаемые и пустые файлы пропускаются.
func (p *Pipeline) AnalyzeFiles(ctx context.Context, paths []string, userCity string) (schema.Record, []FileResult) {
	var results []FileResult

	for _, path := range paths {
		text := documents.Read(path)
		if strings.TrimSpace(text) == "" {
			p.logger.Warn("Файл пуст или нечитаем, пропускаем", "path", path)
			continue
		}

		docType := documents.Classify(text)
		record := p.AnalyzeText(ctx, text, userCity)
		if dt, _ := record["document_type"].(string); strings.TrimSpace(dt) == "" {
			record["document_type"] = docType
		}

		results = append(results, FileResult{
			Path:         path,
			DocumentType: docType,
			Record:       record,
		})
	}

	records := make([]schema.Record, 0, len(results))
	for _, r := range results {
		records = append(records, r.Record)
	}

	return AggregateRecords(records), results
}

// AggregateRecords сливает карточки отдельных файлов в одну итоговую
// по той же семантике, что и агрегация чанков.
func AggregateRecords(records []schema.Record) schema.Record {
	return schema.Aggregate(records)
}
