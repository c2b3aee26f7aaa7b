// Package extraction управляет извлечением структурированных данных тендера
// из текстовых фрагментов через LLM и финальной сверкой полей с результатом
// эвристического разбора.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"tenderanalyzer/internal/infrastructure/ai"
	"tenderanalyzer/schema"
)

// Orchestrator прогоняет LLM по каждому чанку документа и собирает
// частичные структурированные результаты. Ошибка на отдельном чанке
// не прерывает обработку остальных.
type Orchestrator struct {
	provider ai.Provider
	model    string
	logger   *slog.Logger
}

// NewOrchestrator создает оркестратор с внедренным LLM-провайдером.
func NewOrchestrator(provider ai.Provider, model string) *Orchestrator {
	return &Orchestrator{
		provider: provider,
		model:    model,
		logger:   slog.Default().With("component", "extraction"),
	}
}

// Extract вызывает модель для каждого чанка и возвращает только те
// частичные записи, которые удалось распарсить. Может вернуть пустой срез.
func (o *Orchestrator) Extract(ctx context.Context, chunks []string, userCity string) []schema.Record {
	var results []schema.Record

	for idx, chunk := range chunks {
		o.logger.Info("LLM-вызов для чанка", "chunk", idx+1, "total", len(chunks))

		messages := buildExtractionMessages(chunk, userCity)
		content, err := o.provider.Generate(ctx, messages, ai.GenerateOptions{Model: o.model})
		if err != nil {
			o.logger.Warn("Ошибка LLM на чанке, пропускаем", "chunk", idx+1, "error", err)
			continue
		}

		parsed := ParseJSONObject(content)
		if parsed == nil {
			o.logger.Warn("LLM не вернул валидный JSON-объект для чанка", "chunk", idx+1)
			continue
		}

		results = append(results, parsed)
	}

	return results
}

// buildExtractionMessages собирает промпт с буквальной схемой в качестве
// шаблона и жесткими правилами формата ответа.
func buildExtractionMessages(chunkText, userCity string) []ai.Message {
	schemaJSON, _ := json.MarshalIndent(schema.Template(), "", "  ")

	systemMsg := "Ты — эксперт по анализу тендерной документации (44-ФЗ, 223-ФЗ и др.).\n" +
		"Твоя задача — извлечь структурированные данные из фрагмента тендерных документов " +
		"и вернуть СТРОГО ОДИН JSON-объект, строго соответствующий заданной схеме.\n\n" +
		"Документы могут быть любыми: техническое задание, проект контракта, извещение, " +
		"сведения о закупке, требования к заявке, НМЦК, переписка и т.п.\n\n" +
		"Особенно внимательно заполняй поля верхней таблицы отчета:\n" +
		" • 'title' — краткое название закупки (например, 'Поставка свай винтовых'). " +
		"Не включай коды ОКПД и длинные юридические формулировки.\n" +
		" • 'description' — 1–3 предложения, объясняющих суть закупки простым языком.\n" +
		" • 'customer.name' — официальное наименование заказчика.\n" +
		" • 'customer.address' — официальный адрес заказчика.\n" +
		" • 'customer.contacts' — контактные данные (ФИО, телефон, e-mail). " +
		"Никогда не подставляй сюда описание предмета закупки.\n" +
		" • 'object.name' и 'object.address' — объект закупки и адрес объекта/поставки.\n\n" +
		"Обязательные правила:\n" +
		"1) Верни ТОЛЬКО JSON, без пояснений, комментариев и без ```.\n" +
		"2) JSON должен быть корректным и парситься без ошибок.\n" +
		"3) Если каких-то данных нет в тексте — ставь пустые строки, не выдумывай значения.\n" +
		"4) Строго соблюдай структуру и типы полей, как в схеме ниже.\n" +
		"5) Все суммы указывай в числовом формате без пробелов, для валют используй коды (например, 'RUB').\n\n" +
		fmt.Sprintf("Вот JSON-схема, которой НУЖНО строго следовать:\n%s", schemaJSON)

	if userCity == "" {
		userCity = "не указан"
	}

	userMsg := fmt.Sprintf(
		"Город/регион закупки (если известен пользователю): %s.\n\n"+
			"Проанализируй приведенный ниже фрагмент тендерной документации и заполни все поля "+
			"схемы, которые можно надежно извлечь из текста. Если данных недостаточно — оставь "+
			"соответствующие поля пустыми.\n\n"+
			"Фрагмент тендерной документации:\n%s\n\n"+
			"Верни ОДИН JSON-объект строго по указанной схеме. Никакого текста до или после JSON.",
		userCity, chunkText)

	return []ai.Message{
		{Role: "system", Content: systemMsg},
		{Role: "user", Content: userMsg},
	}
}
