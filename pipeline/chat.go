package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"tenderanalyzer/internal/infrastructure/ai"
	"tenderanalyzer/schema"
)

// chatUnavailableMessage ответ пользователю, когда LLM не настроен:
// отчет сформирован, но задать вопросы к ИИ сейчас нельзя.
const chatUnavailableMessage = "LLM сейчас недоступен (скорее всего, не задан OPENROUTER_API_KEY). " +
	"Отчёт по тендеру при этом сформирован, но задать уточняющие вопросы к ИИ сейчас нельзя."

// Chat отвечает на вопрос пользователя по уже собранной карточке тендера.
// Без настроенного провайдера возвращает понятное сообщение, а не ошибку.
func (p *Pipeline) Chat(ctx context.Context, record schema.Record, userMessage string) (string, error) {
	if p.provider == nil {
		return chatUnavailableMessage, nil
	}

	recordJSON, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal tender record: %w", err)
	}

	systemMsg := "Ты — AI-консультант по тендерам. " +
		"Отвечай по-русски, кратко и по делу, опираясь только на переданный JSON " +
		"с результатами анализа тендера. Если данных не хватает — честно говори об этом."

	contextMsg := fmt.Sprintf(
		"Ниже приведён JSON с результатами анализа тендера. "+
			"Используй его для ответа на мой вопрос.\n\n%s", recordJSON)

	answer, err := p.provider.Generate(ctx, []ai.Message{
		{Role: "system", Content: systemMsg},
		{Role: "user", Content: contextMsg},
		{Role: "user", Content: userMessage},
	}, ai.GenerateOptions{Model: p.cfg.ExtractionModel})
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	return answer, nil
}
