// Package chunker разбивает длинный текст документа на перекрывающиеся
// фрагменты ограниченного размера для независимой обработки.
package chunker

import "strings"

// Split режет текст на чанки размером не более maxChars с перекрытием overlap.
// Перекрытие нужно, чтобы упоминание поля на границе чанков не потерялось.
//
// Пустой текст дает пустой срез; текст короче maxChars возвращается одним
// чанком. Последний чанк всегда доходит ровно до конца текста.
func Split(text string, maxChars, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	n := len(runes)
	if n <= maxChars {
		return []string{text}
	}

	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChars {
		overlap = maxChars - 1
	}

	var chunks []string
	start := 0
	for start < n {
		end := start + maxChars
		if end > n {
			end = n
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == n {
			break
		}
		start = end - overlap
	}

	return chunks
}
