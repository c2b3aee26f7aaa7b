package headerparse

import (
	"regexp"
	"strings"
)

var (
	reUnderscores = regexp.MustCompile(`_{2,}`)
	reMultiSpace  = regexp.MustCompile(`\s{2,}`)
	reOnlyPunct   = regexp.MustCompile(`^[\s\p{P}\p{S}_]+$`)
	reLatinVNoise = regexp.MustCompile(`(?i)(?:^|\s)V{2,}(?:\s|$)`)
)

// normalizeLine чистит одну строку документа: табы, цепочки подчеркиваний,
// шум вида "V V V", повторные пробелы.
func normalizeLine(line string) string {
	if line == "" {
		return ""
	}
	s := strings.TrimSpace(strings.ReplaceAll(line, "\t", " "))
	s = reUnderscores.ReplaceAllString(s, " ")
	s = reLatinVNoise.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// splitToLines разбивает текст на непустые нормализованные строки.
// Ограничивает количество строк (верх документа), чтобы не тащить все полотно.
func splitToLines(text string, maxLines int) []string {
	if text == "" {
		return nil
	}

	raw := strings.ReplaceAll(text, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	var lines []string
	for _, l := range strings.Split(raw, "\n") {
		if len(lines) >= maxLines {
			break
		}
		line := normalizeLine(l)
		if line == "" {
			continue
		}
		if reOnlyPunct.MatchString(line) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// limitLen обрезает слишком длинные значения шапки, добавляя многоточие.
func limitLen(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return strings.TrimRight(string(runes[:maxLen-3]), " ") + "..."
}

// sanitizeHeaderValue косметика значения шапки: кавычки по краям,
// повторные пробелы, длина. Никакой фильтрации по смыслу здесь нет.
func sanitizeHeaderValue(s string) string {
	if s == "" {
		return ""
	}
	s = strings.Trim(strings.TrimSpace(s), "«»\"'")
	if s == "" {
		return ""
	}
	s = reMultiSpace.ReplaceAllString(s, " ")
	return limitLen(s, 260)
}
