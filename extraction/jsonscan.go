package extraction

import (
	"encoding/json"
	"regexp"
	"strings"

	"tenderanalyzer/schema"
)

var (
	reFenceOpen  = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	reFenceClose = regexp.MustCompile("\\s*```$")
	reOuterBrace = regexp.MustCompile(`(?s)\{.*\}`)
)

// ParseJSONObject вытаскивает один JSON-объект из сырого ответа модели.
// Трехступенчатое восстановление:
//  1. срезать ```-ограждения и попробовать найти первый объект
//     по балансу фигурных скобок;
//  2. если баланс нашелся, но не распарсился — regex "самый внешний объект";
//  3. ничего не вышло — nil.
//
// Возвращает nil, если объект извлечь не удалось; ошибок не бросает.
func ParseJSONObject(text string) schema.Record {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	t := strings.TrimSpace(text)
	t = reFenceOpen.ReplaceAllString(t, "")
	t = reFenceClose.ReplaceAllString(t, "")

	if obj := parseBalancedObject(t); obj != nil {
		return obj
	}

	if m := reOuterBrace.FindString(t); m != "" {
		var obj schema.Record
		if err := json.Unmarshal([]byte(m), &obj); err == nil {
			return obj
		}
	}

	return nil
}

// parseBalancedObject ищет первый сбалансированный {...} и парсит его.
func parseBalancedObject(t string) schema.Record {
	start := strings.IndexByte(t, '{')
	if start < 0 {
		return nil
	}

	depth := 0
	for i := start; i < len(t); i++ {
		switch t[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				candidate := strings.TrimSpace(t[start : i+1])
				var obj schema.Record
				if err := json.Unmarshal([]byte(candidate), &obj); err == nil {
					return obj
				}
				return nil
			}
		}
	}
	return nil
}
