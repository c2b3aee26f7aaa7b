package pricing

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	reFenceOpen     = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	reFenceClose    = regexp.MustCompile("\\s*```$")
	reTrailingComma = regexp.MustCompile(`,\s*([}\]])`)
	reNumToken      = regexp.MustCompile(`\d[\d\s]{0,8}(?:[.,]\d+)?`)
)

// ParseLLMPrice разбирает ответ модели максимально живучим способом.
//
// Приоритет:
//  1. честный JSON или почти-JSON (лечим хвостовые запятые, умные и
//     одинарные кавычки);
//  2. если JSON развалился или цены за потолком — вытащить все числа
//     из текста и собрать диапазон из двух наименьших;
//  3. узкий диапазон симметрично расширяется вокруг середины.
//
// Функция тотальна: никогда не паникует и не возвращает ошибку, худший
// случай — Quote{OK: false} с пояснением в Comment.
func ParseLLMPrice(content string, limits Limits) Quote {
	if strings.TrimSpace(content) == "" {
		return Quote{
			Source:  "llm",
			Comment: "Пустой ответ LLM при оценке цены.",
		}
	}

	text := strings.TrimSpace(content)
	text = reFenceOpen.ReplaceAllString(text, "")
	text = strings.TrimSpace(reFenceClose.ReplaceAllString(text, ""))

	q := Quote{Currency: "RUB"}
	var haveMin, haveMax bool

	// ---------- 1. JSON-фрагмент { ... } ----------
	if obj := extractJSONObject(text); obj != nil {
		if v, ok := numField(obj, "price_min", "min"); ok {
			q.PriceMin, haveMin = v, true
		}
		if v, ok := numField(obj, "price_max", "max"); ok {
			q.PriceMax, haveMax = v, true
		}
		if haveMin && !haveMax {
			q.PriceMax, haveMax = q.PriceMin, true
		}
		if haveMax && !haveMin {
			q.PriceMin, haveMin = q.PriceMax, true
		}

		if s, _ := obj["unit"].(string); strings.TrimSpace(s) != "" {
			q.Unit = strings.TrimSpace(s)
		}
		if s, _ := obj["currency"].(string); strings.TrimSpace(s) != "" {
			q.Currency = strings.TrimSpace(s)
		}
		if v, ok := numField(obj, "confidence"); ok {
			q.Confidence = v
		}
		if s, _ := obj["comment"].(string); s != "" {
			q.Comment = strings.TrimSpace(s)
		}
	}

	q.OK = haveMin && haveMax &&
		q.PriceMin >= 0 &&
		q.PriceMax >= q.PriceMin &&
		q.PriceMax <= limits.Ceiling

	// ---------- 2. Эвристика по числам из текста ----------
	if !q.OK {
		if vals := plausibleNumbers(text, limits); len(vals) > 0 {
			q.PriceMin = vals[0]
			if len(vals) > 1 {
				q.PriceMax = vals[1]
			} else {
				q.PriceMax = vals[0]
			}
			if q.Unit == "" {
				q.Unit = "шт"
			}
			if q.Currency == "" {
				q.Currency = "RUB"
			}
			if q.Confidence == 0 || q.Confidence > 0.5 {
				q.Confidence = 0.5
			}
			q.Comment = appendComment(q.Comment,
				"Диапазон цен восстановлен эвристикой из текста ответа LLM.")
			q.OK = true
		}
	}

	// ---------- 3. Расширение слишком узкого диапазона ----------
	if q.OK && q.PriceMin > 0 {
		ratio := q.PriceMax / q.PriceMin
		if ratio < limits.NarrowRatio {
			mid := (q.PriceMin + q.PriceMax) / 2
			spread := q.PriceMax - q.PriceMin
			if minSpread := limits.MinSpreadShare * mid; spread < minSpread {
				spread = minSpread
			}
			q.PriceMin = mid - spread
			if q.PriceMin < limits.Floor {
				q.PriceMin = limits.Floor
			}
			q.PriceMax = mid + spread
			if q.PriceMax > limits.Ceiling {
				q.PriceMax = limits.Ceiling
			}
			q.Comment = appendComment(q.Comment,
				"Диапазон цен немного расширен для более реалистичного разброса.")
		}
	}

	if q.OK {
		q.Source = "llm"
	} else {
		q.Source = "llm_error"
		if q.Comment == "" {
			q.Comment = "LLM не смог вернуть корректный диапазон цен."
		}
	}
	return q
}

// extractJSONObject вырезает фрагмент {...} и пробует распарсить его
// в нескольких вариантах починки.
func extractJSONObject(text string) map[string]any {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return nil
	}
	base := strings.TrimSpace(text[start : end+1])

	repaired := reTrailingComma.ReplaceAllString(base, "$1")
	variants := []string{
		base,
		repaired,
		strings.NewReplacer("'", `"`, "«", `"`, "»", `"`, "“", `"`, "”", `"`).Replace(repaired),
	}

	for _, v := range variants {
		var obj map[string]any
		if err := json.Unmarshal([]byte(v), &obj); err == nil {
			return obj
		}
	}
	return nil
}

// numField достает число по первому подошедшему ключу; принимает и числа,
// и числовые строки вида "1 500,50".
func numField(obj map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		v, present := obj[k]
		if !present || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			return t, true
		case string:
			s := strings.ReplaceAll(strings.TrimSpace(t), " ", "")
			s = strings.ReplaceAll(s, ",", ".")
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// plausibleNumbers собирает из текста числовые токены, отбрасывает шум
// (мелочь, календарные годы, значения выше потолка) и возвращает не более
// двух наименьших различных значений по возрастанию.
func plausibleNumbers(text string, limits Limits) []float64 {
	seen := make(map[float64]bool)
	var values []float64

	for _, raw := range reNumToken.FindAllString(text, -1) {
		s := strings.ReplaceAll(raw, " ", "")
		s = strings.ReplaceAll(s, ",", ".")
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			continue
		}
		if v < limits.Floor {
			continue
		}
		if v >= 1900 && v <= 2100 {
			continue
		}
		if v > limits.Ceiling {
			continue
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}

	sort.Float64s(values)
	if len(values) > 2 {
		values = values[:2]
	}
	return values
}

func appendComment(existing, extra string) string {
	if existing == "" {
		return extra
	}
	return existing + " " + extra
}
