// Package normalization приводит названия работ и городов к каноническому
// виду для кэш-ключей и дедупликации: нижний регистр, чистка пунктуации,
// стемминг русских слов.
package normalization

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball"
)

var (
	rePunct      = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	reMultiSpace = regexp.MustCompile(`\s+`)
)

// CleanText убирает пунктуацию и лишние пробелы, приводит к нижнему регистру.
func CleanText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = rePunct.ReplaceAllString(s, " ")
	return strings.TrimSpace(reMultiSpace.ReplaceAllString(s, " "))
}

// TaskKey строит канонический ключ вида работ: чистка + стемминг каждого
// слова. "Бурение свай" и "бурение сваи" дают один ключ. Слова, которые
// стеммер не принимает, остаются как есть.
func TaskKey(task string) string {
	clean := CleanText(task)
	if clean == "" {
		return ""
	}

	words := strings.Fields(clean)
	stemmed := make([]string, 0, len(words))
	for _, w := range words {
		s, err := snowball.Stem(w, "russian", false)
		if err != nil || s == "" {
			s = w
		}
		stemmed = append(stemmed, s)
	}
	return strings.Join(stemmed, " ")
}

// CacheKey строит ключ кэша цен по паре (вид работ, город).
func CacheKey(task, city string) string {
	return TaskKey(task) + "|" + CleanText(city)
}
