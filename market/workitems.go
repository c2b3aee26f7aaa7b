// Package market обогащает запись тендера рыночными данными: для каждого
// вида работ запрашивает диапазон цен и исполнителей и пишет результат
// в секцию market_analysis.
package market

import (
	"strconv"
	"strings"

	"tenderanalyzer/schema"
)

// WorkItem вид работ, собранный из записи для ценового анализа.
type WorkItem struct {
	Name   string
	Volume float64
	Unit   string
}

// CollectWorkItems универсально собирает работы/товары из всех мест,
// куда их могли положить LLM или эвристический парсер:
//
//	goods.items
//	technical.works.works_list
//	technical.works.items
//	technical.items
//	works
//
// Записи с одинаковой парой (название, единица) схлопываются в одну,
// объемы суммируются.
func CollectWorkItems(record schema.Record) []WorkItem {
	var items []WorkItem

	appendFrom := func(list any, volumeKeys ...string) {
		entries, ok := list.([]any)
		if !ok {
			return
		}
		for _, e := range entries {
			entry, ok := e.(map[string]any)
			if !ok {
				continue
			}
			name, _ := entry["name"].(string)
			name = strings.TrimSpace(name)
			if len([]rune(name)) < 3 {
				continue
			}

			var rawVolume any
			for _, k := range volumeKeys {
				if v, present := entry[k]; present && !schema.IsEmptyValue(v) {
					rawVolume = v
					break
				}
			}

			unit, _ := entry["unit"].(string)
			unit = strings.TrimSpace(unit)
			if unit == "" {
				unit = "шт"
			}

			items = append(items, WorkItem{
				Name:   name,
				Volume: parseVolume(rawVolume),
				Unit:   unit,
			})
		}
	}

	if goods, ok := record["goods"].(map[string]any); ok {
		appendFrom(goods["items"], "quantity", "volume")
	}
	if tech, ok := record["technical"].(map[string]any); ok {
		if works, ok := tech["works"].(map[string]any); ok {
			appendFrom(works["works_list"], "volume", "quantity")
			appendFrom(works["items"], "volume", "quantity")
		}
		appendFrom(tech["items"], "volume", "quantity")
	}
	appendFrom(record["works"], "volume", "quantity")

	return dedupWorkItems(items)
}

// dedupWorkItems схлопывает записи по ключу (название, единица),
// суммируя объемы. Порядок первых вхождений сохраняется.
func dedupWorkItems(items []WorkItem) []WorkItem {
	type key struct {
		name string
		unit string
	}

	index := make(map[key]int)
	var result []WorkItem

	for _, item := range items {
		k := key{strings.ToLower(item.Name), strings.ToLower(item.Unit)}
		if i, seen := index[k]; seen {
			result[i].Volume += item.Volume
			continue
		}
		index[k] = len(result)
		result = append(result, item)
	}

	return result
}

// parseVolume приводит объем к числу; при неразборчивом значении
// используется 1.0.
func parseVolume(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 1.0
	case float64:
		if t > 0 {
			return t
		}
		return 1.0
	case int:
		if t > 0 {
			return float64(t)
		}
		return 1.0
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), " ", "")
		s = strings.ReplaceAll(s, ",", ".")
		if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
			return f
		}
		return 1.0
	default:
		return 1.0
	}
}
