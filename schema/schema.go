// Package schema содержит каноническую схему карточки тендера и операции
// слияния/нормализации произвольных словарей к этой схеме.
package schema

// Record произвольная вложенная структура данных тендера.
// До нормализации может содержать любые ключи; после Normalize гарантированно
// содержит все ключи шаблона с типосовместимыми значениями.
type Record = map[string]any

// Template возвращает свежую копию унифицированной схемы тендера.
// Каждый вызов создает независимый экземпляр, шаблон нельзя испортить.
func Template() Record {
	return Record{
		"tender_id":     "",
		"title":         "",
		"description":   "",
		"document_type": "",
		"purchase_type": "",
		"customer": Record{
			"name":     "",
			"inn":      "",
			"kpp":      "",
			"ogrn":     "",
			"address":  "",
			"contacts": "",
		},
		"object": Record{
			"name":     "",
			"address":  "",
			"category": "",
			"volume":   "",
			"unit":     "",
		},
		"technical": Record{
			"requirements": "",
			"conditions":   "",
			"works": Record{
				"works_list": []any{},
			},
		},
		"timeline": Record{
			"start_date":        "",
			"end_date":          "",
			"duration_days":     "",
			"delivery_schedule": "",
		},
		"pricing": Record{
			"currency":            "RUB",
			"price_estimate_min":  "",
			"price_estimate_max":  "",
			"sources":             "",
			"calculation_comment": "",
		},
		"goods": Record{
			"items": []any{},
		},
		"legal": Record{
			"contract_conditions": "",
			"penalties":           "",
			"guarantees":          "",
		},
		"analysis_meta": Record{
			"user_city":       "",
			"fallback_used":   false,
			"fallback_reason": "",
		},
	}
}

// WorkItemEntry возвращает пустую запись работы в формате works_list.
func WorkItemEntry(name, volume, unit string) Record {
	return Record{
		"name":      name,
		"volume":    volume,
		"unit":      unit,
		"materials": "",
		"equipment": "",
		"location":  "",
		"notes":     "",
	}
}

// GoodsItemEntry возвращает пустую запись товара в формате goods.items.
func GoodsItemEntry(name, quantity, unit string) Record {
	return Record{
		"name":         name,
		"description":  "",
		"brand":        "",
		"model":        "",
		"certificates": "",
		"quantity":     quantity,
		"unit":         unit,
		"requirements": "",
	}
}

// IsEmptyValue проверяет "пустоту" скаляра в смысле правил слияния:
// nil, пустая строка и пустой список считаются пустыми и никогда
// не перекрывают ранее установленное значение.
func IsEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []any:
		return len(val) == 0
	default:
		return false
	}
}
