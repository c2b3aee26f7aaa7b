package pipeline

import (
	"encoding/json"

	"tenderanalyzer/extraction"
	"tenderanalyzer/schema"
)

// SummarizeJSONs объединяет несколько JSON-строк с карточками в одну
// нормализованную карточку. Строки, из которых не удалось извлечь объект,
// пропускаются; массивы раскрываются поэлементно.
func SummarizeJSONs(jsons []string) schema.Record {
	var records []schema.Record

	for _, s := range jsons {
		if s == "" {
			continue
		}

		var obj schema.Record
		if err := json.Unmarshal([]byte(s), &obj); err != nil {
			// может быть массив карточек
			var list []schema.Record
			if err := json.Unmarshal([]byte(s), &list); err == nil {
				records = append(records, list...)
				continue
			}
			// или JSON, обернутый в прозу / код-блок
			obj = extraction.ParseJSONObject(s)
		}
		if obj != nil {
			records = append(records, obj)
		}
	}

	return schema.Aggregate(records)
}
