package schema

// Merge рекурсивно сливает extra в base и возвращает base:
//   - вложенные словари сливаются по ключам;
//   - списки конкатенируются (base, затем extra, без дедупликации);
//   - скаляр из extra перекрывает base только если он не пустой.
//
// base модифицируется на месте.
func Merge(base, extra Record) Record {
	if extra == nil {
		return base
	}

	for k, v := range extra {
		switch val := v.(type) {
		case map[string]any:
			node, ok := base[k].(map[string]any)
			if !ok || node == nil {
				node = Record{}
			}
			base[k] = Merge(node, val)
		case []any:
			if baseList, ok := base[k].([]any); ok {
				base[k] = append(baseList, val...)
			} else {
				base[k] = val
			}
		default:
			if !IsEmptyValue(v) {
				base[k] = v
			}
		}
	}

	return base
}

// Normalize приводит произвольный словарь к схеме:
//   - все отсутствующие поля шаблона заполняются значениями по умолчанию;
//   - значение неверной формы (строка на месте словаря и т.п.) заменяется
//     значением шаблона;
//   - дополнительные ключи, которых нет в шаблоне (market_analysis,
//     performers_by_task и пр.), сохраняются как есть.
//
// Операция идемпотентна: Normalize(Normalize(x)) == Normalize(x).
func Normalize(data Record) Record {
	return fill(Template(), data).(Record)
}

func fill(template, d any) any {
	switch tpl := template.(type) {
	case map[string]any:
		src, _ := d.(map[string]any)
		out := Record{}
		for k, v := range tpl {
			out[k] = fill(v, src[k])
		}
		// лишние ключи исходного словаря проносим без изменений
		for k, v := range src {
			if _, known := tpl[k]; !known {
				out[k] = v
			}
		}
		return out
	case []any:
		if list, ok := d.([]any); ok {
			return list
		}
		return []any{}
	default:
		if d == nil || d == "" {
			return template
		}
		return d
	}
}

// Aggregate сливает несколько частичных словарей в один нормализованный
// результат. Пустые и nil-словари пропускаются; порядок источников определяет
// приоритет перекрытия скаляров (последний непустой побеждает).
func Aggregate(dicts []Record) Record {
	agg := Template()
	for _, d := range dicts {
		if len(d) == 0 {
			continue
		}
		agg = Merge(agg, d)
	}
	return Normalize(agg)
}
