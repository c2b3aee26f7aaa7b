package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenderanalyzer/schema"
)

func TestCollectWorkItemsDedup(t *testing.T) {
	record := schema.Record{
		"technical": schema.Record{
			"works": schema.Record{
				"works_list": []any{
					schema.Record{"name": "Бетонные работы", "volume": "100", "unit": "м3"},
					schema.Record{"name": "Бетонные работы", "volume": "50", "unit": "м3"},
				},
			},
		},
	}

	items := CollectWorkItems(record)
	require.Len(t, items, 1)
	assert.Equal(t, "Бетонные работы", items[0].Name)
	assert.Equal(t, 150.0, items[0].Volume)
	assert.Equal(t, "м3", items[0].Unit)
}

func TestCollectWorkItemsAllSources(t *testing.T) {
	record := schema.Record{
		"goods": schema.Record{
			"items": []any{
				schema.Record{"name": "Сваи винтовые", "quantity": "150", "unit": "шт"},
			},
		},
		"technical": schema.Record{
			"works": schema.Record{
				"works_list": []any{
					schema.Record{"name": "Монтаж свай", "volume": "150", "unit": "шт"},
				},
				"items": []any{
					schema.Record{"name": "Демонтаж", "volume": "10", "unit": "м2"},
				},
			},
			"items": []any{
				schema.Record{"name": "Вывоз грунта", "volume": "5", "unit": "т"},
			},
		},
		"works": []any{
			schema.Record{"name": "Разметка участка", "unit": "шт"},
		},
	}

	items := CollectWorkItems(record)
	require.Len(t, items, 5)

	byName := map[string]WorkItem{}
	for _, it := range items {
		byName[it.Name] = it
	}

	assert.Equal(t, 150.0, byName["Сваи винтовые"].Volume)
	assert.Equal(t, 10.0, byName["Демонтаж"].Volume)
	// объем не задан — по умолчанию 1.0
	assert.Equal(t, 1.0, byName["Разметка участка"].Volume)
}

func TestCollectWorkItemsFiltersJunk(t *testing.T) {
	record := schema.Record{
		"goods": schema.Record{
			"items": []any{
				schema.Record{"name": "ab", "quantity": "5"},    // слишком короткое имя
				schema.Record{"name": "", "quantity": "5"},      // пустое имя
				"не словарь",                                    // не та форма
				schema.Record{"name": "Сваи", "quantity": "xx"}, // объем не парсится -> 1.0
			},
		},
	}

	items := CollectWorkItems(record)
	require.Len(t, items, 1)
	assert.Equal(t, "Сваи", items[0].Name)
	assert.Equal(t, 1.0, items[0].Volume)
	assert.Equal(t, "шт", items[0].Unit)
}

func TestParseVolume(t *testing.T) {
	tests := []struct {
		in   any
		want float64
	}{
		{"100", 100},
		{"12,5", 12.5},
		{"1 500", 1500},
		{100.0, 100},
		{nil, 1.0},
		{"мусор", 1.0},
		{"-5", 1.0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseVolume(tt.in), "input: %v", tt.in)
	}
}
