package extraction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"tenderanalyzer/schema"
)

func TestBeautifyTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"техзадание на поставку",
			"Техническое задание на поставку свай винтовых",
			"Поставка свай винтовых",
		},
		{
			"на оказание услуг",
			"на оказание услуг по уборке",
			"Оказание услуг по уборке",
		},
		{
			"на выполнение работ",
			"на выполнение работ по ремонту кровли",
			"Выполнение работ по ремонту кровли",
		},
		{
			"прочее после на",
			"на строительство моста",
			"Строительство моста",
		},
		{
			"ведущая нумерация",
			"2.2. Поставка оборудования",
			"Поставка оборудования",
		},
		{
			"пустая строка",
			"",
			"",
		},
		{
			"обычный заголовок не трогаем",
			"Ремонт дорожного покрытия",
			"Ремонт дорожного покрытия",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BeautifyTitle(tt.in))
		})
	}
}

func TestBeautifyTitleLengthCap(t *testing.T) {
	long := strings.Repeat("слово ", 100)
	out := BeautifyTitle(long)
	assert.LessOrEqual(t, len([]rune(out)), 200)
}

func TestLooksLikeContacts(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"тел. +7 900 000-00-00", true},
		{"e-mail: info@example.ru", true},
		{"zakupki@gov.ru", true},
		{"+79001234567", true},
		{"8 900 123 45 67", false}, // пробелы рвут номер, но нет лексики
		{"Поставщик обязан уведомить Заказчика", false},
		{"", false},
		{"Иванов Иван Иванович", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LooksLikeContacts(tt.in), "input: %q", tt.in)
	}
}

func TestReconcileContactsGuard(t *testing.T) {
	record := schema.Record{
		"customer": schema.Record{"contacts": "Поставщик обязан уведомить Заказчика"},
	}
	fallback := schema.Record{}

	out := Reconcile(record, fallback)
	cust := out["customer"].(map[string]any)
	assert.Equal(t, "", cust["contacts"])
}

func TestReconcileContactsFromFallback(t *testing.T) {
	record := schema.Record{
		"customer": schema.Record{"contacts": "произвольная проза"},
	}
	fallback := schema.Record{
		"customer": schema.Record{"contacts": "тел. +7 900 000-00-00"},
	}

	out := Reconcile(record, fallback)
	cust := out["customer"].(map[string]any)
	assert.Equal(t, "тел. +7 900 000-00-00", cust["contacts"])
}

func TestReconcileLLMFirstFallbackSecond(t *testing.T) {
	record := schema.Record{
		"title":    "Техническое задание на поставку свай",
		"customer": schema.Record{"name": "", "inn": "1234567890"},
	}
	fallback := schema.Record{
		"title":    "другой заголовок",
		"customer": schema.Record{"name": "ООО Ромашка", "address": "г. Казань"},
	}

	out := Reconcile(record, fallback)

	assert.Equal(t, "Поставка свай", out["title"])

	cust := out["customer"].(map[string]any)
	assert.Equal(t, "ООО Ромашка", cust["name"])
	assert.Equal(t, "1234567890", cust["inn"])
	assert.Equal(t, "г. Казань", cust["address"])
}

func TestReconcileTrimsLongFields(t *testing.T) {
	long := strings.Repeat("а", 500)
	record := schema.Record{
		"description": long,
		"customer":    schema.Record{"name": long},
	}

	out := Reconcile(record, schema.Record{})

	desc := out["description"].(string)
	assert.Equal(t, 260, len([]rune(desc)))
	assert.True(t, strings.HasSuffix(desc, "..."))

	name := out["customer"].(map[string]any)["name"].(string)
	assert.Equal(t, 260, len([]rune(name)))
}

func TestReconcileTotalOnEmptyInput(t *testing.T) {
	out := Reconcile(schema.Record{}, schema.Record{})
	assert.Equal(t, "", out["title"])
	assert.Equal(t, "", out["customer"].(map[string]any)["contacts"])
}
