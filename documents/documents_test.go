package documents

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"техзадание", "ТЕХНИЧЕСКОЕ ЗАДАНИЕ на поставку свай", TypeTechnicalSpecification},
		{"проект контракта", "Проект контракта на выполнение работ", TypeContractProject},
		{"проект договора", "проект договора поставки", TypeContractProject},
		{"смета", "Локальная смета № 02-01", TypeEstimate},
		{"поставка", "График поставки товара", TypeSupply},
		{"прочее", "просто какой-то текст", TypeOther},
		{"пусто", "", TypeOther},
		// техзадание побеждает смету: правила упорядочены
		{"приоритет правил", "Техническое задание. Приложение: смета.", TypeTechnicalSpecification},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.content))
		})
	}
}

func TestDecodeTextUTF8(t *testing.T) {
	assert.Equal(t, "Привет", decodeText([]byte("Привет")))
}

func TestDecodeTextCP1251(t *testing.T) {
	// "Привет" в windows-1251
	raw := []byte{0xCF, 0xF0, 0xE8, 0xE2, 0xE5, 0xF2}
	assert.Equal(t, "Привет", decodeText(raw))
}

func TestReadTxt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("Техническое задание\nна поставку свай"), 0o644))

	text := Read(path)
	assert.Contains(t, text, "поставку свай")
}

func TestReadHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.html")
	html := `<html><head><style>body{color:red}</style></head>` +
		`<body><h1>Заказчик: ООО Ромашка</h1><script>alert(1)</script><p>ИНН 1234567890</p></body></html>`
	require.NoError(t, os.WriteFile(path, []byte(html), 0o644))

	text := Read(path)
	assert.Contains(t, text, "ООО Ромашка")
	assert.Contains(t, text, "1234567890")
	assert.NotContains(t, text, "alert")
	assert.NotContains(t, text, "color:red")
}

func TestReadXlsx(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estimate.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Наименование работ"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Объем"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Бетонные работы"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "100"))
	require.NoError(t, f.SaveAs(path))

	text := Read(path)
	assert.Contains(t, text, "Бетонные работы")
	assert.Contains(t, text, "100")
}

func TestReadFailuresGiveEmptyString(t *testing.T) {
	assert.Equal(t, "", Read("/nonexistent/file.txt"))
	assert.Equal(t, "", Read("document.pdf")) // формат не поддерживается

	// битый xlsx
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("не zip"), 0o644))
	assert.Equal(t, "", Read(path))
}
