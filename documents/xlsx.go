package documents

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// xlsxToText вычитывает все листы книги в текст: строка таблицы — строка
// текста, ячейки через табуляцию. Пустые строки пропускаются.
func xlsxToText(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, "\t"))
			if line == "" {
				continue
			}
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}

	return strings.TrimSpace(sb.String()), nil
}
