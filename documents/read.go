package documents

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Read читает документ в плоский текст. Поддерживаются .txt, .csv,
// .html/.htm, .xml и .xlsx. Неподдерживаемое расширение или любая ошибка
// чтения дают пустую строку — документ выше по конвейеру считается
// пустым и пропускается.
func Read(path string) string {
	logger := slog.Default().With("component", "documents")

	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".txt", ".csv":
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Не удалось прочитать файл", "path", path, "error", err)
			return ""
		}
		return strings.TrimSpace(decodeText(data))

	case ".html", ".htm", ".xml":
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Не удалось прочитать файл", "path", path, "error", err)
			return ""
		}
		return htmlToText(decodeText(data))

	case ".xlsx":
		text, err := xlsxToText(path)
		if err != nil {
			logger.Warn("Не удалось прочитать книгу Excel", "path", path, "error", err)
			return ""
		}
		return text

	default:
		logger.Warn("Формат файла не поддерживается", "path", path, "ext", ext)
		return ""
	}
}
