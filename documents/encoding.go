// Package documents читает тендерные документы поддерживаемых форматов
// в плоский текст и классифицирует их по типу. Любая ошибка чтения дает
// пустую строку: нечитаемый файл просто пропускается выше по конвейеру.
package documents

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// decodeText приводит байты файла к UTF-8. Русские документы нередко
// сохранены в windows-1251; если содержимое не валидный UTF-8 —
// перекодируем из cp1251.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.Windows1251.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}
