package headerparse

import (
	"regexp"
	"strings"
)

// WorkCandidate кандидат работы или товарной позиции, извлеченный из строки
// вида "<наименование> <объем> <единица>".
type WorkCandidate struct {
	Name       string
	Volume     string
	Unit       string
	SourceLine string
}

// Закрытый словарь единиц измерения. Более длинные варианты идут первыми,
// чтобы "м" не перехватывал "м2" и "м³".
var reWorkLine = regexp.MustCompile(
	`(?i)(.+?)\s+(\d[\d\s.,]*)\s*(штук|шт\.?|м²|м2|м³|м3|пог\.\s?м\.?|п\.м\.?|тонн[аы]?|тн|кг|литр(?:ов|а)?|ед\.?|упак\.?|компл\.?|м|т|л)(?:[\s.,;:)]|$)`,
)

// Строки-шапки таблиц: такие строки пропускаются, чтобы заголовок колонки
// не превратился в строку работ.
var tableHeaderHints = []string{
	"наименование работ",
	"вид работ",
	"ед. изм",
	"объем",
	"объём",
	"кол-во",
	"количество",
}

var reLeadingNumbering = regexp.MustCompile(`^\s*\d+[.)]\s*`)

func isTableHeaderLine(low string) bool {
	for _, hint := range tableHeaderHints {
		if strings.Contains(low, hint) {
			return true
		}
	}
	return false
}

// extractWorkCandidates ищет по всем строкам кандидатов работ/товаров.
func extractWorkCandidates(lines []string) []WorkCandidate {
	var out []WorkCandidate
	for _, line := range lines {
		low := strings.ToLower(line)
		if isTableHeaderLine(low) {
			continue
		}
		if len([]rune(line)) < 5 {
			continue
		}

		clean := reLeadingNumbering.ReplaceAllString(line, "")
		m := reWorkLine.FindStringSubmatch(clean)
		if m == nil {
			continue
		}

		name := strings.TrimSpace(m[1])
		if len([]rune(name)) < 3 {
			continue
		}

		out = append(out, WorkCandidate{
			Name:       limitLen(name, 260),
			Volume:     strings.TrimSpace(m[2]),
			Unit:       strings.ToLower(strings.TrimSpace(m[3])),
			SourceLine: line,
		})
	}
	return out
}

var reSmallNumber = regexp.MustCompile(`\b\d{1,6}\b`)

// quantityHint результат правила "Количество, шт": количество, найденное
// по метке с ограниченным просмотром вперед.
type quantityHint struct {
	Quantity string
	Unit     string
}

// extractQuantityHint обрабатывает два варианта:
//   - число прямо в строке с меткой "Количество ... шт";
//   - метка "Количество, шт" как заголовок колонки, число в одной из
//     следующих строк (просмотр вперед ограничен 20 строками).
func extractQuantityHint(lines []string) quantityHint {
	for idx, line := range lines {
		low := strings.ToLower(line)
		if !strings.Contains(low, "количество") {
			continue
		}

		hasUnit := strings.Contains(low, "шт") || strings.Contains(low, "ед") || strings.Contains(low, "компл")
		if !hasUnit {
			continue
		}

		unit := ""
		if strings.Contains(low, "шт") {
			unit = "шт"
		}

		if nums := reSmallNumber.FindAllString(line, -1); len(nums) > 0 {
			return quantityHint{Quantity: nums[len(nums)-1], Unit: unit}
		}

		// метка без числа: ищем первое число в следующих строках
		end := idx + 20
		if end > len(lines) {
			end = len(lines)
		}
		for _, next := range lines[idx+1 : end] {
			if nums := reSmallNumber.FindAllString(next, -1); len(nums) > 0 {
				return quantityHint{Quantity: nums[len(nums)-1], Unit: unit}
			}
		}
		return quantityHint{}
	}
	return quantityHint{}
}
