// Package headerparse извлекает шапку тендера и кандидатов работ из сырого
// текста документа одними эвристиками и регулярными выражениями, без LLM.
// Парсер тотален: на любом входе возвращает запись по схеме, возможно
// с пустыми полями.
package headerparse

import (
	"regexp"
	"strings"
)

// header распознанная шапка тендера.
type header struct {
	Title            string
	Description      string
	Customer         string
	CustomerINN      string
	CustomerKPP      string
	CustomerOGRN     string
	CustomerAddress  string
	CustomerContacts string
	ObjectName       string
	ObjectAddress    string
}

// lineRule правило "предикат → значение" для одной строки. Правила
// применяются к строкам сверху вниз, побеждает первое совпадение.
type lineRule struct {
	name    string
	extract func(line string) (string, bool)
}

// applyRules прогоняет упорядоченный набор правил по строкам:
// для каждого правила по порядку ищется первая подходящая строка.
func applyRules(lines []string, maxLines int, rules []lineRule) string {
	if maxLines > len(lines) {
		maxLines = len(lines)
	}
	for _, rule := range rules {
		for _, line := range lines[:maxLines] {
			if v, ok := rule.extract(line); ok {
				return v
			}
		}
	}
	return ""
}

var (
	reCustomerLabel     = regexp.MustCompile(`(?i)заказчик[а-я]*\s*[:\-–]\s*([^.;\n]+)`)
	reCustomerAddrLabel = regexp.MustCompile(`(?i)(?:адрес заказчика|место нахождения заказчика)\s*[:\-–]\s*(.+)`)
	reINN           = regexp.MustCompile(`\b\d{10,12}\b`)
	reKPP           = regexp.MustCompile(`\b\d{9}\b`)
	reOGRN          = regexp.MustCompile(`\b\d{13}\b`)
	reObjectLabel   = regexp.MustCompile(`(?i)объект[а-я]*\s*[:\-–]\s*(.+)`)
	reAddressLabel  = regexp.MustCompile(`(?i)(?:адрес|место постав[а-я]+|место выполнения работ)[^:]*[:\-–]\s*(.+)`)
	rePhoneRu       = regexp.MustCompile(`\+7\d{10}|\b8\d{10}\b`)

	// Маркеры названий организаций
	reOrgHint = regexp.MustCompile(`(?i)(?:^|[^а-яё])(ооо|оао|пао|зао|ао|ип|муп|гуп|администраци[яи]|министерств[оа]|комитет|департамент)(?:[^а-яё]|$)`)
)

// titleKeywords закрытый набор закупочных ключевых слов для поиска заголовка.
var titleKeywords = []string{
	"поставка",
	"поставку",
	"оказание услуг",
	"выполнение работ",
	"строитель",
	"ремонт",
}

// titleRules упорядоченные правила выбора заголовка.
var titleRules = []lineRule{
	{
		name: "procurement_keyword",
		extract: func(line string) (string, bool) {
			low := strings.ToLower(line)
			for _, w := range titleKeywords {
				if strings.Contains(low, w) {
					return line, true
				}
			}
			return "", false
		},
	},
	{
		name: "first_line",
		extract: func(line string) (string, bool) {
			return line, line != ""
		},
	},
}

// contactHints лексика, по которой строка распознается как контактная.
var contactHints = []string{"тел", "телефон", "факс", "e-mail", "email", "почт"}

func extractHeader(lines []string) header {
	var h header

	h.Title = strings.TrimRight(strings.TrimSpace(applyRules(lines, 20, titleRules)), " .")
	h.Description = extractDescription(lines)

	for _, line := range lines {
		low := strings.ToLower(line)

		if h.CustomerAddress == "" {
			if m := reCustomerAddrLabel.FindStringSubmatch(line); m != nil {
				h.CustomerAddress = limitLen(strings.TrimSpace(m[1]), 260)
			}
		}

		if h.Customer == "" && !strings.Contains(low, "адрес") {
			if m := reCustomerLabel.FindStringSubmatch(line); m != nil {
				candidate := strings.TrimSpace(m[1])
				if looksLikeRealCustomer(candidate) {
					h.Customer = limitLen(candidate, 260)
				}
			}
		}

		if h.CustomerINN == "" && strings.Contains(low, "инн") {
			if num := reINN.FindString(line); num != "" {
				h.CustomerINN = num
			}
		}
		if h.CustomerKPP == "" && strings.Contains(low, "кпп") {
			if num := reKPP.FindString(line); num != "" {
				h.CustomerKPP = num
			}
		}
		if h.CustomerOGRN == "" && strings.Contains(low, "огрн") {
			if num := reOGRN.FindString(line); num != "" {
				h.CustomerOGRN = num
			}
		}

		if h.CustomerContacts == "" && looksLikeContactLine(low) {
			h.CustomerContacts = limitLen(line, 260)
		}

		if h.ObjectName == "" {
			if m := reObjectLabel.FindStringSubmatch(line); m != nil {
				h.ObjectName = limitLen(strings.TrimSpace(m[1]), 260)
			}
		}
		if h.ObjectAddress == "" {
			if m := reAddressLabel.FindStringSubmatch(line); m != nil {
				h.ObjectAddress = limitLen(strings.TrimSpace(m[1]), 260)
			}
		}
	}

	// Заказчик без явной метки: ищем хоть какое-то юрлицо в верхней части.
	if h.Customer == "" {
		h.Customer = findOrgLikeLine(lines)
	}

	// Объект не нашли — берем более предметное из имеющегося.
	if h.ObjectName == "" {
		if h.Description != "" {
			h.ObjectName = h.Description
		} else {
			h.ObjectName = h.Title
		}
	}

	h.Title = sanitizeHeaderValue(h.Title)
	h.Description = sanitizeHeaderValue(h.Description)
	h.Customer = sanitizeHeaderValue(h.Customer)
	h.CustomerAddress = sanitizeHeaderValue(h.CustomerAddress)
	h.CustomerContacts = sanitizeHeaderValue(h.CustomerContacts)
	h.ObjectName = sanitizeHeaderValue(h.ObjectName)
	h.ObjectAddress = sanitizeHeaderValue(h.ObjectAddress)

	return h
}

var reSentenceSplit = regexp.MustCompile(`[.!?]+\s+`)

// extractDescription собирает краткое описание: первые 2–3 предложения
// верхнего блока текста, иначе ограниченный префикс.
func extractDescription(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	upper := lines
	if len(upper) > 50 {
		upper = upper[:50]
	}
	clean := reMultiSpace.ReplaceAllString(strings.Join(upper, " "), " ")
	sentences := reSentenceSplit.Split(clean, -1)
	if len(sentences) >= 3 {
		return strings.Join(sentences[:3], ". ")
	}
	return limitLen(clean, 600)
}

// looksLikeRealCustomer отличает настоящее название организации от текста
// обязательств ("Заказчик в течение 2 рабочих дней сообщает...").
func looksLikeRealCustomer(candidate string) bool {
	s := strings.TrimSpace(candidate)
	if s == "" {
		return false
	}
	low := strings.ToLower(s)

	if reOrgHint.MatchString(low) {
		return true
	}

	badPhrases := []string{
		"в течение",
		"рабочих дней",
		"поставщик обязан",
		"обязан уведомить",
		"обязан произвести",
		"вправе",
		"сообщает",
		"уведомить",
		"в письменной форме",
	}
	for _, bp := range badPhrases {
		if strings.Contains(low, bp) {
			return false
		}
	}

	return len([]rune(s)) <= 200
}

func looksLikeContactLine(low string) bool {
	for _, hint := range contactHints {
		if strings.Contains(low, hint) {
			return true
		}
	}
	return strings.Contains(low, "@") || rePhoneRu.MatchString(low)
}

// findOrgLikeLine ищет строку, похожую на название организации,
// даже если нет явной метки "Заказчик:".
func findOrgLikeLine(lines []string) string {
	max := len(lines)
	if max > 160 {
		max = 160
	}
	for _, line := range lines[:max] {
		n := len([]rune(line))
		if n < 6 || n > 220 {
			continue
		}
		low := strings.ToLower(line)
		if looksLikeContactLine(low) {
			continue
		}
		if reOrgHint.MatchString(low) {
			return limitLen(line, 260)
		}
	}
	return ""
}
