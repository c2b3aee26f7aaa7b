package extraction

import (
	"regexp"
	"strings"

	"tenderanalyzer/schema"
)

const maxFieldLen = 260

var (
	reAfterNa         = regexp.MustCompile(`(?i)на\s+(.+)`)
	reLeadingNumber   = regexp.MustCompile(`^[\d.)\s]+`)
	rePhonePattern    = regexp.MustCompile(`\+7\d{10}|\b8\d{10}\b`)
	reSpacesCollapsed = regexp.MustCompile(`\s{2,}`)
)

// Reconcile сводит запись, собранную из LLM-ответов (или из fallback),
// с резервной записью эвристического парсера: LLM-значение в приоритете,
// пустоты добираются из fallback, контакты проходят проверку на
// правдоподобие, длинные поля обрезаются.
//
// Стадия детерминирована и тотальна: всегда возвращает полностью
// заполненную по схеме запись.
func Reconcile(record, fallback schema.Record) schema.Record {
	record = schema.Normalize(record)
	fallback = schema.Normalize(fallback)

	// --- title ---
	record["title"] = pickBeautified(
		stringAt(record, "title"),
		stringAt(fallback, "title"))

	// --- object.name ---
	obj := record["object"].(map[string]any)
	fbObj := fallback["object"].(map[string]any)
	obj["name"] = pickBeautified(
		stringOf(obj["name"]),
		stringOf(fbObj["name"]))

	// --- customer: дозаполнение из fallback, если LLM поле не заполнил ---
	cust := record["customer"].(map[string]any)
	fbCust := fallback["customer"].(map[string]any)

	for _, key := range []string{"name", "inn", "kpp", "ogrn", "address"} {
		if stringOf(cust[key]) == "" {
			cust[key] = stringOf(fbCust[key])
		}
	}

	// --- contacts: только если значение реально похоже на контакты ---
	llmContacts := stringOf(cust["contacts"])
	fbContacts := stringOf(fbCust["contacts"])
	switch {
	case LooksLikeContacts(llmContacts):
		cust["contacts"] = llmContacts
	case LooksLikeContacts(fbContacts):
		cust["contacts"] = fbContacts
	default:
		cust["contacts"] = ""
	}

	// --- обрезка до разумной длины ---
	record["description"] = trimField(stringAt(record, "description"))
	cust["name"] = trimField(stringOf(cust["name"]))
	cust["address"] = trimField(stringOf(cust["address"]))
	cust["contacts"] = trimField(stringOf(cust["contacts"]))
	obj["address"] = trimField(stringOf(obj["address"]))

	return record
}

// pickBeautified берет первое непустое значение и приводит его
// к человеческому виду.
func pickBeautified(primary, secondary string) string {
	if strings.TrimSpace(primary) != "" {
		return BeautifyTitle(primary)
	}
	if strings.TrimSpace(secondary) != "" {
		return BeautifyTitle(secondary)
	}
	return ""
}

// BeautifyTitle делает человеческое название тендера:
// "Техническое задание на поставку..." -> "Поставка...", сносит ведущую
// нумерацию, ограничивает длину.
func BeautifyTitle(title string) string {
	t := strings.TrimSpace(title)
	if t == "" {
		return ""
	}

	low := strings.ToLower(t)
	if strings.HasPrefix(low, "техническое задание") {
		// "Техническое задание на поставку ..." -> "на поставку ...",
		// дальше сработает переписывание первого слова
		if m := reAfterNa.FindStringSubmatch(t); m != nil {
			t = "на " + strings.TrimSpace(m[1])
			low = strings.ToLower(t)
		}
	}

	if strings.HasPrefix(low, "на ") {
		rest := strings.TrimSpace(t[len("на "):])
		rlow := strings.ToLower(rest)
		switch {
		case strings.HasPrefix(rlow, "поставк"):
			t = "Поставка" + dropFirstWord(rest)
		case strings.HasPrefix(rlow, "оказан"):
			t = "Оказание" + dropFirstWord(rest)
		case strings.HasPrefix(rlow, "выполн"):
			t = "Выполнение" + dropFirstWord(rest)
		default:
			t = capitalizeFirst(rest)
		}
	}

	t = strings.TrimSpace(reLeadingNumber.ReplaceAllString(t, ""))
	t = reSpacesCollapsed.ReplaceAllString(t, " ")

	runes := []rune(t)
	if len(runes) > 200 {
		t = string(runes[:200])
	}
	return t
}

// LooksLikeContacts проверяет, похожа ли строка на контактные данные:
// телефонная/почтовая лексика, символ @ или российский номер телефона.
// Произвольная проза заказчика не должна попадать в поле контактов.
func LooksLikeContacts(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	low := strings.ToLower(s)
	for _, tok := range []string{"тел", "phone", "факс", "e-mail", "email"} {
		if strings.Contains(low, tok) {
			return true
		}
	}
	if strings.Contains(low, "@") {
		return true
	}
	return rePhonePattern.MatchString(low)
}

func trimField(v string) string {
	v = strings.TrimSpace(v)
	runes := []rune(v)
	if len(runes) <= maxFieldLen {
		return v
	}
	return strings.TrimRight(string(runes[:maxFieldLen-3]), " ") + "..."
}

// dropFirstWord возвращает хвост строки после первого слова,
// с ведущим пробелом, либо пустую строку.
func dropFirstWord(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return " " + strings.TrimSpace(s[i+1:])
	}
	return ""
}

func capitalizeFirst(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}

func stringAt(r schema.Record, key string) string {
	return stringOf(r[key])
}

func stringOf(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
