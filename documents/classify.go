package documents

import "strings"

// Типы тендерных документов.
const (
	TypeTechnicalSpecification = "technical_specification"
	TypeContractProject        = "contract_project"
	TypeEstimate               = "estimate"
	TypeSupply                 = "supply"
	TypeOther                  = "other"
)

// classifyRule правило "маркер в тексте → тип документа". Правила
// проверяются по порядку, побеждает первое совпадение.
type classifyRule struct {
	markers []string
	docType string
}

var classifyRules = []classifyRule{
	{[]string{"техническое задание"}, TypeTechnicalSpecification},
	{[]string{"проект контракта", "проект договора"}, TypeContractProject},
	{[]string{"локальная смета", "сметный расчет", "сметный расчёт", "смета"}, TypeEstimate},
	{[]string{"спецификация поставки", "товарная накладная", "график поставки"}, TypeSupply},
}

// Classify определяет тип документа по содержимому. Текст без известных
// маркеров получает тип "other".
func Classify(content string) string {
	low := strings.ToLower(content)
	for _, rule := range classifyRules {
		for _, m := range rule.markers {
			if strings.Contains(low, m) {
				return rule.docType
			}
		}
	}
	return TypeOther
}
