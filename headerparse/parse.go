package headerparse

import (
	"log/slog"
	"strings"

	"tenderanalyzer/schema"
)

// FallbackReason метка в analysis_meta, по которой нижние стадии понимают,
// что результат получен без участия LLM.
const FallbackReason = "base_fallback"

// pileKeywords товары, к которым в первую очередь привязывается количество
// из правила "Количество, шт".
var pileKeywords = []string{"сваи", "свая", "свай"}

// Parse разбирает текст тендерной документации без LLM и возвращает
// частичную запись по схеме. Никогда не возвращает ошибку: худший
// случай — запись с пустыми полями.
func Parse(text string) schema.Record {
	logger := slog.Default().With("component", "headerparse")

	headerLines := splitToLines(text, 350)
	workLines := splitToLines(text, 2000)

	h := extractHeader(headerLines)
	candidates := extractWorkCandidates(workLines)
	hint := extractQuantityHint(workLines)

	logger.Info("Эвристический разбор завершен",
		"lines", len(headerLines),
		"work_candidates", len(candidates),
		"quantity_hint", hint.Quantity)

	result := schema.Template()
	result["title"] = h.Title
	result["description"] = h.Description

	customer := result["customer"].(schema.Record)
	customer["name"] = h.Customer
	customer["inn"] = h.CustomerINN
	customer["kpp"] = h.CustomerKPP
	customer["ogrn"] = h.CustomerOGRN
	customer["address"] = h.CustomerAddress
	customer["contacts"] = h.CustomerContacts

	object := result["object"].(schema.Record)
	object["name"] = h.ObjectName
	object["address"] = h.ObjectAddress

	var works []any
	var goods []any
	for _, c := range candidates {
		works = append(works, schema.WorkItemEntry(c.Name, c.Volume, c.Unit))
		goods = append(goods, schema.GoodsItemEntry(c.Name, c.Volume, c.Unit))
	}

	goods = attachQuantityHint(goods, hint, h.Title)

	result["technical"].(schema.Record)["works"].(schema.Record)["works_list"] = works
	result["goods"].(schema.Record)["items"] = goods

	meta := result["analysis_meta"].(schema.Record)
	meta["fallback_used"] = true
	meta["fallback_reason"] = FallbackReason

	return result
}

// attachQuantityHint привязывает найденное количество к наиболее подходящей
// товарной позиции: сначала к позиции с целевым ключевым словом в названии,
// иначе к последней распознанной; если позиций нет вовсе — создает новую
// по заголовку документа.
func attachQuantityHint(goods []any, hint quantityHint, title string) []any {
	if hint.Quantity == "" {
		return goods
	}

	var target schema.Record
	for _, g := range goods {
		item, ok := g.(schema.Record)
		if !ok {
			continue
		}
		name, _ := item["name"].(string)
		low := strings.ToLower(name)
		for _, kw := range pileKeywords {
			if strings.Contains(low, kw) {
				target = item
				break
			}
		}
		if target != nil {
			break
		}
	}

	if target == nil && len(goods) > 0 {
		if last, ok := goods[len(goods)-1].(schema.Record); ok {
			target = last
		}
	}

	if target == nil {
		name := strings.TrimSpace(title)
		if name == "" {
			name = "Товар"
		}
		entry := schema.GoodsItemEntry(limitLen(name, 260), hint.Quantity, hint.Unit)
		return append(goods, entry)
	}

	target["quantity"] = hint.Quantity
	if unit, _ := target["unit"].(string); unit == "" {
		if hint.Unit != "" {
			target["unit"] = hint.Unit
		} else {
			target["unit"] = "шт"
		}
	}
	return goods
}
