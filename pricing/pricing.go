// Package pricing оценивает рыночную цену за единицу работы через LLM,
// с кэшем на время жизни сервиса и многоступенчатым разбором ответа,
// который восстанавливает числовой диапазон даже из сломанного вывода.
package pricing

// Quote результат поиска цены для вида работ. После создания не меняется:
// повторный запрос с тем же ключом получает копию из кэша.
type Quote struct {
	OK         bool    `json:"ok"`
	Source     string  `json:"source"` // cache | llm | llm_error | none
	PriceMin   float64 `json:"price_min"`
	PriceMax   float64 `json:"price_max"`
	Unit       string  `json:"unit"`
	Currency   string  `json:"currency"`
	Confidence float64 `json:"confidence"`
	Comment    string  `json:"comment"`
}

// Limits числовые пороги ценового разбора.
type Limits struct {
	// Ceiling максимально разумная цена за единицу (руб.); всё выше
	// считается ошибкой модели и отбрасывается.
	Ceiling float64
	// Floor нижняя граница: числа меньше похожи на confidence или проценты.
	Floor float64
	// NarrowRatio порог max/min, ниже которого диапазон считается узким.
	NarrowRatio float64
	// MinSpreadShare минимальный разброс как доля от середины диапазона.
	MinSpreadShare float64
}

// DefaultLimits пороги по умолчанию: потолок 10 млн руб., пол 10 руб.,
// узкий диапазон при max/min < 1.5, расширение до ±30% от середины.
func DefaultLimits() Limits {
	return Limits{
		Ceiling:        10_000_000,
		Floor:          10,
		NarrowRatio:    1.5,
		MinSpreadShare: 0.3,
	}
}
