// Package catalog содержит справочники завода: модели/коды продуктов,
// коды отказов, зоны ответственности поставщиков, административные
// «occurrência»-коды, таксономию причин и статическую таблицу FMEA.
package catalog

// ModelEntry — запись справочника моделей и кодов продуктов.
type ModelEntry struct {
	ProductCode string `json:"product_code"`
	Model       string `json:"model"`
	Category    string `json:"category"`
}

// FailureEntry — запись справочника кодов отказов.
type FailureEntry struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ResponsibilityEntry — запись справочника ответственности поставщиков.
type ResponsibilityEntry struct {
	SupplierCode   string `json:"supplier_code"`
	Classification string `json:"classification"`
	Responsibility string `json:"responsibility"`
}

// TaxonomyEntry — соответствие «анализ отказа -> группа причин».
type TaxonomyEntry struct {
	Analysis string `json:"analysis"`
	Group    string `json:"group"`
}

// FmeaEntry — строка статической таблицы FMEA.
// Severity и Detection используются как есть; Occurrence из таблицы
// при динамическом расчете NPR игнорируется (см. diagnostics).
type FmeaEntry struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Severity    int    `json:"severity"`
	Occurrence  int    `json:"occurrence"`
	Detection   int    `json:"detection"`
	NPR         int    `json:"npr"`
}

// Bundle — снимок всех справочников на время запроса.
// После загрузки трактуется как неизменяемый.
type Bundle struct {
	Models           []ModelEntry
	Failures         []FailureEntry
	Responsibilities []ResponsibilityEntry

	// ExclusionCodes — нормализованные коды поставщиков, чьи записи
	// являются административными occurrência и исключаются из PPM
	ExclusionCodes map[string]struct{}

	Taxonomy []TaxonomyEntry
	Fmea     []FmeaEntry
}

// IsExcludedSupplier сообщает, входит ли нормализованный код поставщика
// в каталог исключений из индексов.
func (b *Bundle) IsExcludedSupplier(normalizedCode string) bool {
	if b == nil || normalizedCode == "" {
		return false
	}
	_, ok := b.ExclusionCodes[normalizedCode]
	return ok
}

// TaxonomyMap строит отображение нормализованного анализа в группу причин.
func (b *Bundle) TaxonomyMap() map[string]string {
	m := make(map[string]string, len(b.Taxonomy))
	for _, t := range b.Taxonomy {
		if t.Analysis != "" {
			m[t.Analysis] = t.Group
		}
	}
	return m
}
