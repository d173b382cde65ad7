// Package feed определяет сырые строки производственных выгрузок и
// доступ к их полям по спискам альтернативных имен колонок.
//
// Источники данных заполняют колонки неконсистентно (MODELO/MODEL,
// QTY_GERAL/QTY/QUANTIDADE и т.д.), поэтому прямое обращение по одному
// жестко зашитому ключу запрещено — только через алиасы.
package feed

import (
	"strconv"
	"strings"
	"time"

	"sigmaq/normalization"
)

// RawRow — нетипизированная строка планшета (ключ колонки -> значение).
type RawRow map[string]any

// Списки алиасов определены один раз, рядом с моделью данных.
// Порядок важен: берется первое присутствующее поле.
var (
	// FieldDate — дата записи (производство или дефект)
	FieldDate = []string{"DATA", "DATE", "DATA_PRODUCAO", "DATA_DEFEITO", "D"}

	// FieldProducedQty — объем производства
	FieldProducedQty = []string{"QTY_GERAL", "QTY", "QTD", "QUANTIDADE", "QTY_TOTAL", "PRODUCAO"}

	// FieldDefectQty — количество дефектов в строке
	FieldDefectQty = []string{"QUANTIDADE", "QTD", "QTY"}

	// FieldModel — модель продукта
	FieldModel = []string{"MODELO", "MODEL", "MODELOS", "MODELO_PRODUTO", "MODEL_NAME"}

	// FieldCategory — категория продукта
	FieldCategory = []string{"CATEGORIA", "CATEGORY", "CAT"}

	// FieldProductCode — код продукта
	FieldProductCode = []string{"CÓDIGO", "CODIGO", "ID", "ITEM_CODE"}

	// FieldFailureCode — код отказа
	FieldFailureCode = []string{"CÓDIGO DA FALHA", "CODIGO DA FALHA", "CODIGO_FALHA", "CÓDIGO_FALHA"}

	// FieldFailureDescription — описание отказа
	FieldFailureDescription = []string{"DESCRIÇÃO DA FALHA", "DESCRICAO DA FALHA", "DESCRIÇÃO", "DESCRICAO", "DESCRICAO_DA_FALHA"}

	// FieldSupplierCode — код поставщика (основа исключения «occurrência»)
	FieldSupplierCode = []string{"CÓDIGO DO FORNECEDOR", "CODIGO DO FORNECEDOR", "CODIGO_FORNECEDOR", "FORNECEDOR"}

	// FieldResponsibility — зона ответственности
	FieldResponsibility = []string{"RESPONSABILIDADE", "RESPONSABILIDADE DO FORNECEDOR"}

	// FieldShift — производственная смена
	FieldShift = []string{"TURNO", "SHIFT"}

	// FieldAnalysis — результат анализа отказа (ключ таксономии причин)
	FieldAnalysis = []string{"ANÁLISE", "ANALISE", "ANALYSIS"}
)

// Get возвращает первое присутствующее значение по списку алиасов.
func (r RawRow) Get(aliases []string) (any, bool) {
	if r == nil {
		return nil, false
	}
	for _, key := range aliases {
		if v, ok := r[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// String возвращает строковое представление поля без нормализации.
func (r RawRow) String(aliases []string) string {
	v, ok := r.Get(aliases)
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	case time.Time:
		return s.Format("2006-01-02")
	default:
		return ""
	}
}

// Normalized возвращает поле, приведенное к каноническому ключу.
func (r RawRow) Normalized(aliases []string) string {
	return normalization.NormalizeText(r.String(aliases))
}

// Number возвращает числовое значение поля. Некорректное или
// отсутствующее значение деградирует до 0 — одна грязная строка не
// должна валить весь батч.
func (r RawRow) Number(aliases []string) float64 {
	v, ok := r.Get(aliases)
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(n), ",", "."), 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

// Date возвращает каноническую дату поля (см. normalization.ParseFlexibleDate).
func (r RawRow) Date(aliases []string) (time.Time, bool) {
	v, ok := r.Get(aliases)
	if !ok {
		return time.Time{}, false
	}
	return normalization.ParseFlexibleDate(v)
}
