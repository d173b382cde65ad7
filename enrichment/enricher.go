// Package enrichment выполняет сверку сырых строк дефектов с тремя
// независимыми справочниками (модели, коды отказов, ответственности)
// и помечает нерезолвящиеся поля.
package enrichment

import (
	"math"
	"strings"

	"sigmaq/catalog"
	"sigmaq/feed"
)

// Options — набор справочников, включенных для обогащения.
type Options struct {
	UseModels           bool `json:"use_models"`
	UseFailures         bool `json:"use_failures"`
	UseResponsibilities bool `json:"use_responsibilities"`
}

// Key — отпечаток набора флагов, ключ кэша обогащения.
func (o Options) Key() string {
	key := []byte{'0', '0', '0'}
	if o.UseModels {
		key[0] = '1'
	}
	if o.UseFailures {
		key[1] = '1'
	}
	if o.UseResponsibilities {
		key[2] = '1'
	}
	return string(key)
}

// Тексты проблем несопоставленных полей.
const (
	IssueModelNotFound          = "модель/код не найдены в справочнике"
	IssueFailureNotFound        = "код отказа не найден в справочнике"
	IssueResponsibilityNotFound = "ответственность не найдена в справочнике"
)

// EnrichedRecord — результат обогащения одной строки. Явная структура
// вместо расползающейся map: производные поля именованы и опциональны.
type EnrichedRecord struct {
	Row feed.RawRow `json:"row"`

	// Нормализованные ключевые поля строки (для дальнейших движков)
	Model        string `json:"model"`
	Category     string `json:"category"`
	ProductCode  string `json:"product_code"`
	FailureCode  string `json:"failure_code"`
	SupplierCode string `json:"supplier_code"`

	MatchedModel          *catalog.ModelEntry          `json:"matched_model,omitempty"`
	MatchedFailure        *catalog.FailureEntry        `json:"matched_failure,omitempty"`
	MatchedResponsibility *catalog.ResponsibilityEntry `json:"matched_responsibility,omitempty"`

	Issues     []string `json:"issues"`
	Confidence float64  `json:"confidence"`
}

// Enricher сверяет строки со снимком справочников. Снимок считается
// неизменяемым на все время жизни Enricher.
type Enricher struct {
	bundle *catalog.Bundle
}

// NewEnricher создает обогатитель поверх снимка справочников.
func NewEnricher(bundle *catalog.Bundle) *Enricher {
	return &Enricher{bundle: bundle}
}

// Enrich сопоставляет строку с каждым включенным справочником независимо.
// Внутри обогащения используются только точные совпадения: отсутствие
// фиксируется как issue и нулевой вклад в confidence. Нечеткие подсказки —
// отдельная забота вызывающего кода (см. suggestions.go), на score они
// не влияют.
//
// Чистая функция: не мутирует ни строку, ни справочники.
func (e *Enricher) Enrich(row feed.RawRow, opts Options) EnrichedRecord {
	rec := EnrichedRecord{
		Row:          row,
		Model:        row.Normalized(feed.FieldModel),
		Category:     row.Normalized(feed.FieldCategory),
		ProductCode:  row.Normalized(feed.FieldProductCode),
		FailureCode:  row.Normalized(feed.FieldFailureCode),
		SupplierCode: row.Normalized(feed.FieldSupplierCode),
		Issues:       []string{},
	}

	var parts []float64

	if opts.UseModels {
		if m := e.matchModel(rec.ProductCode, rec.Model); m != nil {
			rec.MatchedModel = m
			parts = append(parts, 1)
		} else {
			rec.Issues = append(rec.Issues, IssueModelNotFound)
			parts = append(parts, 0)
		}
	}

	if opts.UseFailures {
		description := row.Normalized(feed.FieldFailureDescription)
		if f := e.matchFailure(rec.FailureCode, description); f != nil {
			rec.MatchedFailure = f
			parts = append(parts, 1)
		} else {
			rec.Issues = append(rec.Issues, IssueFailureNotFound)
			parts = append(parts, 0)
		}
	}

	if opts.UseResponsibilities {
		if r := e.matchResponsibility(rec.SupplierCode); r != nil {
			rec.MatchedResponsibility = r
			parts = append(parts, 1)
		} else {
			rec.Issues = append(rec.Issues, IssueResponsibilityNotFound)
			parts = append(parts, 0)
		}
	}

	// Среднее арифметическое индикаторов по запрошенным справочникам;
	// ноль запрошенных справочников — confidence 0
	if len(parts) > 0 {
		sum := 0.0
		for _, p := range parts {
			sum += p
		}
		rec.Confidence = round2(sum / float64(len(parts)))
	}

	return rec
}

// EnrichAll обогащает все строки с одним набором флагов.
func (e *Enricher) EnrichAll(rows []feed.RawRow, opts Options) []EnrichedRecord {
	result := make([]EnrichedRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, e.Enrich(row, opts))
	}
	return result
}

// matchModel ищет запись в справочнике моделей по четырехуровневому
// приоритету. Уровни проверяются строго по очереди по всему справочнику:
// победивший более точный уровень исключает менее точные.
//
//  1. точное равенство кода продукта
//  2. точное равенство нормализованной модели
//  3. модель строки оканчивается моделью справочника
//  4. модель справочника оканчивается моделью строки
//
// Уровни 3-4 закрывают справочники, хранящие модели со служебными
// префиксами и суффиксами.
func (e *Enricher) matchModel(productCode, model string) *catalog.ModelEntry {
	models := e.bundle.Models

	if productCode != "" {
		for i := range models {
			if models[i].ProductCode != "" && models[i].ProductCode == productCode {
				return &models[i]
			}
		}
	}

	if model == "" {
		return nil
	}

	for i := range models {
		if models[i].Model != "" && models[i].Model == model {
			return &models[i]
		}
	}
	for i := range models {
		if models[i].Model != "" && strings.HasSuffix(model, models[i].Model) {
			return &models[i]
		}
	}
	for i := range models {
		if models[i].Model != "" && strings.HasSuffix(models[i].Model, model) {
			return &models[i]
		}
	}

	return nil
}

// matchFailure ищет отказ по коду либо описанию (только точные правила).
func (e *Enricher) matchFailure(failureCode, description string) *catalog.FailureEntry {
	failures := e.bundle.Failures

	for i := range failures {
		f := &failures[i]
		if failureCode != "" && f.Code == failureCode {
			return f
		}
		if failureCode != "" && f.Description != "" && f.Description == failureCode {
			return f
		}
		if description != "" && f.Description != "" && strings.Contains(description, f.Description) {
			return f
		}
	}
	return nil
}

// matchResponsibility ищет ответственность по коду поставщика.
func (e *Enricher) matchResponsibility(supplierCode string) *catalog.ResponsibilityEntry {
	if supplierCode == "" {
		return nil
	}

	entries := e.bundle.Responsibilities
	for i := range entries {
		r := &entries[i]
		if r.SupplierCode != "" && r.SupplierCode == supplierCode {
			return r
		}
		if r.Classification != "" && r.Classification == supplierCode {
			return r
		}
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
