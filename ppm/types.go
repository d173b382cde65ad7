package ppm

import (
	"time"

	"sigmaq/normalization"
)

// Статус расчета PPM для группы.
type CalculationStatus string

const (
	StatusOK             CalculationStatus = "OK"
	StatusNoProduction   CalculationStatus = "NO_PRODUCTION"
	StatusNoDefect       CalculationStatus = "NO_DEFECT"
	StatusZeroProduction CalculationStatus = "ZERO_PRODUCTION"
)

// Статус валидации группы.
type ValidationStatus string

const (
	ValidationValid   ValidationStatus = "VALID"
	ValidationInvalid ValidationStatus = "INVALID"
	ValidationPartial ValidationStatus = "PARTIAL"
)

// Вид записи дефекта: производственный дефект или административная
// ocorrência, исключаемая из индексов.
const (
	RecordKindNormal     = "NORMAL"
	RecordKindOccurrence = "OCORRENCIA"
)

// NormalizedProduction — агрегат производства по одному ключу группы.
// Количества суммируются по всем строкам, даты сохраняются списком
// (без дедупликации, кратность важна для периодных разрезов).
type NormalizedProduction struct {
	GroupKey        string      `json:"groupKey"`
	Category        string      `json:"categoria"`
	Model           string      `json:"modelo"`
	ProducedQty     float64     `json:"produzido"`
	ProductionDates []time.Time `json:"datasProducao"`
}

// NormalizedDefect — агрегат дефектов по одному ключу группы.
type NormalizedDefect struct {
	GroupKey             string      `json:"groupKey"`
	DefectQty            float64     `json:"defeitos"`
	DefectDates          []time.Time `json:"datasDefeito"`
	IsExcludedOccurrence bool        `json:"naoMostrarIndice"`
	RecordKind           string      `json:"tipoRegistro"`
}

// OccurrenceTallies — счетчики административных ocorrências,
// исключенных из PPM на этапе нормализации дефектов.
type OccurrenceTallies struct {
	Total      int            `json:"total"`
	ByCode     map[string]int `json:"byCode"`
	ByCategory map[string]int `json:"byCategory"`
}

// MergedGroup — производство и дефекты, сведенные по ключу группы.
// Группа существует, если хотя бы одна сторона ее видела; отсутствующая
// сторона дает ноль.
type MergedGroup struct {
	GroupKey string `json:"groupKey"`
	Category string `json:"categoria"`
	Model    string `json:"modelo"`

	ProducedQty float64 `json:"produzido"`
	DefectQty   float64 `json:"defeitos"`

	ProductionDates []time.Time `json:"datasProducao"`
	DefectDates     []time.Time `json:"datasDefeito"`

	IsExcludedOccurrence bool   `json:"naoMostrarIndice"`
	RecordKind           string `json:"tipoRegistro"`

	HasProduction bool `json:"hasProduction"`
	HasDefect     bool `json:"hasDefect"`
}

// CalculatedGroup — группа после расчета PPM.
// PPM всегда конечное число: ноль при любом статусе кроме OK.
type CalculatedGroup struct {
	MergedGroup

	PPM               float64           `json:"ppm"`
	CalculationStatus CalculationStatus `json:"calculationStatus"`
}

// ValidatedGroup — финальная строка движка с вердиктом валидации.
type ValidatedGroup struct {
	CalculatedGroup

	ValidationStatus ValidationStatus `json:"validationStatus"`
	ValidationReason string           `json:"validationReason,omitempty"`
}

// BuildGroupKey строит ключ `категория::модель` из нормализованных
// значений. Пустая категория или модель дает пустой ключ: такая строка
// выпадает из группировки, но не из сырых счетчиков.
func BuildGroupKey(category, model string) string {
	c := normalization.NormalizeText(category)
	m := normalization.NormalizeText(model)
	if c == "" || m == "" {
		return ""
	}
	return c + "::" + m
}
