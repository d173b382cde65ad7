package ppm

import (
	"log"
	"math"

	"sigmaq/feed"
)

// Статус здоровья категории по точности расчета.
const (
	CategoryHealthy  = "SAUDAVEL"
	CategoryCritical = "CRITICO"
)

const noCategory = "SEM_CATEGORIA"

// Meta — глобальные KPI прогона движка.
type Meta struct {
	TotalGroups     int      `json:"totalGroups"`
	TotalProduction float64  `json:"totalProduction"`
	TotalDefects    float64  `json:"totalDefects"`
	OverallPPM      *float64 `json:"ppmGeral"`
	Precision       int      `json:"precision"`
	ExcludedCount   int      `json:"naoMostrarIndiceCount"`

	Occurrences OccurrenceTallies `json:"occurrences"`
}

// GlobalDiagnostics — сводные аномалии по всему прогону.
type GlobalDiagnostics struct {
	DefectsWithoutProduction int              `json:"defectsWithoutProduction"`
	ProductionWithoutDefect  int              `json:"productionWithoutDefect"`
	ZeroPpmItems             int              `json:"zeroPpmItems"`
	Excluded                 []ValidatedGroup `json:"naoMostrarIndice"`
}

// CategorySummary — KPI одной категории.
type CategorySummary struct {
	Production float64          `json:"production"`
	Defects    float64          `json:"defects"`
	PPM        *float64         `json:"ppm"`
	Precision  int              `json:"precision"`
	Status     string           `json:"status"`
	Models     []ValidatedGroup `json:"models"`
}

// Result — полный результат движка PPM: единственный источник правды
// для дашборда.
type Result struct {
	Meta              Meta                        `json:"meta"`
	GlobalDiagnostics GlobalDiagnostics           `json:"globalDiagnostics"`
	ByCategory        map[string]*CategorySummary `json:"byCategory"`
	AllRows           []ValidatedGroup            `json:"allRows"`
	Diagnostics       []DiagnosticItem            `json:"diagnostics"`
}

// Run прогоняет весь конвейер: нормализация, merge, расчет, валидация,
// KPI. Конвейер синхронный и без состояния: каждый вызов считает все
// заново из сырых строк.
func Run(productionRows, defectRows []feed.RawRow, exclusions map[string]struct{}) *Result {
	prod := NormalizeProduction(productionRows)
	defects, tallies := NormalizeDefects(defectRows, exclusions)

	merged := Merge(prod, defects)
	calculated := Calculate(merged)
	validated := Validate(calculated)

	// Ocorrências отделяются от продуктивных групп: в суммах PPM и
	// точности участвуют только последние
	excluded := make([]ValidatedGroup, 0)
	considered := make([]ValidatedGroup, 0, len(validated))
	for _, r := range validated {
		if r.IsExcludedOccurrence {
			excluded = append(excluded, r)
		} else {
			considered = append(considered, r)
		}
	}

	var totalProduction float64
	for _, p := range prod {
		totalProduction += p.ProducedQty
	}

	var totalDefects float64
	validCount := 0
	for _, r := range considered {
		totalDefects += r.DefectQty
		if r.ValidationStatus == ValidationValid {
			validCount++
		}
	}

	var overallPPM *float64
	if totalProduction > 0 {
		v := round2(totalDefects / totalProduction * 1_000_000)
		overallPPM = &v
	}

	precision := 0
	if len(considered) > 0 {
		precision = int(math.Round(float64(validCount) / float64(len(considered)) * 100))
	}

	result := &Result{
		Meta: Meta{
			TotalGroups:     len(considered),
			TotalProduction: totalProduction,
			TotalDefects:    totalDefects,
			OverallPPM:      overallPPM,
			Precision:       precision,
			ExcludedCount:   len(excluded),
			Occurrences:     tallies,
		},
		ByCategory:  buildCategorySummaries(prod, validated),
		AllRows:     validated,
		Diagnostics: Diagnose(calculated),
	}

	for _, r := range considered {
		switch {
		case r.ProducedQty == 0 && r.DefectQty > 0:
			result.GlobalDiagnostics.DefectsWithoutProduction++
		case r.ProducedQty > 0 && r.DefectQty == 0:
			result.GlobalDiagnostics.ProductionWithoutDefect++
		}
		if r.PPM == 0 {
			result.GlobalDiagnostics.ZeroPpmItems++
		}
	}
	result.GlobalDiagnostics.Excluded = excluded

	log.Printf("📊 PPM движок: групп=%d, произведено=%.0f, дефектов=%.0f, точность=%d%%",
		len(considered), totalProduction, totalDefects, precision)

	return result
}

// buildCategorySummaries строит KPI по категориям. Производство
// категории берется из нормализованного производства, дефекты
// суммируются только по непокрытым ocorrência строкам.
func buildCategorySummaries(prod []NormalizedProduction, validated []ValidatedGroup) map[string]*CategorySummary {
	productionByCategory := make(map[string]float64)
	for _, p := range prod {
		productionByCategory[p.Category] += p.ProducedQty
	}

	byCategory := make(map[string]*CategorySummary)

	for _, row := range validated {
		category := row.Category
		if category == "" {
			category = noCategory
		}

		c, ok := byCategory[category]
		if !ok {
			c = &CategorySummary{
				Production: productionByCategory[category],
				Status:     CategoryCritical,
				Models:     []ValidatedGroup{},
			}
			byCategory[category] = c
		}

		if !row.IsExcludedOccurrence {
			c.Defects += row.DefectQty
		}
		c.Models = append(c.Models, row)
	}

	for _, c := range byCategory {
		if c.Production > 0 {
			v := round2(c.Defects / c.Production * 1_000_000)
			c.PPM = &v
		}

		valid := 0
		for _, m := range c.Models {
			if m.ValidationStatus == ValidationValid {
				valid++
			}
		}
		if len(c.Models) > 0 {
			c.Precision = int(math.Round(float64(valid) / float64(len(c.Models)) * 100))
		}

		if c.Precision >= 90 {
			c.Status = CategoryHealthy
		}
	}

	return byCategory
}
