package ppm

import (
	"fmt"
	"math"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigmaq/feed"
)

// TestRun_EndToEnd прогоняет движок на небольшом смешанном наборе
func TestRun_EndToEnd(t *testing.T) {
	exclusions := map[string]struct{}{"OC": {}}

	production := []feed.RawRow{
		{"CATEGORIA": "TV", "MODELO": "SAMSUNG-500", "QTY_GERAL": 1000.0, "DATA": "05/03/2025"},
		{"CATEGORIA": "MONITOR", "MODELO": "LG-300", "QTY_GERAL": 500.0, "DATA": "06/03/2025"},
	}
	defects := []feed.RawRow{
		{"CATEGORIA": "TV", "MODELO": "SAMSUNG-500", "QUANTIDADE": 5.0, "DATA": "07/03/2025"},
		{"CATEGORIA": "AUDIO", "MODELO": "SB-100", "QUANTIDADE": 12.0, "DATA": "07/03/2025"},
		{"CATEGORIA": "TV", "MODELO": "SAMSUNG-500", "QUANTIDADE": 2.0, "CÓDIGO DO FORNECEDOR": "OC"},
	}

	result := Run(production, defects, exclusions)

	// TV::SAMSUNG-500, MONITOR::LG-300, AUDIO::SB-100
	assert.Equal(t, 3, result.Meta.TotalGroups)
	assert.Equal(t, 1500.0, result.Meta.TotalProduction)
	assert.Equal(t, 17.0, result.Meta.TotalDefects)

	require.NotNil(t, result.Meta.OverallPPM)
	assert.InDelta(t, 11333.33, *result.Meta.OverallPPM, 0.01)

	// VALID: TV (OK), MONITOR (NO_DEFECT); INVALID: AUDIO (NO_PRODUCTION)
	assert.Equal(t, 67, result.Meta.Precision)

	assert.Equal(t, 1, result.Meta.Occurrences.Total)
	assert.Equal(t, 1, result.GlobalDiagnostics.DefectsWithoutProduction)
	assert.Equal(t, 1, result.GlobalDiagnostics.ProductionWithoutDefect)

	tv := result.ByCategory["TV"]
	require.NotNil(t, tv)
	assert.Equal(t, 1000.0, tv.Production)
	assert.Equal(t, 5.0, tv.Defects)
	require.NotNil(t, tv.PPM)
	assert.Equal(t, 5000.0, *tv.PPM)
	assert.Equal(t, CategoryHealthy, tv.Status)

	audio := result.ByCategory["AUDIO"]
	require.NotNil(t, audio)
	assert.Nil(t, audio.PPM)
	assert.Equal(t, CategoryCritical, audio.Status)
}

// TestRun_ScenarioNoProduction проверяет сценарий дефектов без
// производства: NO_PRODUCTION, ppm=0, INVALID
func TestRun_ScenarioNoProduction(t *testing.T) {
	defects := []feed.RawRow{
		{"CATEGORIA": "TV", "MODELO": "X-1", "QUANTIDADE": 12.0},
	}

	result := Run(nil, defects, nil)

	require.Len(t, result.AllRows, 1)
	row := result.AllRows[0]
	assert.Equal(t, StatusNoProduction, row.CalculationStatus)
	assert.Equal(t, 0.0, row.PPM)
	assert.Equal(t, ValidationInvalid, row.ValidationStatus)
	assert.Equal(t, 0, result.Meta.Precision)
}

// TestRun_ScenarioNoDefect проверяет сценарий производства без
// дефектов: NO_DEFECT, VALID
func TestRun_ScenarioNoDefect(t *testing.T) {
	production := []feed.RawRow{
		{"CATEGORIA": "TV", "MODELO": "X-1", "QTY_GERAL": 1000.0},
	}

	result := Run(production, nil, nil)

	require.Len(t, result.AllRows, 1)
	row := result.AllRows[0]
	assert.Equal(t, StatusNoDefect, row.CalculationStatus)
	assert.Equal(t, ValidationValid, row.ValidationStatus)
	assert.Equal(t, 100, result.Meta.Precision)
}

// TestRun_Idempotent проверяет, что повторный прогон на тех же входах
// дает тот же результат
func TestRun_Idempotent(t *testing.T) {
	production := []feed.RawRow{
		{"CATEGORIA": "TV", "MODELO": "A", "QTY_GERAL": 300.0, "DATA": "01/02/2025"},
	}
	defects := []feed.RawRow{
		{"CATEGORIA": "TV", "MODELO": "A", "QUANTIDADE": 3.0, "DATA": "02/02/2025"},
	}

	first := Run(production, defects, nil)
	second := Run(production, defects, nil)

	assert.Equal(t, first, second)
}

// TestMonthlyTrend проверяет помесячный ряд с исключением ocorrências
func TestMonthlyTrend(t *testing.T) {
	exclusions := map[string]struct{}{"OC": {}}

	production := []feed.RawRow{
		{"QTY_GERAL": 1000.0, "DATA": "10/01/2025"},
		{"QTY_GERAL": 2000.0, "DATA": "15/02/2025"},
	}
	defects := []feed.RawRow{
		{"QUANTIDADE": 10.0, "DATA": "20/01/2025"},
		{"QUANTIDADE": 5.0, "DATA": "21/01/2025", "CÓDIGO DO FORNECEDOR": "OC"},
		{"QUANTIDADE": 8.0, "DATA": "03/03/2025"},
	}

	trend := MonthlyTrend(production, defects, exclusions)
	require.Len(t, trend, 3)

	assert.Equal(t, "2025-01", trend[0].Month)
	assert.Equal(t, 10.0, trend[0].Defects) // ocorrência не считается
	require.NotNil(t, trend[0].PPM)
	assert.Equal(t, 10000.0, *trend[0].PPM)

	assert.Equal(t, "2025-02", trend[1].Month)
	assert.Equal(t, 0.0, trend[1].Defects)

	// Март: дефекты без производства, PPM не определен
	assert.Equal(t, "2025-03", trend[2].Month)
	assert.Nil(t, trend[2].PPM)
}

// TestRun_RandomizedInvariants гоняет движок на сгенерированном наборе
// и проверяет структурные инварианты, не зависящие от конкретных чисел
func TestRun_RandomizedInvariants(t *testing.T) {
	faker := gofakeit.New(42)
	exclusions := map[string]struct{}{"OC": {}}

	categories := []string{"TV", "MONITOR", "AUDIO", "GELADEIRA"}

	var production, defects []feed.RawRow
	for i := 0; i < 200; i++ {
		category := categories[faker.Number(0, len(categories)-1)]
		model := fmt.Sprintf("%s-%d", category, faker.Number(100, 120))

		production = append(production, feed.RawRow{
			"CATEGORIA": category,
			"MODELO":    model,
			"QTY_GERAL": float64(faker.Number(0, 5000)),
			"DATA":      fmt.Sprintf("%02d/%02d/2025", faker.Number(1, 28), faker.Number(1, 12)),
		})

		row := feed.RawRow{
			"CATEGORIA":  category,
			"MODELO":     model,
			"QUANTIDADE": float64(faker.Number(0, 50)),
			"DATA":       fmt.Sprintf("%02d/%02d/2025", faker.Number(1, 28), faker.Number(1, 12)),
		}
		if faker.Number(0, 9) == 0 {
			row["CÓDIGO DO FORNECEDOR"] = "OC"
		}
		defects = append(defects, row)
	}

	result := Run(production, defects, exclusions)

	var totalDefects float64
	for _, row := range result.AllRows {
		// PPM всегда конечен и неотрицателен
		require.False(t, math.IsNaN(row.PPM))
		require.False(t, math.IsInf(row.PPM, 0))
		assert.GreaterOrEqual(t, row.PPM, 0.0)

		// Статусы заполнены у каждой строки
		assert.NotEmpty(t, row.CalculationStatus)
		assert.NotEmpty(t, row.ValidationStatus)

		totalDefects += row.DefectQty
	}
	assert.Equal(t, result.Meta.TotalDefects, totalDefects)

	assert.GreaterOrEqual(t, result.Meta.Precision, 0)
	assert.LessOrEqual(t, result.Meta.Precision, 100)

	// Детерминизм на одинаковом входе
	assert.Equal(t, result, Run(production, defects, exclusions))
}
