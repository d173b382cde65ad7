package ppm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigmaq/feed"
)

func midday(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

// TestNormalizeProduction_Accumulates проверяет суммирование по ключу
// группы и отбрасывание строк без ключа
func TestNormalizeProduction_Accumulates(t *testing.T) {
	rows := []feed.RawRow{
		{"CATEGORIA": "TV", "MODELO": "samsung-500", "QTY_GERAL": 100.0, "DATA": "10/03/2025"},
		{"CATEGORIA": "tv", "MODELO": "SAMSUNG-500", "QTY_GERAL": 50.0, "DATA": "11/03/2025"},
		{"CATEGORIA": "TV", "MODELO": "", "QTY_GERAL": 999.0}, // без ключа
		{"CATEGORIA": "TV", "MODELO": "LG-300", "QTY_GERAL": 0.0},
	}

	prod := NormalizeProduction(rows)

	require.Len(t, prod, 1)
	assert.Equal(t, "TV::SAMSUNG-500", prod[0].GroupKey)
	assert.Equal(t, 150.0, prod[0].ProducedQty)
	assert.Len(t, prod[0].ProductionDates, 2)
	assert.Equal(t, midday(2025, time.March, 10), prod[0].ProductionDates[0])
}

// TestNormalizeDefects_ExcludesOccurrences проверяет разделение
// продуктивных дефектов и административных ocorrências
func TestNormalizeDefects_ExcludesOccurrences(t *testing.T) {
	exclusions := map[string]struct{}{"OC": {}}

	rows := []feed.RawRow{
		{"CATEGORIA": "TV", "MODELO": "SAMSUNG-500", "QUANTIDADE": 3.0},
		{"CATEGORIA": "TV", "MODELO": "SAMSUNG-500", "QUANTIDADE": 2.0, "CÓDIGO DO FORNECEDOR": "OC"},
		{"CATEGORIA": "MONITOR", "MODELO": "LG-300", "QUANTIDADE": 1.0, "CÓDIGO DO FORNECEDOR": "oc"},
	}

	defects, tallies := NormalizeDefects(rows, exclusions)

	require.Len(t, defects, 1)
	assert.Equal(t, "TV::SAMSUNG-500", defects[0].GroupKey)
	assert.Equal(t, 3.0, defects[0].DefectQty)
	assert.Equal(t, RecordKindNormal, defects[0].RecordKind)

	assert.Equal(t, 2, tallies.Total)
	assert.Equal(t, 2, tallies.ByCode["OC"])
	assert.Equal(t, 1, tallies.ByCategory["TV"])
	assert.Equal(t, 1, tallies.ByCategory["MONITOR"])
}

// TestMerge_UnionAndDefaults проверяет объединение сторон и нули на
// отсутствующей стороне
func TestMerge_UnionAndDefaults(t *testing.T) {
	prod := []NormalizedProduction{
		{GroupKey: "TV::A", Category: "TV", Model: "A", ProducedQty: 100},
	}
	defects := []NormalizedDefect{
		{GroupKey: "TV::A", DefectQty: 5, RecordKind: RecordKindNormal},
		{GroupKey: "MONITOR::B", DefectQty: 7, RecordKind: RecordKindNormal},
	}

	merged := Merge(prod, defects)
	require.Len(t, merged, 2)

	byKey := make(map[string]MergedGroup)
	for _, g := range merged {
		byKey[g.GroupKey] = g
	}

	a := byKey["TV::A"]
	assert.Equal(t, 100.0, a.ProducedQty)
	assert.Equal(t, 5.0, a.DefectQty)
	assert.True(t, a.HasProduction)
	assert.True(t, a.HasDefect)

	// Ключ только со стороны дефектов: категория и модель из ключа
	b := byKey["MONITOR::B"]
	assert.Equal(t, "MONITOR", b.Category)
	assert.Equal(t, "B", b.Model)
	assert.Equal(t, 0.0, b.ProducedQty)
	assert.False(t, b.HasProduction)
}

// TestMerge_StickyExclusion проверяет, что одна исключенная строка
// помечает группу навсегда, в любом порядке
func TestMerge_StickyExclusion(t *testing.T) {
	normal := NormalizedDefect{GroupKey: "TV::A", DefectQty: 1, RecordKind: RecordKindNormal}
	occurrence := NormalizedDefect{GroupKey: "TV::A", DefectQty: 1, IsExcludedOccurrence: true, RecordKind: RecordKindOccurrence}

	for _, order := range [][]NormalizedDefect{
		{normal, occurrence},
		{occurrence, normal},
	} {
		merged := Merge(nil, order)
		require.Len(t, merged, 1)
		assert.True(t, merged[0].IsExcludedOccurrence)
		assert.Equal(t, RecordKindOccurrence, merged[0].RecordKind)
	}
}

// TestCalculate_StatusOrder проверяет порядок классификации и округление
func TestCalculate_StatusOrder(t *testing.T) {
	groups := []MergedGroup{
		{GroupKey: "A", ProducedQty: 0, DefectQty: 12},
		{GroupKey: "B", ProducedQty: 1000, DefectQty: 0},
		{GroupKey: "C", ProducedQty: 0, DefectQty: 0},
		{GroupKey: "D", ProducedQty: 3000, DefectQty: 7},
	}

	calculated := Calculate(groups)
	require.Len(t, calculated, 4)

	assert.Equal(t, StatusNoProduction, calculated[0].CalculationStatus)
	assert.Equal(t, 0.0, calculated[0].PPM)

	assert.Equal(t, StatusNoDefect, calculated[1].CalculationStatus)
	assert.Equal(t, 0.0, calculated[1].PPM)

	assert.Equal(t, StatusZeroProduction, calculated[2].CalculationStatus)

	assert.Equal(t, StatusOK, calculated[3].CalculationStatus)
	assert.Equal(t, 2333.33, calculated[3].PPM)
}

// TestCalculate_PpmDomain проверяет, что PPM всегда конечен,
// неотрицателен и нулевой при любом статусе кроме OK
func TestCalculate_PpmDomain(t *testing.T) {
	groups := []MergedGroup{
		{ProducedQty: 0, DefectQty: 100},
		{ProducedQty: 1, DefectQty: 1_000_000},
		{ProducedQty: 0.5, DefectQty: 0.1},
		{ProducedQty: 10, DefectQty: 0},
	}

	for _, c := range Calculate(groups) {
		assert.GreaterOrEqual(t, c.PPM, 0.0)
		if c.CalculationStatus != StatusOK {
			assert.Equal(t, 0.0, c.PPM)
		}
	}
}

// TestValidate_Priority проверяет приоритет вердиктов
func TestValidate_Priority(t *testing.T) {
	rows := []CalculatedGroup{
		{MergedGroup: MergedGroup{GroupKey: "A", IsExcludedOccurrence: true}, CalculationStatus: StatusNoProduction},
		{MergedGroup: MergedGroup{GroupKey: "B"}, CalculationStatus: StatusOK},
		{MergedGroup: MergedGroup{GroupKey: "C"}, CalculationStatus: StatusNoDefect},
		{MergedGroup: MergedGroup{GroupKey: "D"}, CalculationStatus: StatusNoProduction},
		{MergedGroup: MergedGroup{GroupKey: "E"}, CalculationStatus: StatusZeroProduction},
	}

	validated := Validate(rows)

	// Ocorrência валидна всегда, даже с невалидным статусом расчета
	assert.Equal(t, ValidationValid, validated[0].ValidationStatus)
	assert.NotEmpty(t, validated[0].ValidationReason)

	assert.Equal(t, ValidationValid, validated[1].ValidationStatus)
	assert.Equal(t, ValidationValid, validated[2].ValidationStatus)
	assert.Equal(t, ValidationInvalid, validated[3].ValidationStatus)
	assert.Equal(t, ValidationInvalid, validated[4].ValidationStatus)
}

// TestDiagnose_Reasons проверяет построчные причины
func TestDiagnose_Reasons(t *testing.T) {
	calculated := Calculate([]MergedGroup{
		{GroupKey: "A", ProducedQty: 0, DefectQty: 12},
		{GroupKey: "B", ProducedQty: 1000, DefectQty: 0},
		{GroupKey: "C", ProducedQty: 2000, DefectQty: 4},
	})

	items := Diagnose(calculated)
	require.Len(t, items, 3)

	assert.Equal(t, ReasonNoProduction, items[0].Reason)
	assert.Equal(t, 0, items[0].Precision)

	assert.Equal(t, ReasonNoDefects, items[1].Reason)
	assert.Equal(t, 0, items[1].Precision)

	assert.Equal(t, ReasonOK, items[2].Reason)
	assert.Equal(t, 100, items[2].Precision)
}
