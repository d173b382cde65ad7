package ppm

import "math"

// Calculate вычисляет PPM и статус расчета для каждой группы.
//
// Порядок классификации фиксирован и значим:
//  1. дефекты без производства → NO_PRODUCTION, ppm=0;
//  2. производство без дефектов → NO_DEFECT, ppm=0;
//  3. производства нет вообще → ZERO_PRODUCTION, ppm=0;
//  4. иначе → OK, ppm = (дефекты/произведено)*1e6 с округлением до сотых.
//
// PPM никогда не NaN и не бесконечность. Все остальные поля группы
// проходят насквозь без изменений.
func Calculate(groups []MergedGroup) []CalculatedGroup {
	result := make([]CalculatedGroup, 0, len(groups))

	for _, g := range groups {
		row := CalculatedGroup{MergedGroup: g}

		switch {
		case g.ProducedQty <= 0 && g.DefectQty > 0:
			row.CalculationStatus = StatusNoProduction
		case g.ProducedQty > 0 && g.DefectQty == 0:
			row.CalculationStatus = StatusNoDefect
		case g.ProducedQty <= 0:
			row.CalculationStatus = StatusZeroProduction
		default:
			row.CalculationStatus = StatusOK
			row.PPM = round2(g.DefectQty / g.ProducedQty * 1_000_000)
		}

		result = append(result, row)
	}

	return result
}

// round2 округляет до двух знаков, половина от нуля.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
