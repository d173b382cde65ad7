package diagnostics

import (
	"math"

	"sigmaq/catalog"
	"sigmaq/normalization"
)

// Пределы динамического ранга встречаемости «линейки на пять».
const (
	occurrenceMin   = 1
	occurrenceMax   = 5
	occurrenceSteps = 5
)

// DynamicFmea пересчитывает таблицу FMEA под фактический объем периода.
//
// Ранг встречаемости берется не из статической таблицы, а из данных:
// шаг линейки = ceil(максимум по всем отказам / 5), минимум 1;
// ранг = ceil(количество / шаг) с зажимом в [1,5], ноль при нуле
// количества. Тяжесть и обнаружение остаются статическими,
// NPR = S × O × D.
func DynamicFmea(static []catalog.FmeaEntry, defects []FilteredDefect) []catalog.FmeaEntry {
	counts := make(map[string]float64)
	for _, d := range defects {
		counts[d.FailureDescription] += d.Qty
	}

	var maxQty float64
	for _, qty := range counts {
		if qty > maxQty {
			maxQty = qty
		}
	}

	step := math.Ceil(maxQty / occurrenceSteps)
	if step < 1 {
		step = 1
	}

	result := make([]catalog.FmeaEntry, 0, len(static))
	for _, item := range static {
		qty := counts[normalization.NormalizeText(item.Description)]

		occurrence := 0
		if qty > 0 {
			occurrence = int(math.Ceil(qty / step))
			if occurrence > occurrenceMax {
				occurrence = occurrenceMax
			}
			if occurrence < occurrenceMin {
				occurrence = occurrenceMin
			}
		}

		item.Occurrence = occurrence
		item.NPR = item.Severity * occurrence * item.Detection
		result = append(result, item)
	}

	return result
}
