package diagnostics

import "sort"

// Паттерны поведения PPM во времени: резкий скачок между соседними
// периодами, «провал и откат» на трех периодах и серия лидерства
// одной группы причин.

// DetectSpike находит анализ с наибольшим по модулю изменением PPM
// между предыдущим и текущим периодом. Просматривается объединение
// имен обоих периодов, знак дельты сохраняется: улучшение такой же
// повод для отчета, как и деградация. nil при пустых периодах.
func DetectSpike(current []FilteredDefect, prodCurrent float64, previous []FilteredDefect, prodPrevious float64) *SpikeAlert {
	curQty := sumByAnalysis(current)
	prevQty := sumByAnalysis(previous)

	var best *SpikeAlert
	var bestAbs float64

	for _, name := range unionKeys(curQty, prevQty) {
		ppmCur := ppmOf(curQty[name], prodCurrent)
		ppmPrev := ppmOf(prevQty[name], prodPrevious)
		delta := ppmCur - ppmPrev

		abs := delta
		if abs < 0 {
			abs = -abs
		}

		if best == nil || abs > bestAbs {
			best = &SpikeAlert{
				Name:        name,
				PpmCurrent:  ppmCur,
				PpmPrevious: ppmPrev,
				Delta:       delta,
			}
			bestAbs = abs
		}
	}

	return best
}

// DetectVCurve ищет паттерн «провал и откат» на трех периодах:
// анализ был значим в T-2 (PPM > 50 при ненулевом количестве), заметно
// упал в T-1 (ниже 70% от T-2) и снова вырос в T (выше 130% от T-1).
// Требуется производство во всех трех периодах. Из кандидатов
// возвращается худший откат (наибольший ppmT - ppmT1).
func DetectVCurve(
	current []FilteredDefect, prodCurrent float64,
	previous []FilteredDefect, prodPrevious float64,
	beforePrev []FilteredDefect, prodBeforePrev float64,
) *VCurveAlert {
	if prodCurrent <= 0 || prodPrevious <= 0 || prodBeforePrev <= 0 {
		return nil
	}

	qtyT := sumByAnalysis(current)
	qtyT1 := sumByAnalysis(previous)
	qtyT2 := sumByAnalysis(beforePrev)

	var best *VCurveAlert

	for _, name := range unionKeys(qtyT, qtyT1, qtyT2) {
		ppmT := ppmOf(qtyT[name], prodCurrent)
		ppmT1 := ppmOf(qtyT1[name], prodPrevious)
		ppmT2 := ppmOf(qtyT2[name], prodBeforePrev)

		relevant := ppmT2 > 50 && qtyT2[name] > 0
		dropped := ppmT1 < ppmT2*0.7
		rebounded := ppmT > ppmT1*1.3

		if !relevant || !dropped || !rebounded {
			continue
		}

		score := ppmT - ppmT1
		if best == nil || score > best.Score {
			best = &VCurveAlert{
				Name:  name,
				PpmT:  ppmT,
				PpmT1: ppmT1,
				PpmT2: ppmT2,
				QtyT:  qtyT[name],
				QtyT1: qtyT1[name],
				QtyT2: qtyT2[name],
				Score: score,
			}
		}
	}

	return best
}

// RecurrenceStreak считает, сколько периодов подряд текущая главная
// причина держит лидерство. Текущий период считается за единицу,
// дальше шаг назад по ключам периодов: отсутствие данных за период
// обрывает серию (дыра не пропускается), смена лидера тоже. Глубина
// ограничена Lookback.
func RecurrenceStreak(
	history []FilteredDefect,
	taxonomy map[string]string,
	currentTopCause string,
	periodType PeriodType,
	currentValue, currentYear int,
) int {
	if currentTopCause == "" || currentTopCause == emptyName {
		return 0
	}

	// Ранг групп по каждому периоду истории
	ranking := make(map[int]map[string]float64)
	for _, d := range history {
		key := PeriodKey(d.Year, d.Week)
		if periodType == PeriodMonth {
			key = PeriodKey(d.Date.Year(), int(d.Date.Month()))
		}

		group := taxonomy[d.Analysis]
		if group == "" {
			group = "OUTROS"
		}

		m, ok := ranking[key]
		if !ok {
			m = make(map[string]float64)
			ranking[key] = m
		}
		m[group] += d.Qty
	}

	streak := 1
	key := PeriodKey(currentYear, currentValue)

	for i := 0; i < Lookback; i++ {
		key = PreviousKey(key, periodType)

		m, ok := ranking[key]
		if !ok {
			break
		}

		if topGroup(m) != currentTopCause {
			break
		}
		streak++
	}

	return streak
}

// SingleCausePpm считает PPM одного конкретного отказа (по описанию)
// в наборе дефектов периода.
func SingleCausePpm(defects []FilteredDefect, production float64, failureDescription string) float64 {
	if production <= 0 {
		return 0
	}
	var qty float64
	for _, d := range defects {
		if d.FailureDescription == failureDescription || d.Analysis == failureDescription {
			qty += d.Qty
		}
	}
	return ppmOf(qty, production)
}

func sumByAnalysis(defects []FilteredDefect) map[string]float64 {
	m := make(map[string]float64)
	for _, d := range defects {
		m[d.Analysis] += d.Qty
	}
	return m
}

// unionKeys возвращает отсортированное объединение ключей:
// детерминированный порядок обхода делает разрешение ничьих стабильным.
func unionKeys(maps ...map[string]float64) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, m := range maps {
		for k := range m {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// topGroup возвращает лидера периода; при равенстве побеждает
// лексикографически меньшее имя, чтобы результат был детерминирован.
func topGroup(counts map[string]float64) string {
	var name string
	var best float64
	for g, qty := range counts {
		if name == "" || qty > best || (qty == best && g < name) {
			name = g
			best = qty
		}
	}
	return name
}
