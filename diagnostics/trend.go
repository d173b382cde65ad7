package diagnostics

import (
	"log"
	"sort"

	"sigmaq/catalog"
	"sigmaq/feed"
)

// Порог значимости роста в абсолютных пунктах PPM: отсекает шум
// малообъемных категорий, где пара дефектов дает огромный процент.
const growthThresholdPpm = 200

const growthPeriods = 3

// SustainedGrowth находит группы причин с устойчивым ростом PPM.
//
// Берутся три самых свежих месяца, в которых вообще есть данные
// (календарная смежность не требуется). Группа попадает в алерты,
// если ее PPM строго растет по всем трем точкам и абсолютный прирост
// превышает 200 пунктов. Алерты отсортированы по приросту, убывание.
func SustainedGrowth(
	defects []FilteredDefect,
	productionRows []feed.RawRow,
	taxonomy map[string]string,
	modelFilter, categoryFilter []string,
) []TrendAlert {
	type monthData struct {
		production float64
		byGroup    map[string]float64
	}

	models := normalizeAll(modelFilter)
	categories := normalizeAll(categoryFilter)

	timeline := make(map[int]*monthData)

	monthOf := func(year, month int) *monthData {
		key := PeriodKey(year, month)
		m, ok := timeline[key]
		if !ok {
			m = &monthData{byGroup: make(map[string]float64)}
			timeline[key] = m
		}
		return m
	}

	// Производство фильтруется теми же атрибутами, что и дефекты,
	// иначе PPM сравнивает несопоставимые объемы
	for _, r := range productionRows {
		if !matchesFilter(models, r.Normalized(feed.FieldModel)) {
			continue
		}
		if !matchesFilter(categories, r.Normalized(feed.FieldCategory)) {
			continue
		}
		date, ok := r.Date(feed.FieldDate)
		if !ok {
			continue
		}
		monthOf(date.Year(), int(date.Month())).production += r.Number(feed.FieldProducedQty)
	}

	for _, d := range defects {
		group := taxonomy[d.Analysis]
		if group == "" {
			group = catalog.UnclassifiedGroup
		}
		monthOf(d.Date.Year(), int(d.Date.Month())).byGroup[group] += d.Qty
	}

	keys := make([]int, 0, len(timeline))
	for k := range timeline {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	if len(keys) < growthPeriods {
		log.Printf("📈 Тренд PPM: истории мало (%d мес.), алертов нет", len(keys))
		return nil
	}

	recent := keys[len(keys)-growthPeriods:]
	m1, m2, m3 := timeline[recent[0]], timeline[recent[1]], timeline[recent[2]]

	groups := make(map[string]struct{})
	for _, m := range []*monthData{m1, m2, m3} {
		for g := range m.byGroup {
			groups[g] = struct{}{}
		}
	}

	var alerts []TrendAlert

	for group := range groups {
		qty1, qty3 := m1.byGroup[group], m3.byGroup[group]

		ppm1 := ppmOf(qty1, m1.production)
		ppm2 := ppmOf(m2.byGroup[group], m2.production)
		ppm3 := ppmOf(qty3, m3.production)

		if !(ppm3 > ppm2 && ppm2 > ppm1) {
			continue
		}
		if ppm3-ppm1 <= growthThresholdPpm {
			continue
		}

		growth := 100.0
		if ppm1 > 0 {
			growth = (ppm3 - ppm1) / ppm1 * 100
		}

		alerts = append(alerts, TrendAlert{
			CauseGroup:      group,
			PpmStart:        ppm1,
			PpmEnd:          ppm3,
			QtyStart:        qty1,
			QtyEnd:          qty3,
			GrowthPercent:   growth,
			PeriodsOfGrowth: growthPeriods,
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		di := alerts[i].PpmEnd - alerts[i].PpmStart
		dj := alerts[j].PpmEnd - alerts[j].PpmStart
		if di != dj {
			return di > dj
		}
		return alerts[i].CauseGroup < alerts[j].CauseGroup
	})

	return alerts
}
