package diagnostics

import (
	"sort"

	"sigmaq/catalog"
	"sigmaq/normalization"
)

// Aggregation — результат полного разреза периода: главная причина,
// главный дефект, критические дефекты по NPR и топ групп по риску.
type Aggregation struct {
	PrincipalCause  NamedCount       `json:"principalCausa"`
	PrincipalDefect NamedCount       `json:"principalDefeito"`
	CriticalDefect  CriticalDefect   `json:"defeitoCritico"`
	CriticalDefects []CriticalDefect `json:"defeitosCriticos"`
	TopCauses       []CauseGroup     `json:"topCausas"`
}

const emptyName = "-"

const topCausesLimit = 3
const criticalDefectsLimit = 5

// Aggregate сводит отфильтрованные дефекты в группы причин по
// таксономии и скрещивает их с таблицей FMEA.
//
// Каждый дефект попадает ровно в одну группу; анализ без таксономии
// уходит в «NÃO CLASSIFICADO», молча не теряется ничего. Итог группы
// всегда считается суммой ее детей, отдельного родительского счетчика
// нет. При равенстве счетчиков порядок детерминирован: больше
// вхождений, затем имя по алфавиту.
func Aggregate(defects []FilteredDefect, taxonomy map[string]string, fmea []catalog.FmeaEntry) *Aggregation {
	fmeaIndex := buildFmeaIndex(fmea)

	type detail struct {
		qty    float64
		models map[string]float64
	}
	type group struct {
		details   map[string]*detail
		riskScore float64
	}

	groups := make(map[string]*group)

	criticalSeen := make(map[string]CriticalDefect)

	for _, d := range defects {
		name := taxonomy[d.Analysis]
		if name == "" {
			name = catalog.UnclassifiedGroup
		}

		g, ok := groups[name]
		if !ok {
			g = &group{details: make(map[string]*detail)}
			groups[name] = g
		}

		dt, ok := g.details[d.Analysis]
		if !ok {
			dt = &detail{models: make(map[string]float64)}
			g.details[d.Analysis] = dt
		}
		dt.qty += d.Qty
		dt.models[d.Model] += d.Qty

		// Скрещивание с FMEA: сначала по коду, затем по описанию
		entry, found := fmeaIndex[d.FailureCode]
		if !found {
			entry, found = fmeaIndex[d.FailureDescription]
		}
		if found && entry.NPR > 0 {
			key := entry.Code + "|" + entry.Description
			if _, seen := criticalSeen[key]; !seen {
				criticalSeen[key] = CriticalDefect{
					Code:        entry.Code,
					Description: entry.Description,
					Severity:    entry.Severity,
					Occurrence:  entry.Occurrence,
					Detection:   entry.Detection,
					NPR:         entry.NPR,
				}
			}
			g.riskScore += d.Qty * float64(entry.NPR)
		}
	}

	// Сборка групп: итоги только от детей
	causes := make([]CauseGroup, 0, len(groups))
	for name, g := range groups {
		details := make([]CauseDetail, 0, len(g.details))
		var total float64

		for dName, dt := range g.details {
			models := make([]ModelCount, 0, len(dt.models))
			for mName, mQty := range dt.models {
				models = append(models, ModelCount{Name: mName, Occurrences: mQty})
			}
			sortCounts(models, func(m ModelCount) (float64, string) { return m.Occurrences, m.Name })

			details = append(details, CauseDetail{Name: dName, Occurrences: dt.qty, Models: models})
			total += dt.qty
		}
		sortCounts(details, func(d CauseDetail) (float64, string) { return d.Occurrences, d.Name })

		causes = append(causes, CauseGroup{
			Name:        name,
			Occurrences: total,
			RiskScore:   g.riskScore,
			MeanNPR:     meanNpr(g.riskScore, total),
			Details:     details,
		})
	}

	result := &Aggregation{
		PrincipalCause:  NamedCount{Name: emptyName},
		PrincipalDefect: NamedCount{Name: emptyName},
		CriticalDefect:  CriticalDefect{Code: emptyName, Description: emptyName},
	}

	// Главная причина: максимум вхождений
	byOccurrences := make([]CauseGroup, len(causes))
	copy(byOccurrences, causes)
	sortCounts(byOccurrences, func(c CauseGroup) (float64, string) { return c.Occurrences, c.Name })

	if len(byOccurrences) > 0 {
		top := byOccurrences[0]
		result.PrincipalCause = NamedCount{Name: top.Name, Occurrences: top.Occurrences}

		// Главный дефект: сильнейшая деталь внутри победившей группы
		if len(top.Details) > 0 {
			result.PrincipalDefect = NamedCount{
				Name:        top.Details[0].Name,
				Occurrences: top.Details[0].Occurrences,
			}
		}
	}

	// Топ групп по взвешенному риску, не по сырым вхождениям:
	// массовая группа с низким NPR может уступить редкой с высоким
	byRisk := make([]CauseGroup, len(causes))
	copy(byRisk, causes)
	sortCounts(byRisk, func(c CauseGroup) (float64, string) { return c.RiskScore, c.Name })
	if len(byRisk) > topCausesLimit {
		byRisk = byRisk[:topCausesLimit]
	}
	result.TopCauses = byRisk

	// Критические дефекты: топ-5 уникальных записей FMEA по NPR
	critical := make([]CriticalDefect, 0, len(criticalSeen))
	for _, c := range criticalSeen {
		critical = append(critical, c)
	}
	sortCounts(critical, func(c CriticalDefect) (float64, string) { return float64(c.NPR), c.Code })
	if len(critical) > criticalDefectsLimit {
		critical = critical[:criticalDefectsLimit]
	}
	result.CriticalDefects = critical
	if len(critical) > 0 {
		result.CriticalDefect = critical[0]
	}

	return result
}

// sortCounts сортирует по убыванию метрики, при равенстве по имени.
func sortCounts[T any](items []T, key func(T) (float64, string)) {
	sort.SliceStable(items, func(i, j int) bool {
		vi, ni := key(items[i])
		vj, nj := key(items[j])
		if vi != vj {
			return vi > vj
		}
		return ni < nj
	})
}

func buildFmeaIndex(fmea []catalog.FmeaEntry) map[string]catalog.FmeaEntry {
	index := make(map[string]catalog.FmeaEntry, len(fmea)*2)
	for _, f := range fmea {
		if code := normalization.NormalizeText(f.Code); code != "" {
			index[code] = f
		}
		if desc := normalization.NormalizeText(f.Description); desc != "" {
			index[desc] = f
		}
	}
	return index
}

func meanNpr(riskScore, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return round1(riskScore / total)
}
