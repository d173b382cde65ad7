package ppm

import (
	"strings"
	"time"
)

// Merge сводит производство и дефекты по ключу группы.
//
// Инварианты:
//   - группа существует, если ее видела хотя бы одна сторона;
//   - количества суммируются, списки дат конкатенируются без дедупликации;
//   - флаг ocorrência липкий: одна исключенная строка дефекта помечает
//     группу навсегда, независимо от порядка строк (OR-накопление,
//     не перезапись).
func Merge(production []NormalizedProduction, defects []NormalizedDefect) []MergedGroup {
	index := make(map[string]int)
	result := make([]MergedGroup, 0, len(production))

	for _, p := range production {
		index[p.GroupKey] = len(result)
		result = append(result, MergedGroup{
			GroupKey:        p.GroupKey,
			Category:        p.Category,
			Model:           p.Model,
			ProducedQty:     p.ProducedQty,
			ProductionDates: p.ProductionDates,
			DefectDates:     []time.Time{},
			RecordKind:      RecordKindNormal,
			HasProduction:   true,
		})
	}

	for _, d := range defects {
		pos, ok := index[d.GroupKey]
		if !ok {
			// Ключ виден только со стороны дефектов: категория и модель
			// восстанавливаются из самого ключа
			category, model, _ := strings.Cut(d.GroupKey, "::")
			kind := d.RecordKind
			if kind == "" {
				kind = RecordKindNormal
			}
			index[d.GroupKey] = len(result)
			result = append(result, MergedGroup{
				GroupKey:             d.GroupKey,
				Category:             category,
				Model:                model,
				DefectQty:            d.DefectQty,
				DefectDates:          d.DefectDates,
				IsExcludedOccurrence: d.IsExcludedOccurrence,
				RecordKind:           kind,
				HasDefect:            true,
			})
			continue
		}

		g := &result[pos]
		g.DefectQty += d.DefectQty
		g.HasDefect = true
		g.DefectDates = append(g.DefectDates, d.DefectDates...)

		if d.IsExcludedOccurrence {
			g.IsExcludedOccurrence = true
			g.RecordKind = RecordKindOccurrence
		}
	}

	return result
}
