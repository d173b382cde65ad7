package ppm

import (
	"time"

	"sigmaq/feed"
	"sigmaq/normalization"
)

// NormalizeProduction сводит сырые строки производства в агрегаты по
// ключу группы. Строки с нулевым количеством или без ключа отбрасываются,
// невалидные даты просто не попадают в список.
func NormalizeProduction(rows []feed.RawRow) []NormalizedProduction {
	index := make(map[string]int)
	result := make([]NormalizedProduction, 0)

	for _, r := range rows {
		qty := r.Number(feed.FieldProducedQty)
		if qty <= 0 {
			continue
		}

		category := r.Normalized(feed.FieldCategory)
		model := r.Normalized(feed.FieldModel)
		key := BuildGroupKey(category, model)
		if key == "" {
			continue
		}

		pos, ok := index[key]
		if !ok {
			pos = len(result)
			index[key] = pos
			result = append(result, NormalizedProduction{
				GroupKey:        key,
				Category:        category,
				Model:           model,
				ProductionDates: []time.Time{},
			})
		}

		result[pos].ProducedQty += qty

		if date, ok := r.Date(feed.FieldDate); ok {
			result[pos].ProductionDates = append(result[pos].ProductionDates, date)
		}
	}

	return result
}

// NormalizeDefects сводит сырые строки дефектов в агрегаты по ключу
// группы и отделяет административные ocorrências: строка с кодом
// поставщика из каталога исключений не попадает в PPM вообще, только
// в счетчики tallies.
func NormalizeDefects(rows []feed.RawRow, exclusions map[string]struct{}) ([]NormalizedDefect, OccurrenceTallies) {
	type bucket struct {
		qty   float64
		dates []time.Time
	}

	buckets := make(map[string]*bucket)
	order := make([]string, 0)

	tallies := OccurrenceTallies{
		ByCode:     make(map[string]int),
		ByCategory: make(map[string]int),
	}

	for _, r := range rows {
		qty := r.Number(feed.FieldDefectQty)
		if qty <= 0 {
			continue
		}

		category := r.Normalized(feed.FieldCategory)
		supplierCode := normalization.NormalizeText(r.String(feed.FieldSupplierCode))

		// Ocorrência: считаем и выходим, в PPM не участвует
		if _, excluded := exclusions[supplierCode]; excluded && supplierCode != "" {
			tallies.Total++
			tallies.ByCode[supplierCode]++
			tallies.ByCategory[category]++
			continue
		}

		key := BuildGroupKey(category, r.Normalized(feed.FieldModel))
		if key == "" {
			continue
		}

		b, ok := buckets[key]
		if !ok {
			b = &bucket{dates: []time.Time{}}
			buckets[key] = b
			order = append(order, key)
		}

		b.qty += qty

		if date, ok := r.Date(feed.FieldDate); ok {
			b.dates = append(b.dates, date)
		}
	}

	normalized := make([]NormalizedDefect, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		normalized = append(normalized, NormalizedDefect{
			GroupKey:    key,
			DefectQty:   b.qty,
			DefectDates: b.dates,
			RecordKind:  RecordKindNormal,
		})
	}

	return normalized, tallies
}
