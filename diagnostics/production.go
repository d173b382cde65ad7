package diagnostics

import "sigmaq/feed"

// ProductionInWindow суммирует объем производства внутри окна периода
// с теми же атрибутными фильтрами, что применяются к дефектам.
// Для месячных окон действует точная граница дат, для недельных
// сравнение идет по коду недели.
func ProductionInWindow(rows []feed.RawRow, window PeriodRange, modelFilter, categoryFilter []string) float64 {
	models := normalizeAll(modelFilter)
	categories := normalizeAll(categoryFilter)

	startCode := window.Start.Year*100 + window.Start.Week
	endCode := window.End.Year*100 + window.End.Week
	exactDates := window.DateFrom != nil && window.DateTo != nil

	var total float64

	for _, r := range rows {
		date, ok := r.Date(feed.FieldDate)
		if !ok {
			continue
		}
		if !matchesFilter(models, r.Normalized(feed.FieldModel)) {
			continue
		}
		if !matchesFilter(categories, r.Normalized(feed.FieldCategory)) {
			continue
		}

		if exactDates {
			if date.Before(*window.DateFrom) || date.After(*window.DateTo) {
				continue
			}
		} else {
			isoYear, isoWeek := date.ISOWeek()
			code := isoYear*100 + isoWeek
			if code < startCode || code > endCode {
				continue
			}
		}

		total += r.Number(feed.FieldProducedQty)
	}

	return total
}
