package diagnostics

import (
	"log"
	"strings"
	"time"

	"sigmaq/feed"
	"sigmaq/normalization"
)

// Filters — параметры воронки фильтрации дефектов. Период обязателен,
// атрибутные фильтры опциональны (пустой список пропускает все).
type Filters struct {
	Start WeekRef
	End   WeekRef

	Models           []string
	Categories       []string
	Responsibilities []string
	Shifts           []string
}

// Ответственность, административно скрытая из индексов.
const hiddenResponsibility = "NAO MOSTRAR"

// Filter прогоняет сырые строки дефектов через воронку:
//  1. черный список кодов поставщика (ocorrências);
//  2. ответственность «не показывать в индексе»;
//  3. валидность даты;
//  4. временное окно по коду недели (год*100+неделя);
//  5. атрибутные фильтры.
//
// Каждая ступень считает отсев, итог логируется одной сводкой.
func Filter(rows []feed.RawRow, filters Filters, exclusions map[string]struct{}) []FilteredDefect {
	startCode := filters.Start.Year*100 + filters.Start.Week
	endCode := filters.End.Year*100 + filters.End.Week

	models := normalizeAll(filters.Models)
	categories := normalizeAll(filters.Categories)
	responsibilities := normalizeAll(filters.Responsibilities)
	shifts := normalizeAll(filters.Shifts)

	var droppedExcluded, droppedResponsibility, droppedDate, droppedPeriod, droppedAttr int

	result := make([]FilteredDefect, 0, len(rows))

	for _, r := range rows {
		supplierCode := normalization.NormalizeText(r.String(feed.FieldSupplierCode))
		if _, excluded := exclusions[supplierCode]; excluded && supplierCode != "" {
			droppedExcluded++
			continue
		}

		responsibility := r.Normalized(feed.FieldResponsibility)
		if strings.Contains(responsibility, hiddenResponsibility) {
			droppedResponsibility++
			continue
		}

		date, ok := r.Date(feed.FieldDate)
		if !ok {
			droppedDate++
			continue
		}

		isoYear, isoWeek := date.ISOWeek()
		code := isoYear*100 + isoWeek
		if code < startCode || code > endCode {
			droppedPeriod++
			continue
		}

		model := r.Normalized(feed.FieldModel)
		category := r.Normalized(feed.FieldCategory)
		shift := r.Normalized(feed.FieldShift)

		if !matchesFilter(models, model) ||
			!matchesFilter(categories, category) ||
			!matchesFilter(responsibilities, responsibility) ||
			!matchesFilter(shifts, shift) {
			droppedAttr++
			continue
		}

		result = append(result, FilteredDefect{
			Date:               date,
			Week:               isoWeek,
			Year:               isoYear,
			Model:              model,
			Category:           category,
			Responsibility:     responsibility,
			Shift:              shift,
			Analysis:           r.Normalized(feed.FieldAnalysis),
			FailureCode:        r.Normalized(feed.FieldFailureCode),
			FailureDescription: r.Normalized(feed.FieldFailureDescription),
			Qty:                r.Number(feed.FieldDefectQty),
		})
	}

	log.Printf("🟦 Воронка фильтра: всего=%d, ocorrências=%d, скрытая отв.=%d, битая дата=%d, вне периода=%d, атрибуты=%d, осталось=%d",
		len(rows), droppedExcluded, droppedResponsibility, droppedDate, droppedPeriod, droppedAttr, len(result))

	return result
}

// FilterByDateRange сужает уже отфильтрованные дефекты до точного
// диапазона дат. Применяется для месячных периодов, где граница
// недели грубее границы месяца.
func FilterByDateRange(defects []FilteredDefect, from, to time.Time) []FilteredDefect {
	out := make([]FilteredDefect, 0, len(defects))
	for _, d := range defects {
		if d.Date.Before(from) || d.Date.After(to) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func normalizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if n := normalization.NormalizeText(v); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func matchesFilter(allowed []string, value string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}
