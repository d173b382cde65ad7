package diagnostics

import (
	"sigmaq/catalog"
	"sigmaq/feed"
)

// SummaryRequest — параметры полного диагноза периода.
type SummaryRequest struct {
	PeriodType PeriodType
	Value      int
	Year       int

	Models           []string
	Categories       []string
	Responsibilities []string
	Shifts           []string
}

// Summary — полный ответ диагностики: агрегаты текущего периода,
// светофор, темпоральные сигналы и авто-диагноз.
type Summary struct {
	PrincipalCause     NamedCount       `json:"principalCausa"`
	ConsecutivePeriods int              `json:"periodosConsecutivos"`
	PrincipalDefect    NamedCount       `json:"principalDefeito"`
	CriticalDefect     CriticalDefect   `json:"defeitoCritico"`
	Status             OverallStatus    `json:"statusGeral"`
	CriticalDefects    []CriticalDefect `json:"defeitosCriticos"`
	TopCauses          []CauseGroup     `json:"principaisCausas"`

	Spike       *SpikeAlert    `json:"mudancaBrusca,omitempty"`
	VCurve      *VCurveAlert   `json:"efeitoRebote,omitempty"`
	Recurrence  RecurrenceInfo `json:"reincidencia"`
	TrendAlerts []TrendAlert   `json:"alertasTendencia"`

	Narrative Narrative `json:"diagnosticoIa"`
}

// Summarize считает полный диагноз периода по сырым строкам и
// справочникам. Все вычисления идут заново от входов: состояния между
// вызовами нет.
func Summarize(req SummaryRequest, defectRows, productionRows []feed.RawRow, bundle *catalog.Bundle) *Summary {
	ranges := BuildRanges(req.PeriodType, req.Value, req.Year)
	taxonomy := bundle.TaxonomyMap()

	attrFilters := Filters{
		Models:           req.Models,
		Categories:       req.Categories,
		Responsibilities: req.Responsibilities,
		Shifts:           req.Shifts,
	}
	attrOnly := func(window PeriodRange) []FilteredDefect {
		f := attrFilters
		f.Start, f.End = window.Start, window.End
		defects := Filter(defectRows, f, bundle.ExclusionCodes)
		if window.DateFrom != nil && window.DateTo != nil {
			defects = FilterByDateRange(defects, *window.DateFrom, *window.DateTo)
		}
		return defects
	}

	// Три соседних окна: T, T-1, T-2
	current := attrOnly(ranges.Current)
	previous := attrOnly(ranges.Previous)
	beforePrev := attrOnly(ranges.BeforePrev)

	prodCurrent := ProductionInWindow(productionRows, ranges.Current, req.Models, req.Categories)
	prodPrevious := ProductionInWindow(productionRows, ranges.Previous, req.Models, req.Categories)
	prodBeforePrev := ProductionInWindow(productionRows, ranges.BeforePrev, req.Models, req.Categories)

	// FMEA под фактический объем текущего периода
	dynamicFmea := DynamicFmea(bundle.Fmea, current)

	aggregation := Aggregate(current, taxonomy, dynamicFmea)
	prevAggregation := Aggregate(previous, taxonomy, bundle.Fmea)

	var defectsCurrent, defectsPrevious float64
	for _, d := range current {
		defectsCurrent += d.Qty
	}
	for _, d := range previous {
		defectsPrevious += d.Qty
	}
	ppmCurrent := ppmOf(defectsCurrent, prodCurrent)
	ppmPrevious := ppmOf(defectsPrevious, prodPrevious)

	// Темпоральные сигналы
	spike := DetectSpike(current, prodCurrent, previous, prodPrevious)
	vcurve := DetectVCurve(current, prodCurrent, previous, prodPrevious, beforePrev, prodBeforePrev)

	history := attrOnly(ranges.TrendHistory)
	streak := RecurrenceStreak(history, taxonomy, aggregation.PrincipalCause.Name, req.PeriodType, req.Value, req.Year)
	trendAlerts := SustainedGrowth(history, productionRows, taxonomy, req.Models, req.Categories)

	recurrence := RecurrenceInfo{
		IsRecurrent:        streak > 2,
		ConsecutivePeriods: streak,
		PreviousTopCause:   prevAggregation.PrincipalCause.Name,
	}

	narrative := BuildNarrative(NarrativeInput{
		WeekStart:         ranges.Current.Start.Week,
		WeekEnd:           ranges.Current.End.Week,
		PrincipalCause:    aggregation.PrincipalCause,
		PrincipalDefect:   aggregation.PrincipalDefect,
		CriticalDefect:    aggregation.CriticalDefect,
		PpmCurrent:        ppmCurrent,
		PpmPrevious:       ppmPrevious,
		ProductionCurrent: prodCurrent,
		VCurve:            vcurve,
		Spike:             spike,
		Recurrence:        &recurrence,
		ShiftFocus:        firstOrEmpty(req.Shifts),
		ModelFocus:        firstOrEmpty(req.Models),
		TrendAlerts:       trendAlerts,
	})

	return &Summary{
		PrincipalCause:     aggregation.PrincipalCause,
		ConsecutivePeriods: streak,
		PrincipalDefect:    aggregation.PrincipalDefect,
		CriticalDefect:     aggregation.CriticalDefect,
		Status:             OverallStatusFromNpr(aggregation.CriticalDefect.NPR),
		CriticalDefects:    aggregation.CriticalDefects,
		TopCauses:          aggregation.TopCauses,
		Spike:              spike,
		VCurve:             vcurve,
		Recurrence:         recurrence,
		TrendAlerts:        trendAlerts,
		Narrative:          narrative,
	}
}

func firstOrEmpty(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
