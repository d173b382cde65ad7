package diagnostics

import "time"

// Глубина исторического окна для серий и трендов, в периодах.
const Lookback = 13

// PeriodRange — окно одного периода: границы в кодах недель плюс
// точные даты для месячных периодов (граница недели грубее месяца).
type PeriodRange struct {
	Start WeekRef
	End   WeekRef

	DateFrom *time.Time
	DateTo   *time.Time
}

// Ranges — окна T, T-1, T-2 и историческое окно тренда.
type Ranges struct {
	Current      PeriodRange
	Previous     PeriodRange
	BeforePrev   PeriodRange
	TrendHistory PeriodRange
}

// PeriodKey кодирует период числом год*100+значение: такие коды
// монотонны и сравнимы без разбора.
func PeriodKey(year, value int) int {
	return year*100 + value
}

// PreviousKey возвращает код предыдущего периода с переходом через
// границу года: неделя 1 → неделя 52 прошлого года, месяц 1 → декабрь.
func PreviousKey(key int, periodType PeriodType) int {
	year := key / 100
	value := key % 100

	if value > 1 {
		return key - 1
	}
	if periodType == PeriodMonth {
		return (year-1)*100 + 12
	}
	return (year-1)*100 + 52
}

// BuildRanges строит окна анализа для выбранного периода.
func BuildRanges(periodType PeriodType, value, year int) Ranges {
	if periodType == PeriodMonth {
		return Ranges{
			Current:      monthRange(value, year),
			Previous:     monthRangeFromKey(PreviousKey(PeriodKey(year, value), PeriodMonth)),
			BeforePrev:   monthRangeFromKey(PreviousKey(PreviousKey(PeriodKey(year, value), PeriodMonth), PeriodMonth)),
			TrendHistory: monthTrendRange(value, year),
		}
	}

	prev := PreviousKey(PeriodKey(year, value), PeriodWeek)
	prev2 := PreviousKey(prev, PeriodWeek)

	startWeek := value - Lookback
	startYear := year
	for startWeek < 1 {
		startWeek += 52
		startYear--
	}

	return Ranges{
		Current:    weekRange(value, year),
		Previous:   weekRange(prev%100, prev/100),
		BeforePrev: weekRange(prev2%100, prev2/100),
		TrendHistory: PeriodRange{
			Start: WeekRef{Week: startWeek, Year: startYear},
			End:   WeekRef{Week: value, Year: year},
		},
	}
}

func weekRange(week, year int) PeriodRange {
	ref := WeekRef{Week: week, Year: year}
	return PeriodRange{Start: ref, End: ref}
}

func monthRange(month, year int) PeriodRange {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Second)

	startYear, startWeek := from.ISOWeek()
	endYear, endWeek := to.ISOWeek()

	// Конец декабря может попасть в первую ISO-неделю следующего года:
	// тогда окно недель растягивается до конца года
	if endWeek < startWeek && endWeek == 1 {
		endWeek = 53
		endYear = startYear
	}

	return PeriodRange{
		Start:    WeekRef{Week: startWeek, Year: startYear},
		End:      WeekRef{Week: endWeek, Year: endYear},
		DateFrom: &from,
		DateTo:   &to,
	}
}

func monthRangeFromKey(key int) PeriodRange {
	return monthRange(key%100, key/100)
}

func monthTrendRange(month, year int) PeriodRange {
	startMonth := month - Lookback
	startYear := year
	for startMonth < 1 {
		startMonth += 12
		startYear--
	}

	start := monthRange(startMonth, startYear)
	end := monthRange(month, year)

	return PeriodRange{Start: start.Start, End: end.End}
}
